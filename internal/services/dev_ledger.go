package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/sunft-backend/internal/data/repos"
	types "github.com/yungbote/sunft-backend/internal/domain"
	"github.com/yungbote/sunft-backend/internal/domain/sunft"
	"github.com/yungbote/sunft-backend/internal/platform/dbctx"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
)

var ErrClockNotManual = errors.New("clock is not manual")

type AccountView struct {
	Address   string          `json:"address"`
	Balance   decimal.Decimal `json:"balance"`
	Allowance decimal.Decimal `json:"allowance"`
	Bundles   int64           `json:"bundles"`
	Assets    []*types.Asset  `json:"assets"`
}

// DevLedgerService drives the reference ledgers directly: funding accounts,
// granting approvals to the custody account and moving the manual clock.
type DevLedgerService interface {
	Faucet(ctx context.Context, to string, amount decimal.Decimal) (decimal.Decimal, error)
	ApprovePayment(ctx context.Context, caller string, amount decimal.Decimal) error
	RegisterAsset(ctx context.Context, owner string, ref types.AssetRef, uri string) (*types.Asset, error)
	ApproveAsset(ctx context.Context, caller string, ref types.AssetRef) error
	AdvanceClock(seconds int64) (int64, error)
	Account(ctx context.Context, addr string) (*AccountView, error)
}

type devLedgerService struct {
	db        *gorm.DB
	log       *logger.Logger
	payments  repos.PaymentLedgerRepo
	custody   repos.AssetCustodyRepo
	ownership OwnershipLedger
	clock     Clock
}

func NewDevLedgerService(
	db *gorm.DB,
	log *logger.Logger,
	payments repos.PaymentLedgerRepo,
	custody repos.AssetCustodyRepo,
	ownership OwnershipLedger,
	clock Clock,
) DevLedgerService {
	return &devLedgerService{
		db:        db,
		log:       log.With("service", "DevLedgerService"),
		payments:  payments,
		custody:   custody,
		ownership: ownership,
		clock:     clock,
	}
}

func (s *devLedgerService) tx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

func (s *devLedgerService) Faucet(ctx context.Context, to string, amount decimal.Decimal) (decimal.Decimal, error) {
	addr, err := normalizeAddress(to, "to")
	if err != nil {
		return decimal.Zero, err
	}
	if !sunft.IsWholeAmount(amount) || amount.IsZero() {
		return decimal.Zero, fmt.Errorf("faucet %s: %w", amount, sunft.ErrInvalidAmount)
	}
	var balance decimal.Decimal
	err = s.tx(ctx, func(dbc dbctx.Context) error {
		if err := s.payments.Mint(dbc, addr, amount); err != nil {
			return err
		}
		balance, err = s.payments.BalanceOf(dbc, addr)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	s.log.Debug("faucet", "to", addr, "amount", amount.String())
	return balance, nil
}

func (s *devLedgerService) ApprovePayment(ctx context.Context, caller string, amount decimal.Decimal) error {
	owner, err := normalizeAddress(caller, "caller")
	if err != nil {
		return err
	}
	if !sunft.IsWholeAmount(amount) {
		return fmt.Errorf("allowance %s: %w", amount, sunft.ErrInvalidAmount)
	}
	return s.tx(ctx, func(dbc dbctx.Context) error {
		return s.payments.Approve(dbc, owner, s.payments.Custodian(), amount)
	})
}

func (s *devLedgerService) RegisterAsset(ctx context.Context, owner string, ref types.AssetRef, uri string) (*types.Asset, error) {
	addr, err := normalizeAddress(owner, "owner")
	if err != nil {
		return nil, err
	}
	ref.ContractRef = strings.TrimSpace(ref.ContractRef)
	ref.AssetID = strings.TrimSpace(ref.AssetID)
	var asset *types.Asset
	err = s.tx(ctx, func(dbc dbctx.Context) error {
		asset, err = s.custody.Register(dbc, ref, addr, strings.TrimSpace(uri))
		return err
	})
	return asset, err
}

func (s *devLedgerService) ApproveAsset(ctx context.Context, caller string, ref types.AssetRef) error {
	owner, err := normalizeAddress(caller, "caller")
	if err != nil {
		return err
	}
	return s.tx(ctx, func(dbc dbctx.Context) error {
		return s.custody.Approve(dbc, ref, owner, s.custody.Custodian())
	})
}

func (s *devLedgerService) AdvanceClock(seconds int64) (int64, error) {
	mc, ok := s.clock.(*ManualClock)
	if !ok {
		return 0, ErrClockNotManual
	}
	if seconds < 0 {
		return 0, fmt.Errorf("advance %d: %w", seconds, sunft.ErrInvalidArgument)
	}
	return mc.Advance(seconds), nil
}

func (s *devLedgerService) Account(ctx context.Context, addr string) (*AccountView, error) {
	a, err := normalizeAddress(addr, "address")
	if err != nil {
		return nil, err
	}
	view := &AccountView{Address: a}
	err = s.tx(ctx, func(dbc dbctx.Context) error {
		var err error
		if view.Balance, err = s.payments.BalanceOf(dbc, a); err != nil {
			return err
		}
		if view.Allowance, err = s.payments.AllowanceOf(dbc, a, s.payments.Custodian()); err != nil {
			return err
		}
		if view.Bundles, err = s.ownership.BalanceOf(dbc, a); err != nil {
			return err
		}
		view.Assets, err = s.custody.ListByOwner(dbc, a)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}
