package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	types "github.com/yungbote/sunft-backend/internal/domain"
	"github.com/yungbote/sunft-backend/internal/domain/address"
	"github.com/yungbote/sunft-backend/internal/domain/sunft"
	"github.com/yungbote/sunft-backend/internal/platform/dbctx"
)

// EnsureFeeConfig seeds the fee record on first start. An existing record
// wins over configuration so a fee changed at runtime survives restarts.
func (s *bundleService) EnsureFeeConfig(ctx context.Context, queen string, fee decimal.Decimal) (*types.FeeConfig, error) {
	q, err := normalizeAddress(queen, "queen")
	if err != nil {
		return nil, err
	}
	if !sunft.IsWholeAmount(fee) {
		return nil, fmt.Errorf("minting fee %s: %w", fee, sunft.ErrInvalidAmount)
	}
	var cfg *types.FeeConfig
	j := newJournal(ctx, q)
	err = s.mutate(ctx, "ensure_fee_config", feeLockKey, j, func(dbc dbctx.Context) error {
		var err error
		cfg, err = s.fees.Ensure(dbc, q, fee)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !address.Equal(cfg.Queen, q) {
		s.log.Warn("stored queen differs from configuration; keeping stored value", "stored", cfg.Queen, "configured", q)
	}
	return cfg, nil
}

func (s *bundleService) SetMintingFee(ctx context.Context, caller string, amount decimal.Decimal) error {
	requester, err := normalizeAddress(caller, "caller")
	if err != nil {
		return err
	}
	j := newJournal(ctx, requester)
	return s.mutate(ctx, "set_minting_fee", feeLockKey, j, func(dbc dbctx.Context) error {
		cfg, err := s.fees.Lock(dbc)
		if err != nil {
			return err
		}
		if !address.Equal(cfg.Queen, requester) {
			return sunft.ErrNotQueen
		}
		if !sunft.IsWholeAmount(amount) {
			return fmt.Errorf("minting fee %s: %w", amount, sunft.ErrInvalidAmount)
		}
		previous := cfg.MintingFee
		cfg.MintingFee = amount
		if err := s.fees.Save(dbc, cfg); err != nil {
			return err
		}
		return j.add(0, types.EventFeeUpdated, map[string]any{
			"previous":    previous.String(),
			"minting_fee": amount.String(),
		})
	})
}

func (s *bundleService) GetFeeConfig(ctx context.Context) (*types.FeeConfig, error) {
	return s.fees.Get(dbctx.Context{Ctx: ctx})
}

// WithdrawFees pays all retained minting fees to the queen.
func (s *bundleService) WithdrawFees(ctx context.Context, caller string) (decimal.Decimal, error) {
	requester, err := normalizeAddress(caller, "caller")
	if err != nil {
		return decimal.Zero, err
	}
	withdrawn := decimal.Zero
	j := newJournal(ctx, requester)
	err = s.mutate(ctx, "withdraw_fees", feeLockKey, j, func(dbc dbctx.Context) error {
		cfg, err := s.fees.Lock(dbc)
		if err != nil {
			return err
		}
		if !address.Equal(cfg.Queen, requester) {
			return sunft.ErrNotQueen
		}
		if cfg.RetainedFees.Sign() <= 0 {
			return nil
		}
		amount := cfg.RetainedFees
		if err := s.payments.Push(dbc, cfg.Queen, amount); err != nil {
			return fmt.Errorf("pay retained fees: %w", err)
		}
		cfg.RetainedFees = decimal.Zero
		if err := s.fees.Save(dbc, cfg); err != nil {
			return err
		}
		withdrawn = amount
		return j.add(0, types.EventFeeWithdrawn, map[string]any{
			"amount": amount.String(),
			"to":     cfg.Queen,
		})
	})
	if err != nil {
		return decimal.Zero, err
	}
	return withdrawn, nil
}
