package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/sunft-backend/internal/domain"
	"github.com/yungbote/sunft-backend/internal/domain/sunft"
	"github.com/yungbote/sunft-backend/internal/platform/dbctx"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
)

// PaymentLedgerRepo is a single-token fungible ledger. Pull and Push move
// funds between accounts and the registry's custody account.
type PaymentLedgerRepo interface {
	Pull(dbc dbctx.Context, from string, amount decimal.Decimal) error
	Push(dbc dbctx.Context, to string, amount decimal.Decimal) error
	BalanceOf(dbc dbctx.Context, addr string) (decimal.Decimal, error)

	Mint(dbc dbctx.Context, to string, amount decimal.Decimal) error
	Approve(dbc dbctx.Context, owner, spender string, amount decimal.Decimal) error
	AllowanceOf(dbc dbctx.Context, owner, spender string) (decimal.Decimal, error)
	Custodian() string
}

type paymentLedgerRepo struct {
	db        *gorm.DB
	log       *logger.Logger
	custodian string
}

func NewPaymentLedgerRepo(db *gorm.DB, baseLog *logger.Logger, custodian string) PaymentLedgerRepo {
	return &paymentLedgerRepo{
		db:        db,
		log:       baseLog.With("repo", "PaymentLedgerRepo"),
		custodian: custodian,
	}
}

func (r *paymentLedgerRepo) Custodian() string { return r.custodian }

func (r *paymentLedgerRepo) Pull(dbc dbctx.Context, from string, amount decimal.Decimal) error {
	if amount.Sign() < 0 {
		return sunft.ErrInvalidAmount
	}
	if amount.IsZero() {
		return nil
	}
	return r.inTx(dbc, func(tx *gorm.DB) error {
		allowance, err := loadAllowance(tx, from, r.custodian)
		if err != nil {
			return err
		}
		if allowance.Amount.LessThan(amount) {
			return fmt.Errorf("pull %s from %s (allowance %s): %w", amount, from, allowance.Amount, sunft.ErrInsufficientAllowance)
		}
		if err := move(tx, from, r.custodian, amount); err != nil {
			return err
		}
		return setAllowance(tx, from, r.custodian, allowance.Amount.Sub(amount))
	})
}

func (r *paymentLedgerRepo) Push(dbc dbctx.Context, to string, amount decimal.Decimal) error {
	if amount.Sign() < 0 {
		return sunft.ErrInvalidAmount
	}
	if amount.IsZero() {
		return nil
	}
	return r.inTx(dbc, func(tx *gorm.DB) error {
		return move(tx, r.custodian, to, amount)
	})
}

func (r *paymentLedgerRepo) BalanceOf(dbc dbctx.Context, addr string) (decimal.Decimal, error) {
	var acct types.Account
	if err := dbc.Conn(r.db).Where("address = ?", addr).Limit(1).Find(&acct).Error; err != nil {
		return decimal.Zero, err
	}
	if acct.Address == "" {
		return decimal.Zero, nil
	}
	return acct.Balance, nil
}

func (r *paymentLedgerRepo) Mint(dbc dbctx.Context, to string, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return sunft.ErrInvalidAmount
	}
	return r.inTx(dbc, func(tx *gorm.DB) error {
		acct, err := loadAccount(tx, to)
		if err != nil {
			return err
		}
		return setBalance(tx, to, acct.Balance.Add(amount))
	})
}

func (r *paymentLedgerRepo) Approve(dbc dbctx.Context, owner, spender string, amount decimal.Decimal) error {
	if amount.Sign() < 0 {
		return sunft.ErrInvalidAmount
	}
	return r.inTx(dbc, func(tx *gorm.DB) error {
		if _, err := loadAllowance(tx, owner, spender); err != nil {
			return err
		}
		return setAllowance(tx, owner, spender, amount)
	})
}

func (r *paymentLedgerRepo) AllowanceOf(dbc dbctx.Context, owner, spender string) (decimal.Decimal, error) {
	var a types.Allowance
	if err := dbc.Conn(r.db).Where("owner = ? AND spender = ?", owner, spender).Limit(1).Find(&a).Error; err != nil {
		return decimal.Zero, err
	}
	if a.Owner == "" {
		return decimal.Zero, nil
	}
	return a.Amount, nil
}

// inTx reuses the caller's transaction, or opens one for standalone calls.
func (r *paymentLedgerRepo) inTx(dbc dbctx.Context, fn func(tx *gorm.DB) error) error {
	if dbc.Tx != nil {
		return fn(dbc.Conn(r.db))
	}
	return dbc.Conn(r.db).Transaction(fn)
}

func move(tx *gorm.DB, from, to string, amount decimal.Decimal) error {
	src, err := loadAccount(tx, from)
	if err != nil {
		return err
	}
	if src.Balance.LessThan(amount) {
		return fmt.Errorf("move %s from %s (balance %s): %w", amount, from, src.Balance, sunft.ErrTransferFailed)
	}
	if err := setBalance(tx, from, src.Balance.Sub(amount)); err != nil {
		return err
	}
	dst, err := loadAccount(tx, to)
	if err != nil {
		return err
	}
	return setBalance(tx, to, dst.Balance.Add(amount))
}

// loadAccount creates a zero row for unknown addresses before taking the row
// lock, so concurrent first credits to the same address serialize on it.
func loadAccount(tx *gorm.DB, addr string) (*types.Account, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&types.Account{Address: addr, Balance: decimal.Zero}).Error; err != nil {
		return nil, err
	}
	var acct types.Account
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("address = ?", addr).
		Limit(1).
		Find(&acct).Error
	if err != nil {
		return nil, err
	}
	if acct.Address == "" {
		return nil, fmt.Errorf("account %s missing after create", addr)
	}
	return &acct, nil
}

func setBalance(tx *gorm.DB, addr string, balance decimal.Decimal) error {
	res := tx.Model(&types.Account{}).Where("address = ?", addr).Update("balance", balance)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("update balance of %s: %d rows affected", addr, res.RowsAffected)
	}
	return nil
}

func loadAllowance(tx *gorm.DB, owner, spender string) (*types.Allowance, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&types.Allowance{Owner: owner, Spender: spender, Amount: decimal.Zero}).Error; err != nil {
		return nil, err
	}
	var a types.Allowance
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner = ? AND spender = ?", owner, spender).
		Limit(1).
		Find(&a).Error
	if err != nil {
		return nil, err
	}
	if a.Owner == "" {
		return nil, fmt.Errorf("allowance %s/%s missing after create", owner, spender)
	}
	return &a, nil
}

func setAllowance(tx *gorm.DB, owner, spender string, amount decimal.Decimal) error {
	res := tx.Model(&types.Allowance{}).
		Where("owner = ? AND spender = ?", owner, spender).
		Update("amount", amount)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("update allowance %s/%s: %d rows affected", owner, spender, res.RowsAffected)
	}
	return nil
}
