package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/yungbote/sunft-backend/internal/data/repos"
	types "github.com/yungbote/sunft-backend/internal/domain"
	"github.com/yungbote/sunft-backend/internal/domain/address"
	"github.com/yungbote/sunft-backend/internal/domain/sunft"
	"github.com/yungbote/sunft-backend/internal/observability"
	"github.com/yungbote/sunft-backend/internal/platform/dbctx"
	"github.com/yungbote/sunft-backend/internal/platform/keylock"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
	"github.com/yungbote/sunft-backend/internal/realtime/bus"
)

const feeLockKey = "fee"

func bundleLockKey(id uint64) string { return fmt.Sprintf("bundle:%d", id) }

type MintRequest struct {
	ContractRef string
	AssetID     string
	Rate        decimal.Decimal
	Duration    int64
	To          string
	Payment     decimal.Decimal
}

type ItemSpec struct {
	ContractRef string
	AssetID     string
	Rate        decimal.Decimal
	Duration    int64
}

type BundleService interface {
	Mint(ctx context.Context, caller string, req MintRequest) (uint64, error)
	Append(ctx context.Context, caller string, bundleID uint64, spec ItemSpec) (int, error)
	Deposit(ctx context.Context, caller string, bundleID uint64, amount decimal.Decimal) (*BundleView, error)
	TryUnlock(ctx context.Context, bundleID uint64) (int, error)
	GetProgress(ctx context.Context, bundleID uint64) (int64, error)
	Destroy(ctx context.Context, caller string, bundleID uint64) (*types.Settlement, error)
	Transfer(ctx context.Context, caller string, bundleID uint64, to string) error

	EnsureFeeConfig(ctx context.Context, queen string, fee decimal.Decimal) (*types.FeeConfig, error)
	SetMintingFee(ctx context.Context, caller string, amount decimal.Decimal) error
	GetFeeConfig(ctx context.Context) (*types.FeeConfig, error)
	WithdrawFees(ctx context.Context, caller string) (decimal.Decimal, error)

	GetBundle(ctx context.Context, bundleID uint64) (*BundleView, error)
	GetItem(ctx context.Context, bundleID uint64, index int) (*types.LockedItem, error)
	ListEvents(ctx context.Context, bundleID uint64, limit int) ([]*types.BundleEvent, error)
	ListByOwner(ctx context.Context, owner string) ([]*BundleView, error)
}

type BundleServiceDeps struct {
	DB      *gorm.DB
	Log     *logger.Logger
	Bundles repos.BundleRepo
	Items   repos.LockedItemRepo
	Fees    repos.FeeConfigRepo
	Events  repos.BundleEventRepo

	Custody   AssetCustody
	Payments  PaymentLedger
	Ownership OwnershipLedger

	// Optional. Defaults: SystemClock, in-process keylock, CumulativeCost.
	Clock     Clock
	Locker    keylock.Locker
	CostModel sunft.CostModel
	Bus       bus.Bus
	Metrics   *observability.Metrics
}

type bundleService struct {
	db        *gorm.DB
	log       *logger.Logger
	bundles   repos.BundleRepo
	items     repos.LockedItemRepo
	fees      repos.FeeConfigRepo
	events    repos.BundleEventRepo
	custody   AssetCustody
	payments  PaymentLedger
	ownership OwnershipLedger
	clock     Clock
	locker    keylock.Locker
	cost      sunft.CostModel
	publisher *eventPublisher
	metrics   *observability.Metrics
}

func NewBundleService(deps BundleServiceDeps) BundleService {
	serviceLog := deps.Log.With("service", "BundleService")
	s := &bundleService{
		db:        deps.DB,
		log:       serviceLog,
		bundles:   deps.Bundles,
		items:     deps.Items,
		fees:      deps.Fees,
		events:    deps.Events,
		custody:   deps.Custody,
		payments:  deps.Payments,
		ownership: deps.Ownership,
		clock:     deps.Clock,
		locker:    deps.Locker,
		cost:      deps.CostModel,
		metrics:   deps.Metrics,
		publisher: &eventPublisher{log: serviceLog, bus: deps.Bus, metrics: deps.Metrics},
	}
	if s.clock == nil {
		s.clock = SystemClock{}
	}
	if s.locker == nil {
		s.locker = keylock.NewLocal()
	}
	if s.cost == nil {
		s.cost = sunft.CumulativeCost{}
	}
	return s
}

// mutate runs fn under the key lock inside one transaction. Everything fn
// does, ledger calls included, commits or rolls back together.
func (s *bundleService) mutate(ctx context.Context, op, key string, j *journal, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	ctx, span := observability.Tracer().Start(ctx, "BundleService."+op,
		trace.WithAttributes(attribute.String("sunft.lock_key", key)))
	defer span.End()

	err := s.lockedTx(ctx, key, j, fn)
	s.metrics.ObserveOperation(op, err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Debug("operation failed", "op", op, "key", key, "kind", string(sunft.KindOf(err)), "error", err)
		return err
	}
	s.publisher.publish(ctx, j.events)
	return nil
}

func (s *bundleService) lockedTx(ctx context.Context, key string, j *journal, fn func(dbc dbctx.Context) error) error {
	unlock, err := s.locker.Lock(ctx, key)
	if err != nil {
		return fmt.Errorf("acquire %s: %w", key, err)
	}
	defer unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := fn(dbc); err != nil {
			return err
		}
		if _, err := s.events.Create(dbc, j.events); err != nil {
			return fmt.Errorf("record events: %w", err)
		}
		return nil
	})
}

func normalizeAddress(raw, field string) (string, error) {
	addr, err := address.Normalize(raw)
	if err != nil {
		return "", fmt.Errorf("%s %q: %v: %w", field, raw, err, sunft.ErrInvalidArgument)
	}
	return addr, nil
}

func validateItem(spec ItemSpec) error {
	if strings.TrimSpace(spec.ContractRef) == "" || strings.TrimSpace(spec.AssetID) == "" {
		return fmt.Errorf("asset reference required: %w", sunft.ErrInvalidArgument)
	}
	if !sunft.IsWholeAmount(spec.Rate) {
		return fmt.Errorf("rate %s: %w", spec.Rate, sunft.ErrInvalidArgument)
	}
	if spec.Duration < 0 {
		return fmt.Errorf("duration %d: %w", spec.Duration, sunft.ErrInvalidArgument)
	}
	return nil
}

func (spec ItemSpec) ref() types.AssetRef {
	return types.AssetRef{ContractRef: strings.TrimSpace(spec.ContractRef), AssetID: strings.TrimSpace(spec.AssetID)}
}

func (spec ItemSpec) payload() map[string]any {
	return map[string]any{
		"contract_ref": spec.ContractRef,
		"asset_id":     spec.AssetID,
		"rate":         spec.Rate.String(),
		"duration":     spec.Duration,
	}
}

// appendItem moves the asset into custody and records it at the end of the
// bundle's sequence.
func (s *bundleService) appendItem(dbc dbctx.Context, bundleID uint64, from string, spec ItemSpec) (int, error) {
	ref := spec.ref()
	if err := s.custody.TransferIn(dbc, ref, from); err != nil {
		return 0, fmt.Errorf("take custody of %s/%s: %w", ref.ContractRef, ref.AssetID, err)
	}
	item := &types.LockedItem{
		BundleID:    bundleID,
		ContractRef: ref.ContractRef,
		AssetID:     ref.AssetID,
		Rate:        spec.Rate,
		Duration:    spec.Duration,
		Locked:      true,
	}
	if err := s.items.Append(dbc, item); err != nil {
		return 0, err
	}
	return item.Index, nil
}

func (s *bundleService) Mint(ctx context.Context, caller string, req MintRequest) (uint64, error) {
	creator, err := normalizeAddress(caller, "caller")
	if err != nil {
		return 0, err
	}
	to, err := normalizeAddress(req.To, "to")
	if err != nil {
		return 0, err
	}
	spec := ItemSpec{ContractRef: req.ContractRef, AssetID: req.AssetID, Rate: req.Rate, Duration: req.Duration}
	if err := validateItem(spec); err != nil {
		return 0, err
	}

	var (
		id  uint64
		fee decimal.Decimal
	)
	j := newJournal(ctx, creator)
	err = s.mutate(ctx, "mint", feeLockKey, j, func(dbc dbctx.Context) error {
		cfg, err := s.fees.Lock(dbc)
		if err != nil {
			return err
		}
		if !req.Payment.Equal(cfg.MintingFee) {
			return fmt.Errorf("payment %s, minting fee %s: %w", req.Payment, cfg.MintingFee, sunft.ErrInvalidFeeAmount)
		}
		fee = cfg.MintingFee
		if fee.Sign() > 0 {
			if err := s.payments.Pull(dbc, creator, fee); err != nil {
				return fmt.Errorf("collect minting fee: %w", err)
			}
			cfg.RetainedFees = cfg.RetainedFees.Add(fee)
			if err := s.fees.Save(dbc, cfg); err != nil {
				return err
			}
		}

		newID, err := s.ownership.Mint(dbc, to)
		if err != nil {
			return fmt.Errorf("mint bundle token: %w", err)
		}
		b := &types.Bundle{ID: newID, Creator: creator, Principal: decimal.Zero}
		if err := s.bundles.Create(dbc, b); err != nil {
			return err
		}
		if _, err := s.appendItem(dbc, newID, creator, spec); err != nil {
			return err
		}

		payload := spec.payload()
		payload["to"] = to
		payload["fee"] = fee.String()
		if err := j.add(newID, types.EventBundleMinted, payload); err != nil {
			return err
		}
		id = newID
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.metrics.AddFees(fee)
	s.log.Info("bundle minted", "bundle_id", id, "creator", creator, "owner", to)
	return id, nil
}

// Append is allowed until the bundle is destroyed, including after deposits
// and unlocks. The new item goes last; the cursor and stream start are left
// alone.
func (s *bundleService) Append(ctx context.Context, caller string, bundleID uint64, spec ItemSpec) (int, error) {
	creator, err := normalizeAddress(caller, "caller")
	if err != nil {
		return 0, err
	}
	if err := validateItem(spec); err != nil {
		return 0, err
	}

	var index int
	j := newJournal(ctx, creator)
	err = s.mutate(ctx, "append", bundleLockKey(bundleID), j, func(dbc dbctx.Context) error {
		b, err := s.bundles.LockByID(dbc, bundleID)
		if err != nil {
			return err
		}
		if !address.Equal(b.Creator, creator) {
			return sunft.ErrNotCreator
		}
		if b.Destroyed {
			return sunft.ErrBundleDestroyed
		}
		idx, err := s.appendItem(dbc, bundleID, creator, spec)
		if err != nil {
			return err
		}
		payload := spec.payload()
		payload["index"] = idx
		if err := j.add(bundleID, types.EventItemAppended, payload); err != nil {
			return err
		}
		index = idx
		return nil
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

func (s *bundleService) Deposit(ctx context.Context, caller string, bundleID uint64, amount decimal.Decimal) (*BundleView, error) {
	depositor, err := normalizeAddress(caller, "caller")
	if err != nil {
		return nil, err
	}

	var view *BundleView
	j := newJournal(ctx, depositor)
	err = s.mutate(ctx, "deposit", bundleLockKey(bundleID), j, func(dbc dbctx.Context) error {
		b, err := s.bundles.LockByID(dbc, bundleID)
		if err != nil {
			return err
		}
		if b.Destroyed {
			return sunft.ErrBundleDestroyed
		}
		if amount.Sign() <= 0 {
			return sunft.ErrZeroDeposit
		}
		if !sunft.IsWholeAmount(amount) {
			return fmt.Errorf("deposit %s: %w", amount, sunft.ErrInvalidAmount)
		}

		now := s.clock.Now()
		if b.StreamStartedAt == 0 {
			if now <= 0 {
				return fmt.Errorf("clock returned %d; stream start must be positive", now)
			}
			b.StreamStartedAt = now
		}
		if err := s.payments.Pull(dbc, depositor, amount); err != nil {
			return fmt.Errorf("pull deposit: %w", err)
		}
		b.Principal = b.Principal.Add(amount)
		if err := s.bundles.Save(dbc, b); err != nil {
			return err
		}
		if err := j.add(bundleID, types.EventBundleDeposited, map[string]any{
			"amount":            amount.String(),
			"principal":         b.Principal.String(),
			"stream_started_at": b.StreamStartedAt,
		}); err != nil {
			return err
		}
		view, err = s.view(dbc, b, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.AddDeposited(amount)
	return view, nil
}

// TryUnlock releases every item whose time and funding are covered, in
// order, and reports how many were released. Calling it again without new
// time or funds releases nothing.
func (s *bundleService) TryUnlock(ctx context.Context, bundleID uint64) (int, error) {
	advanced := 0
	j := newJournal(ctx, "")
	err := s.mutate(ctx, "unlock", bundleLockKey(bundleID), j, func(dbc dbctx.Context) error {
		b, err := s.bundles.LockByID(dbc, bundleID)
		if err != nil {
			return err
		}
		rows, err := s.items.ListByBundle(dbc, bundleID)
		if err != nil {
			return err
		}
		items := derefItems(rows)
		plan := sunft.Evaluate(b, items, s.clock.Now(), s.cost)
		if len(plan.Indexes) == 0 {
			return nil
		}

		owner, err := s.ownership.OwnerOf(dbc, bundleID)
		if err != nil {
			return err
		}
		if owner == "" {
			return sunft.ErrBundleDestroyed
		}
		for _, k := range plan.Indexes {
			ref := items[k].Asset()
			if err := s.custody.TransferOut(dbc, ref, owner); err != nil {
				return fmt.Errorf("release item %d: %w", k, err)
			}
		}
		if err := s.items.MarkUnlocked(dbc, bundleID, plan.Indexes); err != nil {
			return err
		}
		sunft.Apply(b, items, plan)
		if err := s.bundles.Save(dbc, b); err != nil {
			return err
		}
		for _, k := range plan.Indexes {
			if err := j.add(bundleID, types.EventItemUnlocked, map[string]any{
				"index":        k,
				"to":           owner,
				"contract_ref": items[k].ContractRef,
				"asset_id":     items[k].AssetID,
			}); err != nil {
				return err
			}
		}
		advanced = len(plan.Indexes)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.metrics.AddUnlocked(advanced)
	return advanced, nil
}

// Destroy settles the bundle. With every item unlocked the owner gets the
// whole principal; otherwise the remaining items go back to the creator and
// the principal is split with the queen.
func (s *bundleService) Destroy(ctx context.Context, caller string, bundleID uint64) (*types.Settlement, error) {
	requester, err := normalizeAddress(caller, "caller")
	if err != nil {
		return nil, err
	}

	var settlement types.Settlement
	j := newJournal(ctx, requester)
	err = s.mutate(ctx, "destroy", bundleLockKey(bundleID), j, func(dbc dbctx.Context) error {
		b, err := s.bundles.LockByID(dbc, bundleID)
		if err != nil {
			return err
		}
		if b.Destroyed {
			return sunft.ErrAlreadyDestroyed
		}
		owner, err := s.ownership.OwnerOf(dbc, bundleID)
		if err != nil {
			return err
		}
		if !address.Equal(owner, requester) {
			return sunft.ErrNotOwner
		}
		rows, err := s.items.ListByBundle(dbc, bundleID)
		if err != nil {
			return err
		}
		items := derefItems(rows)
		settlement = sunft.PlanSettlement(b, items)

		for _, k := range settlement.ReturnedItems {
			if err := s.custody.TransferOut(dbc, items[k].Asset(), b.Creator); err != nil {
				return fmt.Errorf("return item %d to creator: %w", k, err)
			}
		}
		if settlement.OwnerShare.Sign() > 0 {
			if err := s.payments.Push(dbc, owner, settlement.OwnerShare); err != nil {
				return fmt.Errorf("pay owner share: %w", err)
			}
		}
		queen := ""
		if settlement.QueenShare.Sign() > 0 {
			cfg, err := s.fees.Get(dbc)
			if err != nil {
				return err
			}
			queen = cfg.Queen
			if err := s.payments.Push(dbc, queen, settlement.QueenShare); err != nil {
				return fmt.Errorf("pay queen share: %w", err)
			}
		}

		now := time.Now().UTC()
		b.Principal = decimal.Zero
		b.Destroyed = true
		b.DestroyedAt = &now
		if err := s.bundles.Save(dbc, b); err != nil {
			return err
		}
		if err := s.ownership.Burn(dbc, bundleID); err != nil {
			return fmt.Errorf("burn bundle token: %w", err)
		}
		return j.add(bundleID, types.EventBundleDestroyed, map[string]any{
			"owner":          owner,
			"creator":        b.Creator,
			"queen":          queen,
			"complete":       settlement.Complete,
			"owner_share":    settlement.OwnerShare.String(),
			"queen_share":    settlement.QueenShare.String(),
			"returned_items": settlement.ReturnedItems,
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.AddReturned(len(settlement.ReturnedItems))
	s.log.Info("bundle destroyed", "bundle_id", bundleID, "complete", settlement.Complete,
		"owner_share", settlement.OwnerShare.String(), "queen_share", settlement.QueenShare.String())
	return &settlement, nil
}

func (s *bundleService) Transfer(ctx context.Context, caller string, bundleID uint64, to string) error {
	from, err := normalizeAddress(caller, "caller")
	if err != nil {
		return err
	}
	recipient, err := normalizeAddress(to, "to")
	if err != nil {
		return err
	}

	j := newJournal(ctx, from)
	return s.mutate(ctx, "transfer", bundleLockKey(bundleID), j, func(dbc dbctx.Context) error {
		b, err := s.bundles.LockByID(dbc, bundleID)
		if err != nil {
			return err
		}
		if b.Destroyed {
			return sunft.ErrBundleDestroyed
		}
		if err := s.ownership.Transfer(dbc, bundleID, from, recipient); err != nil {
			return err
		}
		return j.add(bundleID, types.EventBundleTransferred, map[string]any{
			"from": from,
			"to":   recipient,
		})
	})
}

func derefItems(rows []*types.LockedItem) []types.LockedItem {
	out := make([]types.LockedItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	return out
}
