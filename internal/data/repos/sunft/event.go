package sunft

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/sunft-backend/internal/domain"
	"github.com/yungbote/sunft-backend/internal/platform/dbctx"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
)

type BundleEventRepo interface {
	Create(dbc dbctx.Context, events []*types.BundleEvent) ([]*types.BundleEvent, error)
	ListByBundle(dbc dbctx.Context, bundleID uint64, limit int) ([]*types.BundleEvent, error)
	ListSince(dbc dbctx.Context, since time.Time, limit int) ([]*types.BundleEvent, error)
}

type bundleEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBundleEventRepo(db *gorm.DB, baseLog *logger.Logger) BundleEventRepo {
	return &bundleEventRepo{db: db, log: baseLog.With("repo", "BundleEventRepo")}
}

func (r *bundleEventRepo) Create(dbc dbctx.Context, events []*types.BundleEvent) ([]*types.BundleEvent, error) {
	if len(events) == 0 {
		return []*types.BundleEvent{}, nil
	}
	now := time.Now().UTC()
	// Microsecond steps keep batch order stable under Postgres precision.
	for i, ev := range events {
		if ev.ID == uuid.Nil {
			ev.ID = uuid.New()
		}
		if ev.CreatedAt.IsZero() {
			ev.CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
		}
	}
	if err := dbc.Conn(r.db).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *bundleEventRepo) ListByBundle(dbc dbctx.Context, bundleID uint64, limit int) ([]*types.BundleEvent, error) {
	var out []*types.BundleEvent
	q := dbc.Conn(r.db).Where("bundle_id = ?", bundleID).Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *bundleEventRepo) ListSince(dbc dbctx.Context, since time.Time, limit int) ([]*types.BundleEvent, error) {
	var out []*types.BundleEvent
	q := dbc.Conn(r.db).Where("created_at > ?", since).Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
