package services

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	types "github.com/yungbote/sunft-backend/internal/domain"
	"github.com/yungbote/sunft-backend/internal/observability"
	"github.com/yungbote/sunft-backend/internal/platform/ctxutil"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
	"github.com/yungbote/sunft-backend/internal/realtime"
	"github.com/yungbote/sunft-backend/internal/realtime/bus"
)

const publishTimeout = 2 * time.Second

// journal collects the events of one mutation. They are inserted in the
// same transaction and published only after it commits.
type journal struct {
	actor  string
	events []*types.BundleEvent
}

func newJournal(ctx context.Context, actor string) *journal {
	if actor == "" {
		if rd := ctxutil.GetRequestData(ctx); rd != nil {
			actor = rd.Caller
		}
	}
	return &journal{actor: actor}
}

func (j *journal) add(bundleID uint64, typ string, payload map[string]any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	j.events = append(j.events, &types.BundleEvent{
		BundleID: bundleID,
		Type:     typ,
		Actor:    j.actor,
		Payload:  datatypes.JSON(raw),
	})
	return nil
}

type eventPublisher struct {
	log     *logger.Logger
	bus     bus.Bus
	metrics *observability.Metrics
}

// publish is best effort: the events are already durable in the journal.
func (p *eventPublisher) publish(ctx context.Context, events []*types.BundleEvent) {
	if p == nil || p.bus == nil || len(events) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	for _, ev := range events {
		raw, err := json.Marshal(ev)
		if err != nil {
			p.log.Warn("marshal event failed", "event_id", ev.ID, "error", err)
			continue
		}
		msg := realtime.Message{Channel: realtime.BundleChannel(ev.BundleID), Event: realtime.EventBundle, Data: raw}
		if ev.BundleID == 0 {
			msg.Channel = "fee"
			msg.Event = realtime.EventFee
		}
		err = p.bus.Publish(ctx, msg)
		p.metrics.ObservePublish(err)
		if err != nil {
			p.log.Warn("publish event failed", "event_id", ev.ID, "type", ev.Type, "error", err)
		}
	}
}
