package bus

import (
	"context"

	"github.com/yungbote/sunft-backend/internal/realtime"
)

// Bus carries committed events between processes. Every process forwards
// what it receives into its local hub.
type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}
