package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/sunft-backend/internal/platform/logger"
	"github.com/yungbote/sunft-backend/internal/realtime"
)

type memoryBus struct {
	log    *logger.Logger
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(realtime.Message)
	closed bool
}

// NewMemoryBus delivers synchronously to forwarders in this process.
func NewMemoryBus(log *logger.Logger) Bus {
	return &memoryBus{
		log:  log.With("service", "MemoryBus"),
		subs: make(map[int]func(realtime.Message)),
	}
}

func (b *memoryBus) Publish(ctx context.Context, msg realtime.Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("bus closed")
	}
	for _, fn := range b.subs {
		fn(msg)
	}
	return nil
}

func (b *memoryBus) StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("bus closed")
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = onMsg
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}()
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = map[int]func(realtime.Message){}
	return nil
}
