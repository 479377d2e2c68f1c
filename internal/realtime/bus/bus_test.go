package bus

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/sunft-backend/internal/platform/logger"
	"github.com/yungbote/sunft-backend/internal/realtime"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func exerciseBus(t *testing.T, b Bus) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan realtime.Message, 4)
	if err := b.StartForwarder(ctx, func(m realtime.Message) { got <- m }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	msg := realtime.Message{Channel: realtime.BundleChannel(9), Event: realtime.EventBundle}
	if err := b.Publish(ctx, msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case m := <-got:
		if m.Channel != msg.Channel || m.Event != msg.Event {
			t.Fatalf("forwarded message: want=%+v got=%+v", msg, m)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for forwarded message")
	}
}

func TestMemoryBus(t *testing.T) {
	b := NewMemoryBus(testLogger(t))
	exerciseBus(t, b)
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := b.Publish(context.Background(), realtime.Message{Channel: "x"}); err == nil {
		t.Fatalf("Publish after Close: want error")
	}
}

func TestRedisBus(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis bus tests")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	b, err := NewRedisBus(testLogger(t), rdb, "sunft-test")
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}
	exerciseBus(t, b)
}
