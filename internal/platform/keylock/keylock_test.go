package keylock

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/sunft-backend/internal/platform/logger"
)

func TestLocalSerializesSameKey(t *testing.T) {
	l := NewLocal()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "bundle:1")
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("max concurrent holders: want=1 got=%d", maxSeen)
	}
	if n := l.Held(); n != 0 {
		t.Fatalf("entries leaked: %d", n)
	}
}

func TestLocalDistinctKeysDoNotBlock(t *testing.T) {
	l := NewLocal()
	unlockA, err := l.Lock(context.Background(), "bundle:1")
	if err != nil {
		t.Fatalf("Lock a: %v", err)
	}
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx, "bundle:2")
	if err != nil {
		t.Fatalf("Lock b: %v", err)
	}
	unlockB()
}

func TestLocalHonorsContext(t *testing.T) {
	l := NewLocal()
	unlock, err := l.Lock(context.Background(), "fee")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "fee"); err == nil {
		t.Fatalf("expected context error while key is held")
	}
	unlock()
	unlock()
	if n := l.Held(); n != 0 {
		t.Fatalf("entries leaked: %d", n)
	}
}

func TestRedisLockerKeys(t *testing.T) {
	cases := []struct {
		prefix string
		want   string
	}{
		{prefix: "sunft:lock", want: "sunft:lock:bundle:1"},
		{prefix: "sunft:lock:", want: "sunft:lock:bundle:1"},
		{prefix: "  ", want: "sunft:lock:bundle:1"},
		{prefix: "other", want: "other:bundle:1"},
	}
	for _, tc := range cases {
		l := NewRedisLocker(logger.Nop(), nil, tc.prefix, 0)
		if got := l.redisKey("bundle:1"); got != tc.want {
			t.Fatalf("prefix %q: want=%s got=%s", tc.prefix, tc.want, got)
		}
	}
}

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis lock tests")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	defer rdb.Close()

	l := NewRedisLocker(logger.Nop(), rdb, "sunft:test:lock", time.Second)
	unlock, err := l.Lock(context.Background(), "bundle:42")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "bundle:42"); err == nil {
		t.Fatalf("expected second Lock to time out")
	}
	unlock()

	unlock2, err := l.Lock(context.Background(), "bundle:42")
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	unlock2()
}
