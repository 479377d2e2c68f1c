package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/sunft-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan Message, timeout time.Duration) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for message")
	}
	return Message{}
}

func TestHubOrderingAndReconnect(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	channel := BundleChannel(7)

	clientA := hub.NewClient()
	hub.AddChannel(clientA, channel)

	hub.Broadcast(Message{Channel: channel, Event: EventBundle, Data: json.RawMessage(`{"seq":1}`)})
	hub.Broadcast(Message{Channel: channel, Event: EventBundle, Data: json.RawMessage(`{"seq":2}`)})

	if got := recvMessage(t, clientA.Outbound, time.Second); string(got.Data) != `{"seq":1}` {
		t.Fatalf("first message: want=seq 1 got=%s", got.Data)
	}
	if got := recvMessage(t, clientA.Outbound, time.Second); string(got.Data) != `{"seq":2}` {
		t.Fatalf("second message: want=seq 2 got=%s", got.Data)
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	if _, ok := <-clientA.Outbound; ok {
		t.Fatalf("outbound should be closed after CloseClient")
	}

	clientB := hub.NewClient()
	hub.AddChannel(clientB, channel)
	hub.Broadcast(Message{Channel: channel, Event: EventBundle, Data: json.RawMessage(`{"seq":3}`)})
	if got := recvMessage(t, clientB.Outbound, time.Second); string(got.Data) != `{"seq":3}` {
		t.Fatalf("reconnect message: want=seq 3 got=%s", got.Data)
	}
}

func TestHubAllChannelDeliversOnce(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	client := hub.NewClient()
	hub.AddChannel(client, ChannelAll)
	hub.AddChannel(client, BundleChannel(1))

	hub.Broadcast(Message{Channel: BundleChannel(1), Event: EventBundle})
	hub.Broadcast(Message{Channel: BundleChannel(2), Event: EventBundle})

	recvMessage(t, client.Outbound, time.Second)
	recvMessage(t, client.Outbound, time.Second)
	select {
	case msg := <-client.Outbound:
		t.Fatalf("unexpected duplicate delivery: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubServeHTTPStreamsEvents(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	client := hub.NewClient()
	hub.AddChannel(client, BundleChannel(3))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, client)
		close(done)
	}()

	hub.Broadcast(Message{Channel: BundleChannel(3), Event: EventBundle, Data: json.RawMessage(`{"type":"bundle.deposited"}`)})
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	if !strings.Contains(body, "event: BundleEvent") || !strings.Contains(body, "bundle.deposited") {
		t.Fatalf("stream body missing event: %q", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: want=text/event-stream got=%s", ct)
	}
}
