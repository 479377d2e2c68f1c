package logger

import "testing"

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	kv := sanitizeKVs([]interface{}{
		"jwt_secret_key", "hunter2",
		"access_token", "abc",
		"bundle_id", uint64(7),
		"header", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIweGFiYyJ9.sig",
	})
	if len(kv) != 8 {
		t.Fatalf("len: want=8 got=%d", len(kv))
	}
	if kv[1] != "[REDACTED]" {
		t.Fatalf("secret not redacted: %v", kv[1])
	}
	if kv[3] != "[REDACTED]" {
		t.Fatalf("token not redacted: %v", kv[3])
	}
	if kv[5] != uint64(7) {
		t.Fatalf("bundle_id mutated: %v", kv[5])
	}
	if kv[7] != "[REDACTED]" {
		t.Fatalf("jwt-looking value not redacted: %v", kv[7])
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	kv := sanitizeKVs([]interface{}{"bundle_id", 1, "dangling"})
	if len(kv) != 3 || kv[2] != "dangling" {
		t.Fatalf("unexpected output: %v", kv)
	}
}

func TestNewTestMode(t *testing.T) {
	log, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.With("repo", "X").Info("hello", "k", "v")
}
