package session

import (
	"encoding/json"
	"testing"
	"time"
)

func TestKeyFormats(t *testing.T) {
	if got := key("abc123"); got != "app:sess:abc123" {
		t.Errorf("key = %q, want app:sess:abc123", got)
	}
	if got := userSetKey("user-1"); got != "app:user_sessions:user-1" {
		t.Errorf("userSetKey = %q, want app:user_sessions:user-1", got)
	}
}

// Redis 里存的 JSON 字段名是会话格式的一部分，不能随手改
func TestAppSessionWireFormat(t *testing.T) {
	now := time.Now()
	b, err := json.Marshal(AppSession{
		UserID:    "user-1",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, field := range []string{"uid", "iat", "exp"} {
		if _, ok := m[field]; !ok {
			t.Errorf("missing field %q in %s", field, b)
		}
	}

	var back AppSession
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if back.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", back.UserID)
	}
	if back.ExpiresAt-back.IssuedAt != int64(time.Hour/time.Second) {
		t.Errorf("ttl = %d seconds, want 3600", back.ExpiresAt-back.IssuedAt)
	}
}
