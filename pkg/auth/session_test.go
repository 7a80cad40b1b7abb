package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newUnitStore() *RedisStore {
	return NewSessionStore(nil,
		[]byte("test-auth-key-must-be-32-bytes!!"),
		[]byte("test-enc-key-must-be-32-bytes!!!"),
		true,
		0,
	)
}

func TestNewSessionStore_Options(t *testing.T) {
	s := newUnitStore()
	if s.options.MaxAge != int(defaultSessionTTL.Seconds()) {
		t.Errorf("expected default MaxAge, got %d", s.options.MaxAge)
	}
	if !s.options.HttpOnly || !s.options.Secure || s.options.SameSite != http.SameSiteLaxMode {
		t.Errorf("unexpected cookie options: %+v", s.options)
	}

	short := NewSessionStore(nil, []byte("k"), nil, false, time.Hour)
	if short.options.MaxAge != 3600 {
		t.Errorf("expected MaxAge 3600, got %d", short.options.MaxAge)
	}
}

func TestRedisStore_New_WithoutUsableCookie(t *testing.T) {
	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"tampered cookie", &http.Cookie{Name: SessionName, Value: "not-a-signed-value"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/items", http.NoBody)
			if tt.cookie != nil {
				r.AddCookie(tt.cookie)
			}
			session, err := newUnitStore().New(r, SessionName)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !session.IsNew || session.ID != "" {
				t.Fatalf("expected a fresh session, got IsNew=%v ID=%q", session.IsNew, session.ID)
			}
		})
	}
}

func TestNewSessionID_Unique(t *testing.T) {
	a, b := newSessionID(), newSessionID()
	if a == "" || a == b {
		t.Fatalf("expected distinct non-empty IDs, got %q and %q", a, b)
	}
}
