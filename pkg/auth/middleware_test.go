package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/titleguard/pkg/httpx"
	"github.com/ghuser/titleguard/pkg/logger"
)

// cookieStore stands in for RedisStore; both satisfy sessions.Store.
func cookieStore() sessions.Store {
	return sessions.NewCookieStore(
		[]byte("test-auth-key-must-be-32-bytes!!"),
		[]byte("test-enc-key-must-be-32-bytes!!!"),
	)
}

// sessionCookies saves a session holding values and returns its cookies.
func sessionCookies(t *testing.T, store sessions.Store, values map[any]any) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	session, _ := store.Get(r, SessionName)
	for k, v := range values {
		session.Values[k] = v
	}
	if err := session.Save(r, w); err != nil {
		t.Fatalf("save session: %v", err)
	}
	return w.Result().Cookies()
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestRequireAuth(t *testing.T) {
	store := cookieStore()
	orgID := uuid.New()

	issued := httptest.NewRecorder()
	if err := IssueSession(store, issued, httptest.NewRequest(http.MethodPost, "/login", http.NoBody), orgID); err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	tests := []struct {
		name       string
		cookies    []*http.Cookie
		wantStatus int
		wantBody   string
	}{
		{"issued session", issued.Result().Cookies(), http.StatusOK, ""},
		{"no cookie", nil, http.StatusUnauthorized, "authentication required"},
		{"tampered cookie", []*http.Cookie{{Name: SessionName, Value: "forged"}}, http.StatusUnauthorized, "authentication required"},
		{"session without org", sessionCookies(t, store, map[any]any{"user": "ed"}), http.StatusUnauthorized, "authentication required"},
		{"org is not a uuid", sessionCookies(t, store, map[any]any{sessionOrgIDKey: "org-42"}), http.StatusUnauthorized, "invalid session data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				gotOrg    uuid.UUID
				gotMethod Method
			)
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotOrg, _ = OrgIDFromCtx(r.Context())
				gotMethod = MethodFromCtx(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			r := httptest.NewRequest(http.MethodPut, "/items/1", http.NoBody)
			for _, c := range tt.cookies {
				r.AddCookie(c)
			}
			w := httptest.NewRecorder()
			RequireAuth(store, logger.Nop())(next).ServeHTTP(w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				var body httpx.ErrorBody
				decodeJSON(t, w, &body)
				if body.Error != tt.wantBody {
					t.Errorf("error: got %q, want %q", body.Error, tt.wantBody)
				}
				return
			}
			if gotOrg != orgID || gotMethod != MethodSession {
				t.Errorf("principal: got %v/%q, want %v/%q", gotOrg, gotMethod, orgID, MethodSession)
			}
		})
	}
}

func TestOrgIDFromHeader(t *testing.T) {
	orgID := uuid.New()
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantOrgID  uuid.UUID
	}{
		{"valid header", orgID.String(), http.StatusOK, orgID},
		{"missing header", "", http.StatusUnauthorized, uuid.Nil},
		{"malformed header", "org-42", http.StatusUnauthorized, uuid.Nil},
		{"nil uuid", uuid.Nil.String(), http.StatusUnauthorized, uuid.Nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got uuid.UUID
			var method Method
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = OrgIDFromCtx(r.Context())
				method = MethodFromCtx(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			r := httptest.NewRequest(http.MethodGet, "/items", http.NoBody)
			if tt.header != "" {
				r.Header.Set(httpx.OrgIDHeader, tt.header)
			}
			w := httptest.NewRecorder()
			OrgIDFromHeader(logger.Nop())(next).ServeHTTP(w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if got != tt.wantOrgID {
				t.Fatalf("expected OrgID %v, got %v", tt.wantOrgID, got)
			}
			if tt.wantStatus == http.StatusOK && method != MethodHeader {
				t.Fatalf("expected method %q, got %q", MethodHeader, method)
			}
		})
	}
}
