package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/titleguard/pkg/httpx"
	"github.com/ghuser/titleguard/pkg/logger"
)

// SessionName is the cookie that carries the editor's session.
const SessionName = "titleguard_session"

const sessionOrgIDKey = "org_id"

var (
	errNoSession = errors.New("session cookie missing or unreadable")
	errNoOrg     = errors.New("session has no org_id")
	errBadOrg    = errors.New("session org_id is not a uuid")
)

// IssueSession binds orgID to the caller's session and writes the cookie.
func IssueSession(store sessions.Store, w http.ResponseWriter, r *http.Request, orgID uuid.UUID) error {
	session, err := store.Get(r, SessionName)
	if err != nil && session == nil {
		return fmt.Errorf("open session: %w", err)
	}
	session.Values[sessionOrgIDKey] = orgID.String()
	return session.Save(r, w)
}

func orgFromSession(store sessions.Store, r *http.Request) (uuid.UUID, error) {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", errNoSession, err)
	}
	raw, _ := session.Values[sessionOrgIDKey].(string)
	if raw == "" {
		return uuid.Nil, errNoOrg
	}
	orgID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errBadOrg
	}
	return orgID, nil
}

// RequireAuth admits requests whose session cookie names an organization and
// stores that org on the context. Anything else gets 401.
func RequireAuth(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			orgID, err := orgFromSession(store, r)
			if err != nil {
				log.WarnContext(r.Context(), "session rejected", "error", err)
				if errors.Is(err, errBadOrg) {
					httpx.JSONError(w, http.StatusUnauthorized, "invalid session data")
					return
				}
				httpx.Unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), orgID, MethodSession)))
		})
	}
}

// OrgIDFromHeader trusts the X-Org-Id header instead of a session. Mounted
// when REQUIRE_AUTH is false.
func OrgIDFromHeader(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(httpx.OrgIDHeader)
			orgID, err := uuid.Parse(raw)
			if err != nil || orgID == uuid.Nil {
				log.WarnContext(r.Context(), "org header rejected", "value", raw)
				httpx.Unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), orgID, MethodHeader)))
		})
	}
}
