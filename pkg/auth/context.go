package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ghuser/titleguard/pkg/logger"
)

// Method records how the caller's organization was established.
type Method string

const (
	MethodSession Method = "session"
	MethodHeader  Method = "header"
)

// ErrOrgIDNotFound means the request reached a handler without an
// organization. Handlers answer 401.
var ErrOrgIDNotFound = errors.New("org_id not found in context")

type principalKey struct{}

type principal struct {
	orgID  uuid.UUID
	method Method
}

// OrgIDFromCtx returns the organization every item and message read or write
// is scoped to.
func OrgIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	p, ok := ctx.Value(principalKey{}).(principal)
	if !ok || p.orgID == uuid.Nil {
		return uuid.Nil, ErrOrgIDNotFound
	}
	return p.orgID, nil
}

// MethodFromCtx reports how OrgIDFromCtx's value was obtained, or "" when
// the request is unauthenticated.
func MethodFromCtx(ctx context.Context) Method {
	p, _ := ctx.Value(principalKey{}).(principal)
	return p.method
}

// WithOrgID attaches orgID as if it came from a session.
func WithOrgID(ctx context.Context, orgID uuid.UUID) context.Context {
	return withPrincipal(ctx, orgID, MethodSession)
}

// withPrincipal also binds org_id to every log record written with ctx.
func withPrincipal(ctx context.Context, orgID uuid.UUID, method Method) context.Context {
	ctx = context.WithValue(ctx, principalKey{}, principal{orgID: orgID, method: method})
	return logger.ContextWith(ctx, "org_id", orgID.String())
}
