package common

import "context"

type ctxKey string

const identityKey ctxKey = "auth/identity"

// Role values issued by the auth collaborator.
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

// Identity describes the authenticated caller as asserted by the auth service.
type Identity struct {
	UserID   string
	Username string
	Role     string
}

// IsStaff reports whether the identity may access staff/admin surfaces.
func (i Identity) IsStaff() bool {
	return i.Role == RoleStaff || i.Role == RoleAdmin
}

// WithIdentity stores the authenticated identity on the provided context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom extracts the authenticated identity from the context if present.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	v := ctx.Value(identityKey)
	if v == nil {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// UserID extracts just the authenticated user identifier, for logging.
func UserID(ctx context.Context) (string, bool) {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return "", false
	}
	return id.UserID, id.UserID != ""
}
