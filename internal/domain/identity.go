package domain

import "context"

// Approver roles supplied by the identity collaborator.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleFinance  = "finance"
	RoleDirector = "director"
	RoleAdmin    = "admin"
)

// Identity is the opaque submitter/approver identity supplied by the
// surrounding IAM system. This core never resolves who an identity is; it
// only threads the id and role set through guards and audit fields.
type Identity struct {
	ID    string
	Roles []string
}

// HasRole reports whether the identity carries the given role.
func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}

	return false
}

type identityContextKey struct{}

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}
