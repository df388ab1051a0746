package ports

import "context"

// IdentityVerifier turns a bearer token into the caller's stable subject id.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}
