package domain

import "time"

// TokenIssuer issues tokens (e.g. JWT) for an authenticated profile. Token
// issuance normally lives in the platform account service; the engine issues
// tokens only for tooling and tests.
type TokenIssuer interface {
	Issue(profileID string, kind ProfileKind, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the acting profile ID.
type TokenVerifier interface {
	Verify(token string) (profileID string, err error)
}
