package domain

import "time"

// TokenType distinguishes the two halves of an issued pair.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// Token models a stored token record. Only the SHA-256 fingerprint of the
// opaque value is persisted; the plaintext exists once, in the issuance
// response. Revoked is monotonic: once true it never flips back.
type Token struct {
	ID        string
	ClientID  string
	TokenHash string // deterministic fingerprint (base64url SHA-256)
	Type      TokenType
	Scopes    []string // frozen at issuance
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the token is usable at the given instant.
func (t *Token) Active(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

// TokenPair is what the token endpoints return: the plaintext opaque access
// and refresh tokens with their grant metadata.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"` // always "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // access token lifetime
	Scope        string        `json:"scope,omitempty"`      // space-delimited
}

// Introspection is the RFC 7662 view of a token. When Active is false every
// other field is zero.
type Introspection struct {
	Active    bool
	ClientID  string
	Scopes    []string
	TokenType TokenType
	ExpiresAt time.Time
	IssuedAt  time.Time
}
