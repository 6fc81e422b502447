package oauthsdk

// ============================================================================
// Internal Response Types (used for JSON unmarshaling)
// ============================================================================

// ErrorResponse represents a standard OAuth2 error response per RFC 6749.
// This is used internally for parsing HTTP error responses.
// Client code should use the OAuth2Error type from errors.go instead.
type ErrorResponse struct {
	// Error is the OAuth2 error code (e.g., "invalid_request", "invalid_grant")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse represents the OAuth2 token endpoint response per RFC 6749.
// This is returned from POST /token and POST /token/refresh.
type TokenResponse struct {
	// AccessToken is the opaque access token used to authenticate API requests
	AccessToken string `json:"access_token"`

	// RefreshToken is the opaque refresh token used to obtain new token pairs
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is always "Bearer" per RFC 6749
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`

	// Scope is the space-delimited list of scopes granted to this token
	Scope string `json:"scope,omitempty"`
}

// IntrospectionResponse represents the RFC7662 token introspection response.
// When a token is inactive, only the Active field will be false and other fields will be empty.
type IntrospectionResponse struct {
	Active bool `json:"active"`

	// Optional fields (only present when active=true)
	Scope     string `json:"scope,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
	Iat       int64  `json:"iat,omitempty"`
}

// RevokeResponse is returned by POST /revoke. Revocation is idempotent, so
// Success is true even when no token matched.
type RevokeResponse struct {
	Success bool `json:"success"`
}

// ============================================================================
// Bootstrap Types
// ============================================================================

// BootstrapRequest contains the data needed to bootstrap the token service.
// It creates the initial machine client during service initialization.
type BootstrapRequest struct {
	// ClientName is the name for the initial client (max 100 chars, alphanumeric with _ or -)
	ClientName string `json:"client_name"`

	// ClientScopes is the list of scopes the client may request
	ClientScopes []string `json:"client_scopes"`
}

// BootstrapResponse contains the credentials of the created client.
type BootstrapResponse struct {
	// ClientID is the unique identifier of the created client
	ClientID string `json:"client_id"`

	// ClientSecret is the plaintext secret for the created client (only returned once)
	ClientSecret string `json:"client_secret"`
}

// ============================================================================
// Client Admin Types
// ============================================================================

// CreateClientRequest represents the request to register a new machine client.
type CreateClientRequest struct {
	// Name is the human-readable name for the client
	Name string `json:"name"`

	// Scopes is the list of scopes this client is allowed to request
	Scopes []string `json:"scopes"`

	// RateLimit is an advisory requests-per-hour figure stored with the client
	RateLimit int `json:"rate_limit,omitempty"`
}

// CreateClientResponse contains the created client's ID and secret.
type CreateClientResponse struct {
	// ClientID is the unique identifier for the created client
	ClientID string `json:"client_id"`

	// ClientSecret is the plaintext secret (only returned once at creation)
	ClientSecret string `json:"client_secret"`
}

// UpdateClientStatusRequest flips a client's lifecycle status.
type UpdateClientStatusRequest struct {
	// Status is one of "active", "suspended" or "revoked"
	Status string `json:"status"`
}

// ClientInfo represents information about a registered machine client.
type ClientInfo struct {
	// ID is the unique identifier for the client
	ID string `json:"id"`

	// Name is the human-readable name of the client
	Name string `json:"name"`

	// Scopes is the list of scopes this client may request
	Scopes []string `json:"scopes"`

	// Status is the client's lifecycle status (active, suspended, revoked)
	Status string `json:"status"`

	// RateLimit is the advisory requests-per-hour figure for the client
	RateLimit int `json:"rate_limit"`

	// CreatedAt is the timestamp when the client was created (RFC3339 format)
	CreatedAt string `json:"created_at"`
}

// ListClientsResponse contains a list of registered clients.
type ListClientsResponse struct {
	Clients []ClientInfo `json:"clients"`
}

// RevokeClientTokensResponse reports how many tokens a cascade revocation hit.
type RevokeClientTokensResponse struct {
	Revoked int64 `json:"revoked"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the store connection status
	Database string `json:"database"`
}
