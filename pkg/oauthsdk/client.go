package oauthsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SDKClient is a client for the authd token service. All token operations
// require client credentials because every endpoint of the service is
// authenticated, including introspection and revocation.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// AdminToken is sent in the X-Admin-Token header for the /v1/clients
	// administrative endpoints. Leave empty when only using token endpoints.
	AdminToken string
}

// NewSDKClient creates a new token service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ============================================================================
// Token Endpoints
// ============================================================================

// ClientCredentialsGrant requests a token pair using the OAuth2
// client_credentials grant. An empty scope list requests the client's full
// allowed set.
func (c *SDKClient) ClientCredentialsGrant(
	ctx context.Context,
	clientID, clientSecret string,
	scopes []string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
	}
	if len(scopes) > 0 {
		data.Set("scope", strings.Join(scopes, " "))
	}

	return c.requestToken(ctx, "/token", data)
}

// RefreshGrant rotates a refresh token for a new token pair. The old refresh
// token is revoked as part of the exchange; a second attempt with the same
// token fails with invalid_grant.
func (c *SDKClient) RefreshGrant(
	ctx context.Context,
	clientID, clientSecret, refreshToken string,
) (*TokenResponse, error) {
	data := url.Values{
		"refresh_token": {refreshToken},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
	}

	return c.requestToken(ctx, "/token/refresh", data)
}

// Introspect queries the state of a token per RFC 7662. Inactive tokens
// yield {active:false} with no further detail.
func (c *SDKClient) Introspect(
	ctx context.Context,
	clientID, clientSecret, token string,
) (*IntrospectionResponse, error) {
	data := url.Values{
		"token":         {token},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
	}

	resp, err := c.postForm(ctx, "/introspect", data)
	if err != nil {
		return nil, err
	}

	var introspection IntrospectionResponse
	if err := decodeJSON(resp, &introspection, http.StatusOK); err != nil {
		return nil, err
	}

	return &introspection, nil
}

// RevokeToken revokes a token. Revocation is idempotent: revoking an unknown
// or already-revoked token still succeeds.
func (c *SDKClient) RevokeToken(ctx context.Context, clientID, clientSecret, token string) error {
	data := url.Values{
		"token":         {token},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
	}

	resp, err := c.postForm(ctx, "/revoke", data)
	if err != nil {
		return err
	}

	var revoke RevokeResponse
	return decodeJSON(resp, &revoke, http.StatusOK)
}

func (c *SDKClient) requestToken(ctx context.Context, path string, data url.Values) (*TokenResponse, error) {
	resp, err := c.postForm(ctx, path, data)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}

	return &tokenResp, nil
}

// ============================================================================
// Bootstrap
// ============================================================================

// Bootstrap initializes the token service with its first machine client.
// Fails once any client exists.
func (c *SDKClient) Bootstrap(
	ctx context.Context,
	token string,
	req BootstrapRequest,
) (*BootstrapResponse, error) {
	headers := map[string]string{"X-Bootstrap-Token": token}

	resp, err := c.postJSON(ctx, "/v1/bootstrap", req, headers)
	if err != nil {
		return nil, err
	}

	var bootstrapResp BootstrapResponse
	if err := decodeJSON(resp, &bootstrapResp, http.StatusCreated); err != nil {
		return nil, err
	}

	return &bootstrapResp, nil
}

// ============================================================================
// Client Administration
// ============================================================================

// CreateClient registers a new machine client. The returned secret is shown
// exactly once and cannot be recovered later.
func (c *SDKClient) CreateClient(ctx context.Context, req CreateClientRequest) (*CreateClientResponse, error) {
	resp, err := c.postJSON(ctx, "/v1/clients", req, c.adminHeaders())
	if err != nil {
		return nil, err
	}

	var created CreateClientResponse
	if err := decodeJSON(resp, &created, http.StatusCreated); err != nil {
		return nil, err
	}

	return &created, nil
}

// ListClients returns all registered clients.
func (c *SDKClient) ListClients(ctx context.Context) (*ListClientsResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/clients", nil, c.adminHeaders())
	if err != nil {
		return nil, err
	}

	var list ListClientsResponse
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}

	return &list, nil
}

// UpdateClientStatus flips a client's lifecycle status. Clients are never
// deleted; suspension and revocation go through here.
func (c *SDKClient) UpdateClientStatus(ctx context.Context, clientID, status string) error {
	req := UpdateClientStatusRequest{Status: status}

	resp, err := c.postJSON(ctx, "/v1/clients/"+clientID+"/status", req, c.adminHeaders())
	if err != nil {
		return err
	}

	var info ClientInfo
	return decodeJSON(resp, &info, http.StatusOK)
}

// RevokeClientTokens revokes every outstanding token of a client. Status
// changes do not cascade on their own; this is the explicit cascade action.
func (c *SDKClient) RevokeClientTokens(ctx context.Context, clientID string) (int64, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/clients/"+clientID+"/revoke-tokens", nil, c.adminHeaders())
	if err != nil {
		return 0, err
	}

	var result RevokeClientTokensResponse
	if err := decodeJSON(resp, &result, http.StatusOK); err != nil {
		return 0, err
	}

	return result.Revoked, nil
}

func (c *SDKClient) adminHeaders() map[string]string {
	if c.AdminToken == "" {
		return nil
	}
	return map[string]string{"X-Admin-Token": c.AdminToken}
}

// ============================================================================
// Health
// ============================================================================

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/livez", nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}

	return &health, nil
}

// GetReadiness checks if the service is ready.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/readyz", nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}

	return &health, nil
}

// ============================================================================
// HTTP Helpers
// ============================================================================

func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

func (c *SDKClient) doRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

func (c *SDKClient) postForm(ctx context.Context, path string, data url.Values) (*http.Response, error) {
	headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	return c.doRequest(ctx, http.MethodPost, path, strings.NewReader(data.Encode()), headers)
}

func (c *SDKClient) postJSON(
	ctx context.Context,
	path string,
	payload any,
	headers map[string]string,
) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	if headers == nil {
		headers = map[string]string{}
	}
	headers["Content-Type"] = "application/json"

	return c.doRequest(ctx, http.MethodPost, path, bytes.NewReader(body), headers)
}

// decodeJSON decodes a JSON response into the target interface.
// Returns a typed OAuth2Error if the response indicates an error.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
