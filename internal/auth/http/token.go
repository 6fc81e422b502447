package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/drawpoint/authd/internal/auth/domain"
	"github.com/drawpoint/authd/internal/auth/service"
	"github.com/drawpoint/authd/pkg/httpx"
	"github.com/drawpoint/authd/pkg/oauthsdk"
	"github.com/drawpoint/authd/pkg/slogx"
)

// TokenHandler handles the OAuth2 token endpoint.
type TokenHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP handles POST /token.
//
//	@Summary		OAuth2 Token Endpoint
//	@Description	Issues an opaque access/refresh token pair via the client_credentials grant.
//	@Description	The client authenticates with its own credentials; no user is involved.
//	@Tags			OAuth2
//	@Accept			x-www-form-urlencoded
//	@Accept			json
//	@Produce		json
//	@Param			grant_type		formData	string					true	"Must be client_credentials"
//	@Param			client_id		formData	string					true	"Client identifier"
//	@Param			client_secret	formData	string					true	"Client secret"
//	@Param			scope			formData	string					false	"Space-delimited scopes (defaults to the client's full allowed set)"
//	@Success		200				{object}	oauthsdk.TokenResponse	"access_token, refresh_token, token_type, expires_in, scope"
//	@Failure		400				{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		500				{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Router			/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params, err := httpx.DecodeParams(r)
	if err != nil {
		oauthsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	grantType := params.Get("grant_type")
	if grantType == "" {
		oauthsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if grantType != "client_credentials" {
		httpx.RecordGrantFailure(oauthsdk.ErrorCodeUnsupportedGrantType)
		oauthsdk.ErrUnsupportedGrantType.WriteError(w)
		return
	}

	clientID := params.Get("client_id")
	clientSecret := params.Get("client_secret")
	if clientID == "" || clientSecret == "" {
		oauthsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	scopes := httpx.ParseSpaceDelimitedFields(params.Get("scope"))

	pair, err := h.TokenService.IssueClientCredentials(r.Context(), clientID, clientSecret, scopes)
	if err != nil {
		writeGrantError(w, r, err)
		return
	}

	httpx.RecordTokenIssued("client_credentials")
	writeTokenPair(w, pair)
}

// RefreshHandler handles the refresh token rotation endpoint.
type RefreshHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP handles POST /token/refresh.
//
//	@Summary		Refresh Token Rotation
//	@Description	Exchanges a refresh token for a new token pair. The presented refresh token
//	@Description	is consumed atomically; replaying it fails with invalid_grant.
//	@Tags			OAuth2
//	@Accept			x-www-form-urlencoded
//	@Accept			json
//	@Produce		json
//	@Param			refresh_token	formData	string					true	"Refresh token to rotate"
//	@Param			client_id		formData	string					true	"Client identifier"
//	@Param			client_secret	formData	string					true	"Client secret"
//	@Success		200				{object}	oauthsdk.TokenResponse	"access_token, refresh_token, token_type, expires_in, scope"
//	@Failure		400				{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		500				{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Router			/token/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params, err := httpx.DecodeParams(r)
	if err != nil {
		oauthsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	refreshToken := params.Get("refresh_token")
	clientID := params.Get("client_id")
	clientSecret := params.Get("client_secret")
	if refreshToken == "" || clientID == "" || clientSecret == "" {
		oauthsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.TokenService.Refresh(r.Context(), clientID, clientSecret, refreshToken)
	if err != nil {
		writeGrantError(w, r, err)
		return
	}

	httpx.RecordTokenIssued("refresh_token")
	writeTokenPair(w, pair)
}

// writeGrantError maps service errors onto RFC 6749 error responses. Unknown
// errors are logged and surfaced as an opaque server_error.
func writeGrantError(w http.ResponseWriter, r *http.Request, err error) {
	var scopeErr *service.InvalidScopeError

	switch {
	case errors.Is(err, service.ErrInvalidClient):
		httpx.RecordGrantFailure(oauthsdk.ErrorCodeInvalidClient)
		oauthsdk.ErrInvalidClient.WriteError(w)
	case errors.Is(err, service.ErrClientInactive):
		httpx.RecordGrantFailure(oauthsdk.ErrorCodeUnauthorizedClient)
		oauthsdk.ErrUnauthorizedClient.WriteError(w)
	case errors.Is(err, service.ErrInvalidGrant):
		httpx.RecordGrantFailure(oauthsdk.ErrorCodeInvalidGrant)
		oauthsdk.ErrInvalidGrant.WriteError(w)
	case errors.As(err, &scopeErr):
		httpx.RecordGrantFailure(oauthsdk.ErrorCodeInvalidScope)
		oauthsdk.NewOAuth2Error(
			http.StatusBadRequest,
			oauthsdk.ErrorCodeInvalidScope,
			"requested scopes not allowed: "+strings.Join(scopeErr.Scopes, " "),
		).WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("token grant failed", "error", err)
		httpx.RecordGrantFailure(oauthsdk.ErrorCodeServerError)
		oauthsdk.ErrServerError.WriteError(w)
	}
}

func writeTokenPair(w http.ResponseWriter, pair *domain.TokenPair) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, oauthsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
		Scope:        pair.Scope,
	})
}
