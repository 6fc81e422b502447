package http

import (
	"net/http"

	"github.com/drawpoint/authd/internal/auth/service"
	"github.com/drawpoint/authd/pkg/httpx"
	"github.com/drawpoint/authd/pkg/oauthsdk"
)

// RevokeHandler handles token revocation.
type RevokeHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP handles POST /revoke.
//
//	@Summary		Token Revocation
//	@Description	Marks a token revoked. The operation is idempotent: revoking an unknown or
//	@Description	already-revoked token succeeds exactly like revoking a live one.
//	@Tags			OAuth2
//	@Accept			x-www-form-urlencoded
//	@Accept			json
//	@Produce		json
//	@Param			token			formData	string					true	"Token to revoke"
//	@Param			client_id		formData	string					true	"Client identifier"
//	@Param			client_secret	formData	string					true	"Client secret"
//	@Success		200				{object}	oauthsdk.RevokeResponse	"success"
//	@Failure		400				{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		500				{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Router			/revoke [post].
func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params, err := httpx.DecodeParams(r)
	if err != nil {
		oauthsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	token := params.Get("token")
	clientID := params.Get("client_id")
	clientSecret := params.Get("client_secret")
	if token == "" || clientID == "" || clientSecret == "" {
		oauthsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.TokenService.Revoke(r.Context(), clientID, clientSecret, token); err != nil {
		writeGrantError(w, r, err)
		return
	}

	httpx.RecordTokenRevoked()
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, oauthsdk.RevokeResponse{Success: true})
}
