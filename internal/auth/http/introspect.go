package http

import (
	"net/http"
	"strings"

	"github.com/drawpoint/authd/internal/auth/service"
	"github.com/drawpoint/authd/pkg/httpx"
	"github.com/drawpoint/authd/pkg/oauthsdk"
)

// IntrospectHandler handles RFC 7662 token introspection.
type IntrospectHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP handles POST /introspect.
//
//	@Summary		Token Introspection
//	@Description	Reports whether a token is active along with its metadata per RFC 7662.
//	@Description	Inactive tokens, whatever the reason, produce the bare {"active": false} body.
//	@Tags			OAuth2
//	@Accept			x-www-form-urlencoded
//	@Accept			json
//	@Produce		json
//	@Param			token			formData	string							true	"Token to introspect"
//	@Param			client_id		formData	string							true	"Client identifier"
//	@Param			client_secret	formData	string							true	"Client secret"
//	@Success		200				{object}	oauthsdk.IntrospectionResponse	"active plus metadata when active"
//	@Failure		400				{object}	oauthsdk.ErrorResponse			"error, error_description"
//	@Failure		401				{object}	oauthsdk.ErrorResponse			"error, error_description"
//	@Failure		500				{object}	oauthsdk.ErrorResponse			"error, error_description"
//	@Router			/introspect [post].
func (h *IntrospectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	info, err := h.TokenService.Introspect(r.Context(), clientID, clientSecret, token)
	if err != nil {
		writeGrantError(w, r, err)
		return
	}

	httpx.RecordIntrospection(info.Active)
	httpx.NoCache(w)

	if !info.Active {
		// Inactive responses never leak why the token is inactive.
		httpx.WriteJSON(w, http.StatusOK, oauthsdk.IntrospectionResponse{Active: false})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, oauthsdk.IntrospectionResponse{
		Active:    true,
		Scope:     strings.Join(info.Scopes, " "),
		ClientID:  info.ClientID,
		TokenType: string(info.TokenType),
		Exp:       info.ExpiresAt.Unix(),
		Iat:       info.IssuedAt.Unix(),
	})
}
