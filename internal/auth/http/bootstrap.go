package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/drawpoint/authd/internal/auth/service"
	"github.com/drawpoint/authd/pkg/httpx"
	"github.com/drawpoint/authd/pkg/oauthsdk"
	"github.com/drawpoint/authd/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles the one-time bootstrap endpoint.
//
//	@Summary		Bootstrap the token service
//	@Description	Creates the first machine client on an empty store. Only available while a bootstrap
//	@Description	token is configured and no client exists yet; after that every call fails.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string						true	"Bootstrap token"
//	@Param			request				body		oauthsdk.BootstrapRequest	true	"Initial client configuration"
//	@Success		201					{object}	oauthsdk.BootstrapResponse	"client_id and client_secret of the first client"
//	@Failure		400					{object}	oauthsdk.ErrorResponse		"error, error_description"
//	@Failure		401					{object}	oauthsdk.ErrorResponse		"error, error_description"
//	@Failure		404					{object}	oauthsdk.ErrorResponse		"error, error_description"
//	@Failure		500					{object}	oauthsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())

	if h.BootstrapService.Token == "" {
		httpx.WriteJSON(w, http.StatusNotFound, oauthsdk.ErrorResponse{
			Error:            "not_found",
			ErrorDescription: "Bootstrap endpoint is not enabled",
		})
		return
	}

	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, oauthsdk.ErrorResponse{
			Error:            "unauthorized",
			ErrorDescription: "Bootstrap token is required in X-Bootstrap-Token header",
		})
		return
	}

	var req oauthsdk.BootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, oauthsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Request body must be valid JSON",
		})
		return
	}

	if strings.TrimSpace(req.ClientName) == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, oauthsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Client name is required",
		})
		return
	}
	if len(req.ClientScopes) == 0 {
		httpx.WriteJSON(w, http.StatusBadRequest, oauthsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "At least one client scope is required",
		})
		return
	}

	clientID, clientSecret, err := h.BootstrapService.Bootstrap(
		r.Context(),
		token,
		strings.TrimSpace(req.ClientName),
		req.ClientScopes,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapAlready):
			httpx.WriteJSON(w, http.StatusUnauthorized, oauthsdk.ErrorResponse{
				Error:            "unauthorized",
				ErrorDescription: "Service has already been bootstrapped",
			})
		case errors.Is(err, service.ErrBootstrapUnauthorized):
			httpx.WriteJSON(w, http.StatusUnauthorized, oauthsdk.ErrorResponse{
				Error:            "unauthorized",
				ErrorDescription: "Invalid bootstrap token",
			})
		default:
			l.Error("bootstrap failed", "error", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, oauthsdk.ErrorResponse{
				Error:            "server_error",
				ErrorDescription: "An internal error occurred",
			})
		}
		return
	}

	l.Info("service bootstrapped", "client_id", clientID)

	// The secret is only ever shown here.
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, oauthsdk.BootstrapResponse{
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}
