package http

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/drawpoint/authd/internal/auth/domain"
	"github.com/drawpoint/authd/internal/auth/service"
	"github.com/drawpoint/authd/pkg/httpx"
	"github.com/drawpoint/authd/pkg/oauthsdk"
	"github.com/drawpoint/authd/pkg/slogx"
)

// ClientsHandler handles the client administration endpoints.
type ClientsHandler struct {
	ClientService *service.ClientService
}

// AdminAuthMiddleware guards the admin surface with a shared token carried in
// the X-Admin-Token header. When no token is configured the whole surface is
// disabled and answers 404.
func AdminAuthMiddleware(adminToken string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminToken == "" {
				httpx.WriteJSON(w, http.StatusNotFound, oauthsdk.ErrorResponse{
					Error:            "not_found",
					ErrorDescription: "Client administration is not enabled",
				})
				return
			}

			got := r.Header.Get("X-Admin-Token")
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(adminToken)) != 1 {
				httpx.WriteJSON(w, http.StatusUnauthorized, oauthsdk.ErrorResponse{
					Error:            "unauthorized",
					ErrorDescription: "Valid X-Admin-Token header is required",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// HandleCreate handles POST /v1/clients.
//
//	@Summary		Create Machine Client
//	@Description	Registers a new machine client and returns its credentials. The plaintext secret is shown exactly once.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Param			X-Admin-Token	header		string							true	"Admin token"
//	@Param			request			body		oauthsdk.CreateClientRequest	true	"Client registration request"
//	@Success		201				{object}	oauthsdk.CreateClientResponse	"client_id and client_secret"
//	@Failure		400				{object}	oauthsdk.ErrorResponse			"error, error_description"
//	@Failure		401				{object}	oauthsdk.ErrorResponse			"error, error_description"
//	@Failure		500				{object}	oauthsdk.ErrorResponse			"error, error_description"
//	@Router			/v1/clients [post].
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req oauthsdk.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, oauthsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON in request body",
		})
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, oauthsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Client name is required",
		})
		return
	}
	if len(req.Scopes) == 0 {
		httpx.WriteJSON(w, http.StatusBadRequest, oauthsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "At least one scope is required",
		})
		return
	}

	clientID, secret, err := h.ClientService.CreateClient(ctx, strings.TrimSpace(req.Name), req.Scopes, req.RateLimit)
	if err != nil {
		log.Error("failed to create client", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, oauthsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to create client",
		})
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, oauthsdk.CreateClientResponse{
		ClientID:     clientID,
		ClientSecret: secret,
	})
}

// HandleList handles GET /v1/clients.
//
//	@Summary		List Machine Clients
//	@Description	Lists all registered machine clients. Secret hashes are never included.
//	@Tags			Clients
//	@Produce		json
//	@Param			X-Admin-Token	header		string							true	"Admin token"
//	@Success		200				{object}	oauthsdk.ListClientsResponse	"clients"
//	@Failure		401				{object}	oauthsdk.ErrorResponse			"error, error_description"
//	@Failure		500				{object}	oauthsdk.ErrorResponse			"error, error_description"
//	@Router			/v1/clients [get].
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	clients, err := h.ClientService.ListClients(ctx)
	if err != nil {
		log.Error("failed to list clients", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, oauthsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to list clients",
		})
		return
	}

	infos := make([]oauthsdk.ClientInfo, len(clients))
	for i, c := range clients {
		infos[i] = clientInfo(c)
	}

	httpx.WriteJSON(w, http.StatusOK, oauthsdk.ListClientsResponse{Clients: infos})
}

// HandleUpdateStatus handles POST /v1/clients/{id}/status.
//
//	@Summary		Update Client Status
//	@Description	Flips a client's lifecycle status. Outstanding tokens are untouched; use the revoke-tokens cascade for that.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Param			X-Admin-Token	header		string								true	"Admin token"
//	@Param			id				path		string								true	"Client ID"
//	@Param			request			body		oauthsdk.UpdateClientStatusRequest	true	"New status"
//	@Success		200				{object}	oauthsdk.ClientInfo					"updated client"
//	@Failure		400				{object}	oauthsdk.ErrorResponse				"error, error_description"
//	@Failure		401				{object}	oauthsdk.ErrorResponse				"error, error_description"
//	@Failure		404				{object}	oauthsdk.ErrorResponse				"error, error_description"
//	@Failure		500				{object}	oauthsdk.ErrorResponse				"error, error_description"
//	@Router			/v1/clients/{id}/status [post].
func (h *ClientsHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	clientID := r.PathValue("id")
	if clientID == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, oauthsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Client ID is required",
		})
		return
	}

	var req oauthsdk.UpdateClientStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, oauthsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON in request body",
		})
		return
	}

	client, err := h.ClientService.UpdateClientStatus(ctx, clientID, domain.ClientStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			httpx.WriteJSON(w, http.StatusBadRequest, oauthsdk.ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "Status must be one of: active, suspended, revoked",
			})
		case errors.Is(err, service.ErrClientNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, oauthsdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "Client not found",
			})
		default:
			log.Error("failed to update client status", "error", err, "client_id", clientID)
			httpx.WriteJSON(w, http.StatusInternalServerError, oauthsdk.ErrorResponse{
				Error:            "server_error",
				ErrorDescription: "Failed to update client status",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, clientInfo(client))
}

// HandleRevokeTokens handles POST /v1/clients/{id}/revoke-tokens.
//
//	@Summary		Revoke All Client Tokens
//	@Description	Revokes every outstanding token issued to a client and reports how many rows were hit.
//	@Tags			Clients
//	@Produce		json
//	@Param			X-Admin-Token	header		string								true	"Admin token"
//	@Param			id				path		string								true	"Client ID"
//	@Success		200				{object}	oauthsdk.RevokeClientTokensResponse	"revoked count"
//	@Failure		401				{object}	oauthsdk.ErrorResponse				"error, error_description"
//	@Failure		404				{object}	oauthsdk.ErrorResponse				"error, error_description"
//	@Failure		500				{object}	oauthsdk.ErrorResponse				"error, error_description"
//	@Router			/v1/clients/{id}/revoke-tokens [post].
func (h *ClientsHandler) HandleRevokeTokens(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	clientID := r.PathValue("id")

	revoked, err := h.ClientService.RevokeClientTokens(ctx, clientID)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, oauthsdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "Client not found",
			})
			return
		}
		log.Error("failed to revoke client tokens", "error", err, "client_id", clientID)
		httpx.WriteJSON(w, http.StatusInternalServerError, oauthsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to revoke client tokens",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, oauthsdk.RevokeClientTokensResponse{Revoked: revoked})
}

func clientInfo(c domain.Client) oauthsdk.ClientInfo {
	return oauthsdk.ClientInfo{
		ID:        c.ID,
		Name:      c.Name,
		Scopes:    c.Scopes,
		Status:    string(c.Status),
		RateLimit: c.RateLimit,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
