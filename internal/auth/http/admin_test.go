package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/drawpoint/authd/internal/auth/service"
	"github.com/drawpoint/authd/internal/auth/store/drivers/memory"
	"github.com/drawpoint/authd/pkg/oauthsdk"
)

const (
	testAdminToken     = "admin-token-for-tests"
	testBootstrapToken = "bootstrap-token-for-tests"
)

// newTestRouter wires a full router over a fresh in-memory store so routing,
// middleware and handlers are exercised together.
func newTestRouter(t *testing.T) *Router {
	t.Helper()

	st := memory.NewStore()
	logger := slog.New(slog.DiscardHandler)

	router := NewRouter("test", st, logger, testAdminToken)
	router.TokenService = &service.TokenService{
		Store:      st,
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
	router.ClientService = &service.ClientService{Store: st}
	router.BootstrapService = &service.BootstrapService{
		Store: st,
		Token: testBootstrapToken,
	}
	router.ApplyRoutes()

	return router
}

func doJSON(t *testing.T, h http.Handler, method, path string, headers map[string]string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(data))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func adminHeaders() map[string]string {
	return map[string]string{"X-Admin-Token": testAdminToken}
}

func TestBootstrapHandler(t *testing.T) {
	router := newTestRouter(t)

	bootstrapReq := oauthsdk.BootstrapRequest{
		ClientName:   "svc-initial",
		ClientScopes: []string{"read:reports"},
	}

	t.Run("rejects missing token header", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/v1/bootstrap", nil, bootstrapReq)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects wrong token", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/v1/bootstrap",
			map[string]string{"X-Bootstrap-Token": "wrong"}, bootstrapReq)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("creates the first client once", func(t *testing.T) {
		headers := map[string]string{"X-Bootstrap-Token": testBootstrapToken}

		rec := doJSON(t, router, http.MethodPost, "/v1/bootstrap", headers, bootstrapReq)
		require.Equal(t, http.StatusCreated, rec.Code)

		resp := decodeBody[oauthsdk.BootstrapResponse](t, rec)
		require.NotEmpty(t, resp.ClientID)
		require.NotEmpty(t, resp.ClientSecret)

		// Second attempt fails even with the right token.
		rec = doJSON(t, router, http.MethodPost, "/v1/bootstrap", headers, bootstrapReq)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("disabled without configured token", func(t *testing.T) {
		disabled := newTestRouter(t)
		disabled.BootstrapService.Token = ""

		rec := doJSON(t, disabled, http.MethodPost, "/v1/bootstrap",
			map[string]string{"X-Bootstrap-Token": testBootstrapToken}, bootstrapReq)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestClientsAdminEndpoints(t *testing.T) {
	router := newTestRouter(t)

	t.Run("requires admin token", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/v1/clients", nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = doJSON(t, router, http.MethodGet, "/v1/clients",
			map[string]string{"X-Admin-Token": "wrong"}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("create list update revoke lifecycle", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/v1/clients", adminHeaders(), oauthsdk.CreateClientRequest{
			Name:      "svc-reporting",
			Scopes:    []string{"read:reports"},
			RateLimit: 600,
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		created := decodeBody[oauthsdk.CreateClientResponse](t, rec)
		require.NotEmpty(t, created.ClientID)
		require.NotEmpty(t, created.ClientSecret)

		rec = doJSON(t, router, http.MethodGet, "/v1/clients", adminHeaders(), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		list := decodeBody[oauthsdk.ListClientsResponse](t, rec)
		require.Len(t, list.Clients, 1)
		require.Equal(t, "svc-reporting", list.Clients[0].Name)
		require.Equal(t, "active", list.Clients[0].Status)
		require.Equal(t, 600, list.Clients[0].RateLimit)

		rec = doJSON(t, router, http.MethodPost, "/v1/clients/"+created.ClientID+"/status",
			adminHeaders(), oauthsdk.UpdateClientStatusRequest{Status: "suspended"})
		require.Equal(t, http.StatusOK, rec.Code)

		updated := decodeBody[oauthsdk.ClientInfo](t, rec)
		require.Equal(t, "suspended", updated.Status)

		rec = doJSON(t, router, http.MethodPost, "/v1/clients/"+created.ClientID+"/revoke-tokens",
			adminHeaders(), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		revoked := decodeBody[oauthsdk.RevokeClientTokensResponse](t, rec)
		require.Zero(t, revoked.Revoked)
	})

	t.Run("rejects invalid payloads", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/v1/clients", adminHeaders(),
			oauthsdk.CreateClientRequest{Name: "", Scopes: []string{"read:reports"}})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		rec = doJSON(t, router, http.MethodPost, "/v1/clients", adminHeaders(),
			oauthsdk.CreateClientRequest{Name: "svc-x", Scopes: nil})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown client is 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/v1/clients/does-not-exist/status",
			adminHeaders(), oauthsdk.UpdateClientStatusRequest{Status: "active"})
		require.Equal(t, http.StatusNotFound, rec.Code)

		rec = doJSON(t, router, http.MethodPost, "/v1/clients/does-not-exist/revoke-tokens",
			adminHeaders(), nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid status is 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/v1/clients", adminHeaders(), oauthsdk.CreateClientRequest{
			Name:   "svc-status",
			Scopes: []string{"read:reports"},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		created := decodeBody[oauthsdk.CreateClientResponse](t, rec)

		rec = doJSON(t, router, http.MethodPost, "/v1/clients/"+created.ClientID+"/status",
			adminHeaders(), oauthsdk.UpdateClientStatusRequest{Status: "paused"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("disabled without configured token", func(t *testing.T) {
		openStore := memory.NewStore()
		disabled := NewRouter("test", openStore, slog.New(slog.DiscardHandler), "")
		disabled.TokenService = &service.TokenService{Store: openStore, AccessTTL: time.Hour, RefreshTTL: time.Hour}
		disabled.ClientService = &service.ClientService{Store: openStore}
		disabled.BootstrapService = &service.BootstrapService{Store: openStore}
		disabled.ApplyRoutes()

		rec := doJSON(t, disabled, http.MethodGet, "/v1/clients", adminHeaders(), nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	t.Run("livez", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/livez", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[oauthsdk.HealthResponse](t, rec)
		require.Equal(t, "ok", resp.Status)
		require.Equal(t, "test", resp.Version)
		require.Nil(t, resp.Checks)
	})

	t.Run("readyz reports store status", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/readyz", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[oauthsdk.HealthResponse](t, rec)
		require.Equal(t, "ok", resp.Status)
		require.NotNil(t, resp.Checks)
		require.Equal(t, "ok", resp.Checks.Database)
	})
}
