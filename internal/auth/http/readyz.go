package http

import (
	"net/http"
	"time"

	"github.com/drawpoint/authd/internal/auth/store"
	"github.com/drawpoint/authd/pkg/httpx"
	"github.com/drawpoint/authd/pkg/oauthsdk"
	"github.com/drawpoint/authd/pkg/slogx"
)

// ReadyzHandler reports readiness to serve traffic.
//
//	@Summary		Readiness Check
//	@Description	Pings the store and returns 503 when it is unreachable.
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	oauthsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	oauthsdk.HealthResponse	"status, checks"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checks := &oauthsdk.HealthChecks{Database: "ok"}
		status := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			slogx.FromContext(r.Context()).Error("readiness ping failed", "error", err)
			checks.Database = "unavailable"
			status = "unavailable"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, oauthsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	})
}
