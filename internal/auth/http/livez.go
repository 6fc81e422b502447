package http

import (
	"net/http"
	"time"

	"github.com/drawpoint/authd/pkg/httpx"
	"github.com/drawpoint/authd/pkg/oauthsdk"
)

// LivezHandler reports process liveness.
//
//	@Summary		Liveness Check
//	@Description	Returns 200 whenever the process is up. It never touches the store.
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	oauthsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, oauthsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
		})
	})
}
