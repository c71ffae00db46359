// Package health exposes database liveness endpoints
package health

import (
	"context"
	"net/http"
	"time"

	perr "starwatch/internal/platform/errors"
	"starwatch/internal/platform/logger"
	phttp "starwatch/internal/platform/net/http"
	"starwatch/internal/platform/store"

	"github.com/go-chi/chi/v5"
)

// queryTimeout bounds the version probe
const queryTimeout = 5 * time.Second

// Mount registers the health routes on r backed by the sql seam
func Mount(r chi.Router, q store.RowQuerier) {
	log := logger.Named("health")

	r.Get("/api/db_version", func(w http.ResponseWriter, req *http.Request) {
		if q == nil {
			phttp.RespondError(w, req, perr.NotInitializedf("database not configured"))
			return
		}

		ctx, cancel := context.WithTimeout(req.Context(), queryTimeout)
		defer cancel()

		var version string
		if err := q.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
			log.Error().Err(err).Msg("db version probe failed")
			phttp.RespondError(w, req, perr.DBf("database version query failed"))
			return
		}
		phttp.RespondOK(w, req, map[string]string{"db_version": version})
	})
}
