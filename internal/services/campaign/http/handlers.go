// Package http exposes the campaign read API
package http

import (
	"net/http"
	"strconv"

	perr "starwatch/internal/platform/errors"
	phttp "starwatch/internal/platform/net/http"
	"starwatch/internal/services/campaign/domain"

	"github.com/go-chi/chi/v5"
)

// Mount registers the campaign routes on r
func Mount(r chi.Router, reader domain.ReaderPort) {
	r.Get("/api/campaigns/{id}/views", func(w http.ResponseWriter, req *http.Request) {
		raw := chi.URLParam(req, "id")
		id, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			phttp.RespondError(w, req, perr.InvalidArgf("campaign id %q is not an integer", raw))
			return
		}

		views, err := reader.ViewsByHour(req.Context(), int32(id))
		if err != nil {
			phttp.RespondError(w, req, err)
			return
		}
		phttp.RespondOK(w, req, views)
	})
}
