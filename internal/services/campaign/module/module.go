// Package module wires the campaign read service
package module

import (
	"starwatch/internal/modkit"
	chttp "starwatch/internal/services/campaign/http"
	"starwatch/internal/services/campaign/repo"
	"starwatch/internal/services/campaign/service"

	"github.com/go-chi/chi/v5"
)

// Module defines the campaign module
type Module struct {
	svc *service.Service
}

// New constructs the campaign module over the store's clickhouse seam
func New(deps modkit.Deps) *Module {
	return &Module{svc: service.New(repo.NewCH(deps.CH))}
}

// Name returns the module name
func (m *Module) Name() string { return "campaign" }

// MountRoutes registers the campaign HTTP surface
func (m *Module) MountRoutes(r chi.Router) {
	chttp.Mount(r, m.svc)
}
