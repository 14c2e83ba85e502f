package manifests

import (
	"log/slog"
	"net/http"

	"github.com/tfiliano/dt-route-planner/pkg/handlers"
	"github.com/tfiliano/dt-route-planner/pkg/pagination"
	"github.com/tfiliano/dt-route-planner/pkg/routes"
)

// Handler provides HTTP endpoints for manifest lookup, search, and statistics.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a manifest handler.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "manifests"),
		pagination: pagination,
	}
}

// Routes returns the manifest endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Description: "Manifest lookup and search",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/manifests", Handler: h.SearchManifests},
			{Method: "GET", Pattern: "/manifests/{external}", Handler: h.Resolve},
			{Method: "GET", Pattern: "/deliveries", Handler: h.SearchDeliveries},
			{Method: "GET", Pattern: "/stats", Handler: h.Statistics},
		},
	}
}

// Resolve looks up a manifest by surrogate id or human reference,
// dispatching on the structural shape of the identifier.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	manifest, err := h.sys.Resolve(r.Context(), r.PathValue("external"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, manifest)
}

func (h *Handler) SearchManifests(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := ManifestFiltersFromQuery(r.URL.Query())

	result, err := h.sys.SearchManifests(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) SearchDeliveries(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := DeliveryFiltersFromQuery(r.URL.Query())

	result, err := h.sys.SearchDeliveries(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.sys.Statistics(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, stats)
}
