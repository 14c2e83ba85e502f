package main

import (
	"net/http"

	"github.com/tfiliano/dt-route-planner/pkg/middleware"
	"github.com/tfiliano/dt-route-planner/pkg/routes"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := app.db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// The batch group registers first so its literal segment takes
	// precedence over the {external} wildcard on /manifests.
	routes.Register(mux, "/api", app.batch.Routes())
	routes.Register(mux, "/api", app.manifests.Routes())

	var handler http.Handler = mux
	handler = middleware.TrimSlash()(handler)
	handler = middleware.Logger(app.logger)(handler)

	return app.enableCORS(handler)
}
