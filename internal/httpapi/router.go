package httpapi

import (
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the operator API.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recover)
	r.Use(AccessLog)
	r.Use(CORS(d.AllowedOrigins))

	hh := HealthHandler{Store: d.Store, Search: d.Search}
	r.Get("/health", hh.Health)
	r.Handle("/metrics", promhttp.Handler())

	status := &atomic.Value{}
	status.Store(RunStatus{})
	rh := RunHandler{Runner: d.Runner, BaseCtx: d.BaseCtx, Status: status, busy: &atomic.Bool{}}
	r.Post("/run", rh.Run)
	r.Get("/run/status", rh.Get)

	eh := EventsHandler{Hub: d.Hub}
	r.Get("/events", eh.ServeSSE)

	if d.CfgVal != nil {
		ch := ConfigHandler{CfgVal: d.CfgVal, UserCfgPath: d.UserCfgPath}
		r.Get("/config", ch.Get)
		r.Get("/config/path", ch.Path)
		r.Get("/config/validate", ch.Validate)
	}

	r.Put("/secrets/search", SecretsHandler{}.SetSearchKey)
	r.Delete("/secrets/search", SecretsHandler{}.DeleteSearchKey)

	if d.DB != nil {
		r.Post("/db/checkpoint", DBHandler{DB: d.DB}.Checkpoint)
	}
	if d.Shutdown != nil && d.ShutdownToken != "" {
		r.Post("/shutdown", ShutdownHandler{Token: d.ShutdownToken, Stop: d.Shutdown}.Shutdown)
	}
	return r
}
