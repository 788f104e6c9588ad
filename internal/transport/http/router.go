package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"colonx/pkg/platform/middleware/auth"
	"colonx/pkg/platform/middleware/requestid"
)

// RouterConfig carries the optional wiring the router needs beyond handlers.
type RouterConfig struct {
	Validator         auth.TokenValidator
	RevocationChecker auth.TokenRevocationChecker
	MetricsGatherer   prometheus.Gatherer
	DevTokenEndpoint  bool
}

// NewRouter wires all endpoints. Mutating token operations sit behind the
// auth middleware; reads, health and metrics stay public, and initialize is
// public one-time by design.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)

	r.Get("/healthz", h.HandleHealth)
	if cfg.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/token/initialize", h.HandleInitialize)

	r.Get("/token/info", h.HandleInfo)
	r.Get("/token/supply", h.HandleSupply)
	r.Get("/token/paused", h.HandlePaused)
	r.Get("/token/balance/{address}", h.HandleBalance)
	r.Get("/token/allowance/{owner}/{spender}", h.HandleAllowance)
	r.Get("/token/roles/{role}/{address}", h.HandleHasRole)
	r.Get("/token/admin", h.HandleAdmin)

	if cfg.DevTokenEndpoint {
		r.Post("/auth/dev-token", h.HandleDevToken)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(cfg.Validator, cfg.RevocationChecker, h.logger))
		r.Post("/token/mint", h.HandleMint)
		r.Post("/token/batch-mint", h.HandleBatchMint)
		r.Post("/token/transfer", h.HandleTransfer)
		r.Post("/token/transfer-from", h.HandleTransferFrom)
		r.Post("/token/burn", h.HandleBurn)
		r.Post("/token/burn-from", h.HandleBurnFrom)
		r.Post("/token/approve", h.HandleApprove)
		r.Post("/token/pause", h.HandlePause)
		r.Post("/token/unpause", h.HandleUnpause)
	})

	return r
}
