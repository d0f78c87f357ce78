package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apimiddleware "github.com/metalmindtech/mfn-api/internal/api/middleware"
)

// newRouter assembles the HTTP routing table. Job trigger routes (POST) sit
// behind the shared-secret middleware; readiness routes (GET) and the
// operational endpoints do not.
func newRouter(app *application) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	jobSecret := apimiddleware.NewJobSecretMiddleware(app.config.Jobs.Secret)

	r.Route("/api/jobs", func(r chi.Router) {
		r.Get("/matches", app.jobsHandler.MatchesStatus)
		r.Get("/circles", app.jobsHandler.CirclesStatus)
		r.Get("/trust", app.jobsHandler.TrustStatus)

		r.Group(func(r chi.Router) {
			r.Use(jobSecret.Authenticate)
			r.Post("/matches", app.jobsHandler.TriggerMatches)
			r.Post("/circles", app.jobsHandler.TriggerCircles)
			r.Post("/trust", app.jobsHandler.TriggerTrust)
			r.Post("/trust/boost", app.jobsHandler.TriggerTrustBoost)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
