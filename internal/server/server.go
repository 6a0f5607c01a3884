// Package server exposes the REST API and the per-bill SSE change feed.
package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/splitparty/internal/middleware"
	"github.com/mmynk/splitparty/internal/service"
	"github.com/mmynk/splitparty/internal/stream"
)

// Server handles the HTTP API for bills, participants, items, and claims.
type Server struct {
	svc *service.BillService
	sub stream.Subscriber
}

// New creates a Server over the given service and stream subscriber.
func New(svc *service.BillService, sub stream.Subscriber) *Server {
	return &Server{svc: svc, sub: sub}
}

// Router builds the chi router with all API routes and middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/bills", s.createBill)
		r.Route("/bills/{billID}", func(r chi.Router) {
			r.Get("/", s.getBill)
			r.Patch("/", s.updateBill)
			r.Post("/participants", s.joinBill)
			r.Post("/items", s.addItem)
			r.Get("/events", s.streamEvents)
		})
		r.Patch("/items/{itemID}", s.editItem)
		r.Put("/claims", s.setClaim)
		r.Delete("/claims", s.removeClaim)
	})

	return r
}
