package server

import (
	"context"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"followgate/internal/graph"
	"followgate/internal/handlers/api"
	"followgate/internal/middleware"
	"followgate/internal/store"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, st *store.Store, directory *graph.Directory, coordinator *graph.Coordinator) error {
	authMiddleware, err := middleware.NewAuthMiddleware(ctx, s.Cfg)
	if err != nil {
		return err
	}

	graphHandler := api.NewGraphHandler(directory, coordinator)
	probeHandler := api.NewProbeHandler(st)

	// Probes and metrics stay unauthenticated for the orchestrator and
	// the scraper.
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	s.App.Get("/xrpc/app.followgate.graph.listFollowRequests",
		authMiddleware.RequireActor, graphHandler.ListFollowRequests)
	s.App.Post("/xrpc/app.followgate.graph.respondToFollowRequest",
		authMiddleware.RequireActor, graphHandler.RespondToFollowRequest)

	return nil
}
