package api

import (
	"github.com/gofiber/fiber/v3"

	"followgate/internal/store"
)

// ProbeHandler serves liveness and readiness probes.
type ProbeHandler struct {
	store *store.Store
}

// NewProbeHandler creates a new probe handler.
func NewProbeHandler(st *store.Store) *ProbeHandler {
	return &ProbeHandler{store: st}
}

// Liveness reports that the process is up.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Readiness reports whether the record store is reachable.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	if err := h.store.Ping(c.Context()); err != nil {
		return xrpcError(c, fiber.StatusServiceUnavailable, "NotReady", "record store unreachable")
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
