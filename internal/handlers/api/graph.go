package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"followgate/internal/graph"
	"followgate/internal/metrics"
	"followgate/internal/middleware"
)

// GraphHandler serves the follow request listing and response endpoints.
type GraphHandler struct {
	directory   *graph.Directory
	coordinator *graph.Coordinator
}

// NewGraphHandler creates a new graph handler.
func NewGraphHandler(directory *graph.Directory, coordinator *graph.Coordinator) *GraphHandler {
	return &GraphHandler{directory: directory, coordinator: coordinator}
}

// ListFollowRequests returns a page of follow requests for the
// authenticated account.
func (h *GraphHandler) ListFollowRequests(c fiber.Ctx) error {
	actor := middleware.Actor(c)

	params := graph.ListParams{
		Direction: c.Query("direction", graph.DirectionIncoming),
		Status:    c.Query("status"),
		Cursor:    c.Query("cursor"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return xrpcError(c, fiber.StatusBadRequest, "InvalidRequest", "limit must be a positive integer")
		}
		params.Limit = limit
	}

	page, err := h.directory.List(c.Context(), actor, params)
	if err != nil {
		slog.Error("list follow requests failed", "actor", actor, "direction", params.Direction, "error", err)
		metrics.RecordListing(params.Direction, "error")
		return xrpcError(c, fiber.StatusInternalServerError, "InternalServerError", "failed to list follow requests")
	}

	metrics.RecordListing(params.Direction, "ok")
	return c.JSON(page)
}

type respondRequest struct {
	RequestURI string `json:"requestUri"`
	Response   string `json:"response"`
}

// RespondToFollowRequest approves or denies a pending follow request on
// behalf of the authenticated account.
func (h *GraphHandler) RespondToFollowRequest(c fiber.Ctx) error {
	actor := middleware.Actor(c)

	var body respondRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return xrpcError(c, fiber.StatusBadRequest, "InvalidRequest", "invalid request body")
	}

	result, err := h.coordinator.Respond(c.Context(), actor, body.RequestURI, body.Response)
	switch {
	case errors.Is(err, graph.ErrInvalidResponse):
		metrics.RecordResponse(body.Response, "invalid")
		return xrpcError(c, fiber.StatusBadRequest, "InvalidResponse", "response must be approve or deny")
	case errors.Is(err, graph.ErrRequestNotFound):
		metrics.RecordResponse(body.Response, "not_found")
		return xrpcError(c, fiber.StatusBadRequest, "RequestNotFound", "follow request not found")
	case errors.Is(err, graph.ErrNotAuthorized):
		metrics.RecordResponse(body.Response, "unauthorized")
		return xrpcError(c, fiber.StatusUnauthorized, "NotAuthorized", "not authorized to respond to this request")
	case err != nil:
		slog.Error("respond to follow request failed", "actor", actor, "uri", body.RequestURI, "error", err)
		metrics.RecordResponse(body.Response, "error")
		return xrpcError(c, fiber.StatusInternalServerError, "InternalServerError", "failed to respond to follow request")
	}

	metrics.RecordResponse(body.Response, "ok")
	return c.JSON(result)
}
