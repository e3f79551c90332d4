package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/unig/internal/controllers"
)

// SnapshotSource publishes the client state
type SnapshotSource interface {
	Snapshot() *controllers.Snapshot
}

// StatusHandler handles status requests
type StatusHandler struct {
	source SnapshotSource
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(source SnapshotSource, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		source: source,
		logger: logger,
	}
}

// StatusResponse summarises the snapshot for quick checks
type StatusResponse struct {
	Filter        string `json:"filter"`
	FeedState     string `json:"feed_state"`
	Items         int    `json:"items"`
	Compact       bool   `json:"compact"`
	OverlayOpen   bool   `json:"overlay_open"`
	Authenticated bool   `json:"authenticated"`
	Error         string `json:"error,omitempty"`
}

// Summary serves the status endpoint
func (h *StatusHandler) Summary(c *fiber.Ctx) error {
	snap := h.source.Snapshot()
	if snap == nil {
		h.logger.Warn("Status requested before the first snapshot")
		return fiber.NewError(fiber.StatusServiceUnavailable, "not ready")
	}

	return c.JSON(StatusResponse{
		Filter:        snap.Filter,
		FeedState:     snap.FeedState,
		Items:         len(snap.Items),
		Compact:       snap.Compact,
		OverlayOpen:   snap.Overlay != nil,
		Authenticated: snap.User != nil,
		Error:         snap.Error,
	})
}

// Snapshot serves the full snapshot
func (h *StatusHandler) Snapshot(c *fiber.Ctx) error {
	snap := h.source.Snapshot()
	if snap == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "not ready")
	}
	return c.JSON(snap)
}
