package handler

import (
	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health endpoint
const Version = "0.1.0"

// Readiness reports whether predictions can be served
type Readiness interface {
	Ready() bool
}

type HealthHandler struct {
	readiness Readiness
}

func NewHealthHandler(readiness Readiness) *HealthHandler {
	return &HealthHandler{readiness: readiness}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// Ready answers 503 until a model has been trained from at least one photo.
// The process is alive either way, so Health stays green.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.readiness == nil || !h.readiness.Ready() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status: "untrained",
		})
	}
	return c.JSON(HealthResponse{
		Status: "ready",
	})
}
