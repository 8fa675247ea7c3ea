package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MedSync-Fiap/notificacao-api/internal/rabbitmq"
)

// HealthHandler reports service health.
type HealthHandler struct {
	RMQ *rabbitmq.Connection
}

func NewHealthHandler(rmq *rabbitmq.Connection) *HealthHandler {
	return &HealthHandler{RMQ: rmq}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// HealthCheck handles GET /health.
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	services := make(map[string]string)
	status := "healthy"

	if h.RMQ == nil || !h.RMQ.IsHealthy() {
		services["rabbitmq"] = "unhealthy: connection closed"
		status = "unhealthy"
	} else {
		services["rabbitmq"] = "healthy"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  services,
	}

	if status == "unhealthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(response)
	}

	return c.JSON(response)
}
