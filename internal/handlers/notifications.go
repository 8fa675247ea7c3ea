package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// EventHandler processes a raw notification event body. The dispatcher
// satisfies it, so manual submissions take the same path as queue
// messages.
type EventHandler interface {
	HandleEvent(body []byte) error
}

// NotificationsHandler exposes manual notification submission, used for
// smoke tests and operational resends.
type NotificationsHandler struct {
	Handler EventHandler
	Logger  *zap.Logger
}

func NewNotificationsHandler(handler EventHandler, logger *zap.Logger) *NotificationsHandler {
	return &NotificationsHandler{Handler: handler, Logger: logger}
}

// ApiResponse is the standard response envelope.
type ApiResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

func successResponse(message string) ApiResponse {
	return ApiResponse{
		Success:   true,
		Message:   message,
		Timestamp: time.Now().Format("2006-01-02T15:04:05"),
	}
}

func errorResponse(message string) ApiResponse {
	return ApiResponse{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().Format("2006-01-02T15:04:05"),
	}
}

// Create handles POST /api/v1/notificacoes. The body is a raw inbound
// event document, discriminated by its "evento" field.
func (h *NotificationsHandler) Create(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse("request body is required"))
	}

	if err := h.Handler.HandleEvent(body); err != nil {
		h.Logger.Warn("Rejected manual notification submission",
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse(err.Error()))
	}

	return c.Status(fiber.StatusAccepted).JSON(successResponse("Notificação processada"))
}
