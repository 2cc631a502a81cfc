// Package handler provides the HTTP surface for hrdesk.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jpdataXOR/hrdesk/internal/domain"
	"github.com/jpdataXOR/hrdesk/internal/hub"
	"github.com/jpdataXOR/hrdesk/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
	hub     *hub.Hub
}

// NewHandler creates a new handler.
func NewHandler(svc *service.Service, h *hub.Hub) *Handler {
	return &Handler{
		service: svc,
		hub:     h,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Single-page UI
	e.GET("/", h.Index)

	// Conversation API
	e.POST("/v1/sessions/:session_id/chat", h.Chat)
	e.GET("/v1/sessions/:session_id/turns", h.GetTurns)
	e.POST("/v1/sessions/:session_id/customer", h.SelectCustomer)
	e.GET("/v1/sessions/:session_id/events", h.Events)

	// Ingestion / index API
	e.POST("/v1/customers/:customer_id/files", h.UploadFiles)
	e.GET("/v1/customers/:customer_id/files", h.ListIndexFiles)
	e.DELETE("/v1/files/:file_id", h.DeleteFile)
	e.POST("/v1/customers/:customer_id/bind", h.BindIndex)

	// Prompt editor API
	e.GET("/v1/customers/:customer_id/instructions", h.GetInstructions)
	e.PUT("/v1/customers/:customer_id/instructions", h.UpdateInstructions)

	e.GET("/v1/customers", h.ListCustomers)
	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// errorResponse maps a service error to an HTTP status. No failure is fatal;
// every error becomes one user-visible message at operation granularity.
func errorResponse(c echo.Context, err error) error {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		status := http.StatusBadRequest
		if validationErr.NotFound {
			status = http.StatusNotFound
		}
		return c.JSON(status, map[string]string{"error": validationErr.Error()})
	}

	if errors.Is(err, domain.ErrRunTimeout) {
		return c.JSON(http.StatusGatewayTimeout, map[string]string{"error": err.Error()})
	}

	var runErr *domain.RunFailedError
	var gatewayErr *domain.GatewayError
	var bindErr *domain.BindingError
	if errors.As(err, &runErr) || errors.As(err, &gatewayErr) ||
		errors.As(err, &bindErr) || errors.Is(err, domain.ErrEmptyReply) {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
