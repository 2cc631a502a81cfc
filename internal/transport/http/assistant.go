package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListCustomers returns the static customer table for the page's selector.
// GET /v1/customers
func (h *Handler) ListCustomers(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"customers": h.service.Customers(),
	})
}

// GetInstructions returns the customer's full assistant record, so the edit
// form can show the current prompt alongside the fields it must not lose.
// GET /v1/customers/:customer_id/instructions
func (h *Handler) GetInstructions(c echo.Context) error {
	customerID := c.Param("customer_id")

	customer, ok := h.service.Customer(customerID)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown customer"})
	}

	cfg, err := h.service.GetAssistant(c.Request().Context(), customer.AssistantID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, cfg)
}

type updateInstructionsRequest struct {
	Instructions string `json:"instructions"`
}

// UpdateInstructions replaces the assistant's system prompt. The service
// reads the full record first and resubmits every field; the vendor update
// is a full-record replace.
// PUT /v1/customers/:customer_id/instructions
func (h *Handler) UpdateInstructions(c echo.Context) error {
	customerID := c.Param("customer_id")

	customer, ok := h.service.Customer(customerID)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown customer"})
	}

	var req updateInstructionsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	cfg, err := h.service.UpdateInstructions(c.Request().Context(), customer.AssistantID, req.Instructions)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, cfg)
}
