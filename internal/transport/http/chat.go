package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type chatRequest struct {
	CustomerID string `json:"customer_id,omitempty"`
	Text       string `json:"text"`
}

// Chat submits one user turn and blocks until the run completes.
// POST /v1/sessions/:session_id/chat
func (h *Handler) Chat(c echo.Context) error {
	sessionID := c.Param("session_id")

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := c.Request().Context()

	if req.CustomerID != "" {
		if _, err := h.service.SelectCustomer(ctx, sessionID, req.CustomerID); err != nil {
			return errorResponse(c, err)
		}
	}

	result, err := h.service.SubmitTurn(ctx, sessionID, req.Text)
	if err != nil {
		return errorResponse(c, err)
	}

	turns, err := h.service.Turns(ctx, sessionID, 0)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"reply":      result.Reply,
		"run_id":     result.RunID,
		"run_status": result.RunStatus,
		"turns":      turns,
	})
}

// GetTurns returns the conversation log in insertion order.
// GET /v1/sessions/:session_id/turns
func (h *Handler) GetTurns(c echo.Context) error {
	sessionID := c.Param("session_id")
	limit := 0
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}

	turns, err := h.service.Turns(c.Request().Context(), sessionID, limit)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"turns": turns,
	})
}

type selectCustomerRequest struct {
	CustomerID string `json:"customer_id"`
}

// SelectCustomer switches the session to another customer, dropping the
// thread reference and clearing the conversation log.
// POST /v1/sessions/:session_id/customer
func (h *Handler) SelectCustomer(c echo.Context) error {
	sessionID := c.Param("session_id")

	var req selectCustomerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	session, err := h.service.SelectCustomer(c.Request().Context(), sessionID, req.CustomerID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, session)
}
