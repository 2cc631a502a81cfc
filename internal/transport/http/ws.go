package handler

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same-origin page; the API is open anyway via CORS middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Events upgrades to a WebSocket that pushes run state transitions for the
// session, so the page can show queued/in_progress without HTTP polling.
// GET /v1/sessions/:session_id/events
func (h *Handler) Events(c echo.Context) error {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "session_id required"})
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("WARN: websocket upgrade failed: %v", err)
		return err
	}

	h.hub.Register(sessionID, ws)
	return nil
}
