package websocket

import (
	"net/http"
	"strings"

	"github.com/brightnest/daycare/internal/middleware"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var knownTopics = map[string]bool{
	"newsletter":   true,
	"announcement": true,
	"event":        true,
}

// Handler upgrades feed requests to WebSocket connections
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler. An empty or "*" origin list allows every origin.
func NewHandler(hub *Hub, allowedOrigins []string, logger zerolog.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return len(set) == 0 || origin == "" || set[origin]
	}
}

// HandleConnection godoc
// @Summary Live content feed
// @Description Upgrades to a WebSocket that streams newsletter.published, announcement.created and event.created events
// @Tags feed
// @Param topics query string false "Comma separated topics: newsletter, announcement, event"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 400 {object} dto.ErrorResponse "Unknown topic"
// @Router /feed/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	topics := make(map[string]bool)
	if raw := c.Query("topics"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" {
				continue
			}
			if !knownTopics[t] {
				middleware.HandleAPIError(c, apperrors.NewValidationError("topics", "Unknown topic: "+t))
				return
			}
			topics[t] = true
		}
	}

	var userID int64
	if user := middleware.CurrentUser(c); user != nil {
		userID = user.ID
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("userID", userID).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
		topics: topics,
		logger: h.logger,
	}
	if !h.hub.join(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
