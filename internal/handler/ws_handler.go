package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fsegs/survex-backend/internal/config"
	"github.com/fsegs/survex-backend/internal/middleware"
	"github.com/fsegs/survex-backend/internal/service"
	ws "github.com/fsegs/survex-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams committed planning mutations to connected clients.
type WSHandler struct {
	rdb      *redis.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// PlanningStream godoc
// WS /ws/v1/planning/stream
// Upgrades to WebSocket and relays every committed allocation, cancellation
// and repair as it is published on the planning channel.
func (h *WSHandler) PlanningStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Int("user_id", claims.UserID).Logger()
	wsLog.Info().Msg("Planning stream connected")

	sub := h.rdb.Subscribe(c.Request.Context(), config.CacheKey.PlanningEventsChannel())
	defer sub.Close()

	// Relay published planning events until the subscription closes.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range sub.Channel() {
			var ev service.PlanningEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				wsLog.Warn().Err(err).Msg("Malformed planning event")
				continue
			}
			if err := ws.WriteTyped(conn, ws.PlanningEventResponse{
				Event:     ws.EventPlanning,
				Type:      ev.Type,
				TeacherID: ev.TeacherID,
				SessionID: ev.SessionID,
				At:        ev.At.Format(time.RFC3339),
			}); err != nil {
				return
			}
		}
	}()

	// Read loop: answer pings, detect close. Closing the subscription stops
	// the relay goroutine.
	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		switch msg.Action {
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}

	sub.Close()
	<-done
}
