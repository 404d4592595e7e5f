package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/rafabene/onemore-backend/internal/domain/ports"
	"github.com/rafabene/onemore-backend/internal/handlers/dto"
	"github.com/rafabene/onemore-backend/internal/handlers/middleware"
	"github.com/rafabene/onemore-backend/internal/infrastructure/realtime"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
	streamReadLimit  = 512
)

// NotificationStreamHandler entrega notificações ao vivo por websocket
type NotificationStreamHandler struct {
	hub      *realtime.Hub
	logger   ports.Logger
	upgrader websocket.Upgrader
}

// NewNotificationStreamHandler cria o handler; allowedOrigins segue CORS_ALLOWED_ORIGINS
func NewNotificationStreamHandler(hub *realtime.Hub, logger ports.Logger, allowedOrigins []string) *NotificationStreamHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &NotificationStreamHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if _, ok := origins["*"]; ok {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}

// Stream envia cada notificação criada para o usuário após a conexão
//
//	@Summary	Live notification stream (websocket)
//	@Tags		user
//	@Security	BearerAuth
//	@Param		access_token	query	string	false	"Session token when the Authorization header cannot be set"
//	@Success	101
//	@Failure	401	{object}	dto.ErrorResponse
//	@Router		/user/notifications/stream [get]
func (h *NotificationStreamHandler) Stream(c *gin.Context) {
	principal, err := middleware.MustPrincipal(c)
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// o upgrader já respondeu ao cliente
		h.logger.Warn("websocket upgrade failed", "user_id", principal.UserID, "error", err)
		return
	}
	defer conn.Close()

	notifications, cancel := h.hub.Subscribe(principal.UserID)
	defer cancel()

	h.logger.Debug("notification stream opened", "user_id", principal.UserID)
	defer h.logger.Debug("notification stream closed", "user_id", principal.UserID)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(streamReadLimit)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case notification, ok := <-notifications:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteJSON(dto.ToNotificationResponse(notification)); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
