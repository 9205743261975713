package http

import (
	"net/http"
	"strconv"

	notifService "anoa.com/moodtracker/internal/modules/notification/service"
	"anoa.com/moodtracker/pkg/logger"
	"anoa.com/moodtracker/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

type NotificationHandler struct {
	service     notifService.NotificationService
	redisClient *redis.Client
	upgrader    websocket.Upgrader
	log         *logger.Logger
}

func NewNotificationHandler(service notifService.NotificationService, redisClient *redis.Client, allowedOrigins []string, baseLog *logger.Logger) *NotificationHandler {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	return &NotificationHandler{
		service:     service,
		redisClient: redisClient,
		log:         baseLog.With("handler", "NotificationHandler"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(origins) == 0 {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}

func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	notifications, err := h.service.GetNotifications(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": notifications})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	if err := h.service.MarkAsRead(c.Request.Context(), userID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// HandleWebSocket streams the user's redis notification channel to a websocket.
func (h *NotificationHandler) HandleWebSocket(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if h.redisClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live notifications are not available"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("failed to upgrade websocket", "user_id", userID, "error", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	pubsub := h.redisClient.Subscribe(ctx, notifService.Channel(userID))
	defer pubsub.Close()

	// wait for the subscription to be confirmed
	if _, err := pubsub.Receive(ctx); err != nil {
		h.log.Error("failed to subscribe to notification channel", "user_id", userID, "error", err)
		return
	}

	ch := pubsub.Channel()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			// payload is already the JSON notification
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				h.log.Debug("websocket write failed", "user_id", userID, "error", err)
				return
			}
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		}
	}
}
