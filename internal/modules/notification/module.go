package notification

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/adityaraina/pulsefeed/internal/modules/notification/application"
	"github.com/adityaraina/pulsefeed/internal/modules/notification/infrastructure/cache"
	"github.com/adityaraina/pulsefeed/internal/modules/notification/infrastructure/persistence/postgres"
	"github.com/adityaraina/pulsefeed/internal/modules/notification/infrastructure/websocket"
	notification_http "github.com/adityaraina/pulsefeed/internal/modules/notification/interfaces/http"
)

type Module struct {
	service *application.NotificationService
	handler *notification_http.NotificationHandler
	hub     *websocket.Hub
}

func NewModule(db *sqlx.DB, redisClient *redis.Client, heartbeatInterval time.Duration, sendBufferSize int) *Module {
	repo := postgres.NewPgNotificationRepository(db)
	hub := websocket.NewHub(heartbeatInterval, sendBufferSize)
	unreadCache := cache.NewRedisUnreadCache(redisClient)

	service := application.NewNotificationService(repo, hub, unreadCache)
	handler := notification_http.NewNotificationHandler(service, hub)

	return &Module{
		service: service,
		handler: handler,
		hub:     hub,
	}
}

func (m *Module) HTTPHandler() *notification_http.NotificationHandler {
	return m.handler
}

func (m *Module) Service() *application.NotificationService {
	return m.service
}

func (m *Module) Hub() *websocket.Hub {
	return m.hub
}
