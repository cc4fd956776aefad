package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/adityaraina/pulsefeed/internal/gateway"
	"github.com/adityaraina/pulsefeed/internal/gateway/middleware"
	"github.com/adityaraina/pulsefeed/internal/modules/auth"
	"github.com/adityaraina/pulsefeed/internal/modules/notification"
	"github.com/adityaraina/pulsefeed/internal/shared/infrastructure/config"
	"github.com/adityaraina/pulsefeed/internal/shared/infrastructure/database"
	"github.com/adityaraina/pulsefeed/pkg/migration"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := migration.AutoMigrate(cfg.Database.URL(), migrationsPath, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()

	redisClient, err := database.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	notificationModule := notification.NewModule(db, redisClient, cfg.Stream.HeartbeatInterval, cfg.Stream.SendBufferSize)
	authModule := auth.NewModule(db, notificationModule.Service(), cfg.JWT.Secret, cfg.JWT.Expiry)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	mux := gateway.SetupRoutes(gateway.RouterConfig{
		AuthHandler:         authModule.HTTPHandler(),
		AuthMiddleware:      authMiddleware,
		NotificationHandler: notificationModule.HTTPHandler(),
	})

	var handler http.Handler = mux
	handler = middleware.PrometheusMiddleware(handler)
	handler = middleware.CORSMiddleware(handler, cfg.Server.AllowedOrigins)

	server := gateway.NewServer(cfg.Server.Port, handler)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
