package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"pictochat-service/internal/auth"
	"pictochat-service/internal/config"
	"pictochat-service/internal/db"
	"pictochat-service/internal/handlers"
	applog "pictochat-service/internal/log"
	"pictochat-service/internal/middleware"
	"pictochat-service/internal/observability"
	"pictochat-service/internal/rabbitmq"
	"pictochat-service/internal/repositories"
	"pictochat-service/internal/telemetry"
	"pictochat-service/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	applog.Init(cfg.Env)

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer database.Close()

	userRepo := repositories.NewUserRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	privateRepo := repositories.NewPrivateMessageRepo(database)
	blockRepo := repositories.NewBlockRepo(database)

	guard := auth.NewGuard(userRepo)

	hub := ws.NewHub()
	presence := ws.NewPresence()
	limiter := ws.NewRateLimiter(ws.DefaultCooldown, 10*time.Minute)
	defer limiter.Stop()

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.Exchange)
	defer auditPublisher.Close()
	emitter := telemetry.NewAuditEmitter(auditPublisher, "audit.chat", "pictochat-service", cfg.Env)

	if cfg.AMQPURL != "" {
		eventPublisher, err := rabbitmq.NewEventPublisher(cfg.AMQPURL, cfg.Exchange)
		if err != nil {
			log.Warn().Err(err).Msg("ws event publisher unavailable")
		} else {
			rabbitmq.SetEventPublisher(eventPublisher)
			defer eventPublisher.Close()
		}
	}

	authHandler := handlers.NewAuthHandler(userRepo, emitter)
	profileHandler := handlers.NewProfileHandler(userRepo)
	messagesHandler := handlers.NewMessagesHandler(userRepo, messageRepo, privateRepo, blockRepo)
	adminHandler := handlers.NewAdminHandler(userRepo, messageRepo, emitter)

	chatWS := ws.NewChatWebSocketHandler(hub, presence, limiter, guard, userRepo, messageRepo, privateRepo, blockRepo)

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(guard)

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/logout", authMiddleware, authHandler.Logout)
	router.GET("/session/check", authMiddleware, authHandler.CheckSession)

	router.GET("/profile", authMiddleware, profileHandler.Get)
	router.PATCH("/profile", authMiddleware, profileHandler.Update)

	router.GET("/messages/history", authMiddleware, messagesHandler.History)
	router.GET("/messages/inbox", authMiddleware, messagesHandler.Inbox)
	router.GET("/messages/conversation/:user_id", authMiddleware, messagesHandler.Conversation)
	router.GET("/messages/unread_count", authMiddleware, messagesHandler.UnreadCount)
	router.POST("/messages/block/:user_id", authMiddleware, messagesHandler.Block)
	router.DELETE("/messages/block/:user_id", authMiddleware, messagesHandler.Unblock)

	router.GET("/admin/stats", authMiddleware, adminHandler.Stats)
	router.DELETE("/admin/messages/:id", authMiddleware, adminHandler.DeleteMessage)
	router.POST("/admin/users/:id/toggle-admin", authMiddleware, adminHandler.ToggleAdmin)

	router.GET("/ws", chatWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, emitter, cfg.DebugRoutes)

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
