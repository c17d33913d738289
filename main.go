package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messaging-service/internal/access"
	"messaging-service/internal/config"
	"messaging-service/internal/db"
	"messaging-service/internal/handlers"
	"messaging-service/internal/middleware"
	"messaging-service/internal/notify"
	"messaging-service/internal/observability"
	"messaging-service/internal/presence"
	"messaging-service/internal/rabbitmq"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
	"messaging-service/internal/ws"
)

const serviceName = "messaging-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownTracing, err := observability.SetupTracing(context.Background(), serviceName, cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()

	userRepo := repositories.NewUserRepo(database)
	conversationRepo := repositories.NewConversationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	reactionRepo := repositories.NewReactionRepo(database)
	starRepo := repositories.NewStarRepo(database)
	presenceRepo := repositories.NewPresenceRepo(database)

	guard := access.NewGuard(conversationRepo)
	hub := ws.NewHub()
	fanout := notify.NewFanout(hub, publisher, conversationRepo)
	registry := presence.NewRegistry(presenceRepo, guard, fanout)
	audit := telemetry.NewAuditEmitter(publisher, cfg.AuditRouting, serviceName, cfg.Environment)

	authenticator := middleware.NewAuthenticator(cfg.JWTSecret, userRepo)

	conversationHandler := handlers.NewConversationHandler(guard, conversationRepo, messageRepo, reactionRepo, userRepo)
	messageHandler := handlers.NewMessageHandler(guard, messageRepo, reactionRepo, fanout, audit)
	starHandler := handlers.NewStarHandler(guard, starRepo, messageRepo)
	presenceHandler := handlers.NewPresenceHandler(registry)
	sessionHandler := ws.NewSessionHandler(hub, authenticator, registry, publisher)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := authenticator.Middleware()

	router.POST("/conversations", authMiddleware, conversationHandler.StartConversation)
	router.GET("/conversations", authMiddleware, conversationHandler.ListConversations)
	router.GET("/conversations/:conversation_id/messages", authMiddleware, conversationHandler.GetMessages)
	router.POST("/conversations/:conversation_id/messages", authMiddleware, messageHandler.PostMessage)
	router.DELETE("/conversations/:conversation_id/messages/:message_id", authMiddleware, messageHandler.DeleteMessage)
	router.POST("/conversations/:conversation_id/read", authMiddleware, messageHandler.MarkRead)
	router.PUT("/conversations/:conversation_id/messages/:message_id/pin", authMiddleware, messageHandler.SetPinned)
	router.GET("/conversations/:conversation_id/pinned", authMiddleware, messageHandler.ListPinned)
	router.GET("/conversations/:conversation_id/messages/:message_id/replies", authMiddleware, messageHandler.ListReplies)
	router.GET("/conversations/:conversation_id/search", authMiddleware, messageHandler.Search)
	router.PUT("/conversations/:conversation_id/messages/:message_id/reaction", authMiddleware, messageHandler.SetReaction)
	router.DELETE("/conversations/:conversation_id/messages/:message_id/reaction", authMiddleware, messageHandler.RemoveReaction)

	router.POST("/messages/:message_id/star", authMiddleware, starHandler.Star)
	router.DELETE("/messages/:message_id/star", authMiddleware, starHandler.Unstar)
	router.GET("/starred", authMiddleware, starHandler.ListStarred)

	router.PUT("/presence/status", authMiddleware, presenceHandler.SetStatus)
	router.GET("/presence/:user_id", authMiddleware, presenceHandler.GetPresence)

	router.GET("/ws", sessionHandler.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
