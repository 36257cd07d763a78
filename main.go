package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	"goodhub-chat/internal/auth"
	"goodhub-chat/internal/cache"
	"goodhub-chat/internal/chat"
	"goodhub-chat/internal/config"
	"goodhub-chat/internal/db"
	grpcserver "goodhub-chat/internal/grpc"
	"goodhub-chat/internal/handlers"
	"goodhub-chat/internal/logger"
	"goodhub-chat/internal/middleware"
	"goodhub-chat/internal/observability"
	"goodhub-chat/internal/rabbitmq"
	"goodhub-chat/internal/realtime"
	"goodhub-chat/internal/realtime/bus"
	"goodhub-chat/internal/repositories"
	"goodhub-chat/internal/telemetry"
	"goodhub-chat/internal/ws"
)

const serviceName = "goodhub-chat"

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	database, err := db.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer database.Close()

	roomRepo := repositories.NewRoomRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	friendRepo := repositories.NewFriendRepo(database)
	var profileRepo repositories.ProfileRepository = repositories.NewProfileRepo(database)

	checkers := map[string]grpcserver.Checker{"postgres": database.PingContext}

	var (
		insertBus    bus.Bus = bus.NewLocalBus()
		profileCache *cache.Cache
	)
	if rdb := connectRedis(ctx, cfg, log); rdb != nil {
		defer rdb.Close()
		profileCache = cache.New(rdb, "goodhub:", cfg.ProfileTTL)
		profileRepo = cache.NewProfileCache(profileRepo, profileCache, log)
		if insertBus, err = bus.NewRedisBus(rdb, cfg.RedisChannel, log); err != nil {
			return err
		}
		checkers["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	defer insertBus.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
	defer publisher.Close()
	log.Info("event publisher ready", "mode", rabbitmq.PublisherMode(publisher), "noop_reason", rabbitmq.PublisherNoopReason(publisher))
	observability.SetPublisher(publisher)
	audit := telemetry.NewAuditEmitter(publisher, cfg.AuditKey, serviceName, cfg.Env, log)

	live := realtime.NewHub(log)
	if err := insertBus.StartForwarder(ctx, live.Dispatch); err != nil {
		return err
	}

	chatService := chat.NewService(roomRepo, messageRepo, friendRepo, profileRepo, insertBus, log)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, time.Hour)
	wsHub := ws.NewHub()

	chatHandler := handlers.NewChatHandler(chatService, audit)
	friendHandler := handlers.NewFriendHandler(friendRepo, profileRepo, audit)
	profileHandler := handlers.NewProfileHandler(profileRepo)
	chatWS := ws.NewChatWebSocketHandler(wsHub, live, chatService, tokens, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), otelgin.Middleware(serviceName), observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		if err := database.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	handlers.RegisterDebugRoutes(router, audit, profileCache, cfg.DebugRoutes)

	api := router.Group("/", middleware.AuthMiddleware(tokens))
	api.GET("/chats", chatHandler.ListChats)
	api.POST("/chats/start", chatHandler.StartChat)
	api.GET("/chats/:room_id/messages", chatHandler.GetChatMessages)
	api.POST("/chats/:room_id/messages", chatHandler.PostChatMessage)

	api.GET("/friends", friendHandler.ListFriends)
	api.GET("/friends/requests", friendHandler.ListRequests)
	api.POST("/friends/requests", friendHandler.SendRequest)
	api.POST("/friends/requests/:user_id/accept", friendHandler.AcceptRequest)
	api.DELETE("/friends/requests/:user_id", friendHandler.RejectRequest)

	api.GET("/profiles/me", profileHandler.GetMe)
	api.PUT("/profiles/me", profileHandler.UpdateMe)
	api.GET("/users/search", profileHandler.SearchUsers)

	router.GET("/ws/chat", chatWS.Handle)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	grpcSrv := grpcserver.NewServer(log, checkers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return grpcSrv.Serve(":" + cfg.GRPCPort)
	})
	g.Go(func() error {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		grpcSrv.Refresh(gctx)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				grpcSrv.Refresh(gctx)
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		wsHub.CloseAll()
		grpcSrv.Stop()
		return httpServer.Shutdown(sctx)
	})

	return g.Wait()
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// service then runs single-instance with the in-process bus and no cache.
func connectRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Info("redis disabled, using in-process insert bus")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DialTimeout: 5 * time.Second})
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		log.Warn("redis unreachable, using in-process insert bus", "addr", cfg.RedisAddr, "error", err)
		_ = rdb.Close()
		return nil
	}
	log.Info("redis connected", "addr", cfg.RedisAddr)
	return rdb
}
