package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vkinder/apps/bot/internal/conversation"
	"vkinder/apps/bot/internal/matching"
	"vkinder/apps/bot/internal/middleware"
	"vkinder/apps/bot/internal/oauth"
	"vkinder/apps/bot/internal/repository"
	"vkinder/apps/bot/internal/router"
	v1 "vkinder/apps/bot/internal/router/v1"
	"vkinder/apps/bot/internal/vkapi"
	"vkinder/apps/bot/mq"
	"vkinder/config"
	"vkinder/model"
	"vkinder/pkg/async"
	"vkinder/pkg/kafka"
	"vkinder/pkg/logger"
	"vkinder/pkg/mysql"
	pkgredis "vkinder/pkg/redis"
	"vkinder/pkg/tokenbox"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := flag.String("config", os.Getenv("VKINDER_CONFIG"), "path to the YAML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. config and logger
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	zl, err := logger.Build(cfg.Logger)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	logger.ReplaceGlobal(zl)
	defer func() { _ = zl.Sync() }()

	if err := async.Init(cfg.Async); err != nil {
		logger.Fatal(ctx, "async pool init failed", logger.ErrorField("error", err))
	}
	defer func() {
		if err := async.Release(); err != nil {
			logger.Warn(context.Background(), "async pool release timed out", logger.ErrorField("error", err))
		}
	}()

	// 2. storage
	db, err := mysql.Build(cfg.MySQL)
	if err != nil {
		logger.Fatal(ctx, "mysql init failed", logger.ErrorField("error", err))
	}
	mysql.ReplaceGlobal(db)
	defer func() { _ = mysql.Close(db) }()

	if err := model.AutoMigrate(db); err != nil {
		logger.Fatal(ctx, "schema migration failed", logger.ErrorField("error", err))
	}

	// Redis is optional: the blacklist cache and the callback limiter degrade to MySQL-only / unlimited
	redisClient, err := pkgredis.Build(cfg.Redis)
	if err != nil {
		logger.Warn(ctx, "redis unavailable, running without cache", logger.ErrorField("error", err))
		redisClient = nil
	} else {
		pkgredis.ReplaceGlobal(redisClient)
		defer func() { _ = redisClient.Close() }()
		logger.Info(ctx, "redis connected", logger.String("addr", cfg.Redis.Addr))
	}

	// 3. retry queue for failed cache writes, only useful with Redis
	if redisClient != nil && len(cfg.Kafka.Brokers) > 0 {
		closeQueue := startRetryQueue(ctx, cfg.Kafka, redisClient)
		defer closeQueue()
	}

	// 4. VK API
	breaker := vkapi.NewBreaker(cfg.VK.Breaker)
	factory := vkapi.NewFactory(cfg.VK, breaker, nil)
	community := vkapi.NewClient(cfg.VK.GroupToken, cfg.VK, breaker, nil)

	node, err := snowflake.NewNode(cfg.Bot.SnowflakeNode)
	if err != nil {
		logger.Fatal(ctx, "snowflake init failed", logger.ErrorField("error", err))
	}
	group := vkapi.NewGroupSession(cfg.VK, community, node)

	// 5. repositories
	userRepo := repository.NewUserRepository(db, tokenbox.New(cfg.OAuth.TokenSecret))
	paramsRepo := repository.NewSearchParamsRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	blacklistRepo := repository.NewBlacklistRepository(db, redisClient)
	matchRepo := repository.NewMatchRepository(db, cfg.Matching.CacheTTL)
	authRepo := repository.NewAuthRepository(db)
	photoLikeRepo := repository.NewPhotoLikeRepository(db)

	// 6. domain components
	oauthClient := oauth.NewClient(cfg.OAuth, cfg.VK.APIVersion, nil, func(token string) oauth.IdentityProvider {
		return factory.ForToken(token)
	})
	flow := oauth.NewFlow(oauthClient, authRepo, cfg.OAuth.ChallengeTTL)

	engine := matching.NewEngine(cfg.Matching, func(token string) matching.Gateway {
		return factory.ForToken(token)
	}, userRepo, paramsRepo, favoriteRepo, blacklistRepo, matchRepo)

	controller := conversation.NewController(cfg.Bot, conversation.Deps{
		Messenger: group,
		Community: community,
		UserAPI: func(token string) conversation.UserAPI {
			return factory.ForToken(token)
		},
		Matcher:    engine,
		Auth:       flow,
		Validator:  oauthClient,
		Users:      userRepo,
		Params:     paramsRepo,
		Favorites:  favoriteRepo,
		Blacklist:  blacklistRepo,
		PhotoLikes: photoLikeRepo,
	}, nil)

	// 7. HTTP: OAuth redirect, health and metrics
	gin.SetMode(cfg.Server.Mode)
	var limiter *middleware.RedisRateLimiter
	if redisClient != nil {
		limiter = middleware.NewRedisRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst, redisClient)
	}
	engineHTTP := router.InitRouter(cfg.Server, limiter, v1.NewOAuthHandler(flow, controller))
	server := router.NewServer(cfg.Server, engineHTTP)

	go func() {
		logger.Info(ctx, "http server starting", logger.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "http server failed", logger.ErrorField("error", err))
			stop()
		}
	}()

	// 8. long poll loop, blocks until a signal arrives
	logger.Info(ctx, "bot started", logger.Int64("group_id", cfg.VK.GroupID))
	if err := conversation.NewRunner(group, controller, cfg.Bot.ReconnectDelay).Run(ctx); err != nil {
		logger.Error(ctx, "bot loop stopped", logger.ErrorField("error", err))
	}

	// 9. graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg.Server))
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn(shutdownCtx, "http server shutdown failed", logger.ErrorField("error", err))
	}
	logger.Info(shutdownCtx, "bot stopped")
}

// startRetryQueue installs the Kafka producer used by repositories and starts the consumer replaying failed Redis writes.
func startRetryQueue(ctx context.Context, cfg config.KafkaConfig, redisClient *redis.Client) func() {
	producer := kafka.NewProducer(cfg.Brokers, cfg.RedisRetryTopic)
	mq.SetGlobalProducer(producer)

	reader := kafka.NewReader(cfg.Brokers, cfg.RedisRetryTopic, cfg.ConsumerConfig.GroupID,
		cfg.ConsumerConfig.MinBytes, cfg.ConsumerConfig.MaxBytes, kafka.NewZapLoggerAdapter(logger.L()))
	consumer := mq.NewRedisRetryConsumer(reader, redisClient)

	go func() {
		logger.Info(ctx, "redis retry consumer starting",
			logger.String("topic", cfg.RedisRetryTopic),
			logger.String("group_id", cfg.ConsumerConfig.GroupID),
		)
		if err := consumer.Run(ctx); err != nil {
			logger.Error(ctx, "redis retry consumer stopped", logger.ErrorField("error", err))
		}
	}()

	return func() {
		mq.SetGlobalProducer(nil)
		if err := producer.Close(); err != nil {
			logger.Warn(context.Background(), "kafka producer close failed", logger.ErrorField("error", err))
		}
		if err := consumer.Close(); err != nil {
			logger.Warn(context.Background(), "redis retry consumer close failed", logger.ErrorField("error", err))
		}
	}
}

func shutdownTimeout(cfg config.ServerConfig) time.Duration {
	if cfg.ShutdownTimeout > 0 {
		return cfg.ShutdownTimeout
	}
	return 30 * time.Second
}
