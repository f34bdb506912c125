package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/ping-notifier/configs"
	"github.com/avatarctic/ping-notifier/internal/application/services"
	"github.com/avatarctic/ping-notifier/internal/core/ports"
	"github.com/avatarctic/ping-notifier/internal/infrastructure/db"
	discordclient "github.com/avatarctic/ping-notifier/internal/infrastructure/discord"
	"github.com/avatarctic/ping-notifier/internal/infrastructure/health"
	"github.com/avatarctic/ping-notifier/internal/infrastructure/httpserver"
	"github.com/avatarctic/ping-notifier/internal/infrastructure/metrics"
	"github.com/avatarctic/ping-notifier/internal/infrastructure/redis"
	"github.com/avatarctic/ping-notifier/internal/infrastructure/repositories"
)

var version = "dev"

func newLogger(cfg *config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}
	return logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	logger := newLogger(&cfg.Log)
	logger.WithField("version", version).Info("Starting ping notifier...")

	database, err := db.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database: ", err)
	}
	defer database.Close()
	logger.Info("Connected to database successfully")

	if err := database.Migrate(cfg.Migrations.Path, logger); err != nil {
		logger.Fatal("Failed to run migrations: ", err)
	}

	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis: ", err)
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis successfully")

	reg := prometheus.DefaultRegisterer
	cacheMetrics := metrics.NewCacheMetrics(reg)
	discordMetrics := metrics.NewDiscordMetrics(reg)
	httpMetrics := metrics.NewHTTPMetrics(reg)

	channelClient := discordclient.NewClient(&discordclient.Config{
		Token:                      cfg.Discord.BotToken,
		GuildID:                    cfg.Discord.GuildID,
		APIBaseURL:                 cfg.Discord.APIBaseURL,
		RequestTimeout:             cfg.Discord.RequestTimeout,
		ChannelCacheTTL:            cfg.Discord.ChannelCacheTTL,
		ChannelNameCacheTTL:        cfg.Discord.ChannelNameCacheTTL,
		ChannelNameCacheMaxEntries: cfg.Discord.ChannelNameCacheMaxEntries,
		FetchTimeout:               cfg.Discord.FetchTimeout,
	}, logger, cacheMetrics, discordMetrics)
	if cfg.Discord.GuildID == "" {
		logger.Warn("DISCORD_GUILD_ID is not set; channel listing will be empty")
	}

	redisCache := redis.NewRedisCache(redisClient, cfg.Cache.KeyPrefix)
	templateRepo := repositories.NewCachingPingTemplateRepository(
		repositories.NewPingTemplateRepository(database), redisCache, cfg.Cache.TemplateTTL, logger)
	pingRepo := repositories.NewPingRepository(database)

	rateLimiter := services.NewRateLimiterService(repositories.NewRateLimitRedisRepository(redisClient), &services.RateLimiterConfig{
		Limit:           cfg.RateLimit.PingsPerWindow,
		BurstMultiplier: cfg.RateLimit.BurstMultiplier,
		Window:          cfg.RateLimit.Window,
		KeyPrefix:       cfg.RateLimit.KeyPrefix,
	}, logger)

	templateService := services.NewPingTemplateService(templateRepo, channelClient, logger)
	pingService := services.NewPingService(pingRepo, templateRepo, channelClient, rateLimiter, logger)
	tokenService := services.NewTokenService(&services.TokenConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})

	checkers := []ports.HealthChecker{
		health.NewDBHealthChecker(database),
		health.NewRedisHealthChecker(redisClient),
		health.NewDiscordHealthChecker(channelClient),
	}

	server := httpserver.NewServer(&httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		AllowedOrigins: cfg.Server.CORSOrigins,
		Version:        version,
	}, logger, httpserver.ServerDeps{
		TemplateService: templateService,
		PingService:     pingService,
		ChannelClient:   channelClient,
		TokenVerifier:   tokenService,
		HealthCheckers:  checkers,
		HTTPMetrics:     httpMetrics,
		Gatherer:        prometheus.DefaultGatherer,
	})

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown: ", err)
	}

	logger.Info("Server exited")
}
