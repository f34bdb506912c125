package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/ping-notifier/internal/core/ports"
	customMiddleware "github.com/avatarctic/ping-notifier/internal/infrastructure/httpserver/middleware"
	"github.com/avatarctic/ping-notifier/internal/infrastructure/metrics"
)

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	TLSCertFile    string
	TLSKeyFile     string
	AllowedOrigins []string
	Version        string
}

type ServerDeps struct {
	TemplateService ports.PingTemplateService
	PingService     ports.PingService
	ChannelClient   ports.ChannelClient
	TokenVerifier   ports.TokenVerifier
	HealthCheckers  []ports.HealthChecker
	HTTPMetrics     *metrics.HTTPMetrics
	// Gatherer backs /metrics; defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	templateSvc    ports.PingTemplateService
	pingSvc        ports.PingService
	channels       ports.ChannelClient
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
	gatherer       prometheus.Gatherer
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		templateSvc:    deps.TemplateService,
		pingSvc:        deps.PingService,
		channels:       deps.ChannelClient,
		healthCheckers: deps.HealthCheckers,
		gatherer:       gatherer,
		middleware:     customMiddleware.NewMiddlewareCollection(deps.TokenVerifier, logger, deps.HTTPMetrics),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
