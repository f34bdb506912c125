package middleware

import (
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/ping-notifier/internal/core/ports"
	"github.com/avatarctic/ping-notifier/internal/infrastructure/metrics"
)

// MiddlewareCollection holds all middleware instances
type MiddlewareCollection struct {
	JWT     *JWTMiddleware
	Logging *LoggingMiddleware
	Metrics *MetricsMiddleware
}

// NewMiddlewareCollection creates a new collection of all middleware
func NewMiddlewareCollection(verifier ports.TokenVerifier, logger *logrus.Logger, httpMetrics *metrics.HTTPMetrics) *MiddlewareCollection {
	return &MiddlewareCollection{
		JWT:     NewJWTMiddleware(verifier, logger),
		Logging: NewLoggingMiddleware(logger),
		Metrics: NewMetricsMiddleware(httpMetrics),
	}
}
