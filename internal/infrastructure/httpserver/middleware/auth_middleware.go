package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/ping-notifier/internal/core/ports"
	"github.com/avatarctic/ping-notifier/internal/infrastructure/httpserver/helpers"
)

type JWTMiddleware struct {
	verifier ports.TokenVerifier
	logger   *logrus.Logger
}

func NewJWTMiddleware(verifier ports.TokenVerifier, logger *logrus.Logger) *JWTMiddleware {
	return &JWTMiddleware{verifier: verifier, logger: logger}
}

// RequireJWT creates middleware that validates bearer tokens and sets the actor in context
func (m *JWTMiddleware) RequireJWT() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := helpers.GetJWTTokenFromContext(c)
			if err != nil {
				return err
			}

			claims, err := m.verifier.ValidateToken(c.Request().Context(), tokenString)
			if err != nil {
				if m.logger != nil {
					m.logger.WithFields(logrus.Fields{"ip": c.RealIP(), "path": c.Request().URL.Path, "error": err.Error()}).Warn("JWT validation failed")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			helpers.SetActor(c, claims.Actor())
			helpers.SetActorGroups(c, claims.Groups)

			if m.logger != nil {
				m.logger.WithFields(logrus.Fields{"actor": claims.Actor(), "groups": claims.Groups}).Debug("jwt validated and actor context set")
			}
			return next(c)
		}
	}
}
