package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/ping-notifier/internal/core/domain/discord"
	"github.com/avatarctic/ping-notifier/internal/core/domain/ping"
)

// httpError maps service errors onto API responses. Discord failures surface
// as 502 except for a 404, which means the requested object is gone.
func (s *Server) httpError(err error) error {
	switch {
	case errors.Is(err, ping.ErrTemplateNotFound), errors.Is(err, ping.ErrPingNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ping.ErrInvalidTemplate), errors.Is(err, ping.ErrInvalidPing), errors.Is(err, discord.ErrInvalidChannel):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ping.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ping.ErrRateLimited):
		return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
	case discord.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, "discord resource not found")
	case errors.Is(err, discord.ErrRequestFailed), errors.Is(err, discord.ErrMalformedResponse):
		if s.logger != nil {
			s.logger.WithError(err).Warn("discord call failed")
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	if s.logger != nil {
		s.logger.WithError(err).Error("unhandled service error")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
