package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/ping-notifier/internal/core/domain/discord"
)

func (s *Server) listDiscordChannels(c echo.Context) error {
	channels, err := s.channels.ListChannels(c.Request().Context())
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"channels": channels})
}

func (s *Server) getDiscordChannel(c echo.Context) error {
	id := c.Param("id")
	name, err := s.channels.GetChannelName(c.Request().Context(), id)
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusOK, discord.ChannelSummary{ID: id, Name: name})
}
