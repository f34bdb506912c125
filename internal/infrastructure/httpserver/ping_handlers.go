package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/ping-notifier/internal/core/domain/ping"
	"github.com/avatarctic/ping-notifier/internal/infrastructure/httpserver/helpers"
)

func (s *Server) listPings(c echo.Context) error {
	limit, offset := helpers.ParsePaging(c, 50)
	pings, total, err := s.pingSvc.ListPings(c.Request().Context(), limit, offset)
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"pings": pings, "total": total, "limit": limit, "offset": offset})
}

func (s *Server) sendPing(c echo.Context) error {
	actor, err := helpers.GetActorFromContext(c)
	if err != nil {
		return err
	}
	var req ping.SendPingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	groups, _ := helpers.GetActorGroupsRaw(c)
	p, err := s.pingSvc.SendPing(c.Request().Context(), actor, groups, &req)
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) getPing(c echo.Context) error {
	id, err := helpers.ParseUUIDParam(c, "id", "ping")
	if err != nil {
		return err
	}
	p, err := s.pingSvc.GetPing(c.Request().Context(), id)
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) deletePing(c echo.Context) error {
	id, err := helpers.ParseUUIDParam(c, "id", "ping")
	if err != nil {
		return err
	}
	if err := s.pingSvc.DeletePing(c.Request().Context(), id); err != nil {
		return s.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
