package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/ping-notifier/internal/core/domain/ping"
	"github.com/avatarctic/ping-notifier/internal/infrastructure/httpserver/helpers"
)

func (s *Server) listTemplates(c echo.Context) error {
	templates, err := s.templateSvc.ListTemplates(c.Request().Context())
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"templates": templates})
}

func (s *Server) createTemplate(c echo.Context) error {
	actor, err := helpers.GetActorFromContext(c)
	if err != nil {
		return err
	}
	var in ping.TemplateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	t, err := s.templateSvc.CreateTemplate(c.Request().Context(), actor, &in)
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (s *Server) getTemplate(c echo.Context) error {
	id, err := helpers.ParseUUIDParam(c, "id", "template")
	if err != nil {
		return err
	}
	t, err := s.templateSvc.GetTemplate(c.Request().Context(), id)
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) updateTemplate(c echo.Context) error {
	actor, err := helpers.GetActorFromContext(c)
	if err != nil {
		return err
	}
	id, err := helpers.ParseUUIDParam(c, "id", "template")
	if err != nil {
		return err
	}
	var in ping.TemplateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	t, err := s.templateSvc.UpdateTemplate(c.Request().Context(), actor, id, &in)
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) deleteTemplate(c echo.Context) error {
	id, err := helpers.ParseUUIDParam(c, "id", "template")
	if err != nil {
		return err
	}
	if err := s.templateSvc.DeleteTemplate(c.Request().Context(), id); err != nil {
		return s.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
