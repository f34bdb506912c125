package helpers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// GetActorFromContext returns the caller set by the JWT middleware.
func GetActorFromContext(c echo.Context) (string, error) {
	s, ok := GetActorRaw(c)
	if !ok || s == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid user context")
	}
	return s, nil
}

func GetJWTTokenFromContext(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "empty token")
	}
	return token, nil
}

// ParseUUIDParam reads a UUID path parameter; what names it in the error.
func ParseUUIDParam(c echo.Context, name, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+what+" ID")
	}
	return id, nil
}

// ParsePaging reads limit and offset query parameters. Unparseable values
// fall back to the defaults.
func ParsePaging(c echo.Context, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if l := c.QueryParam("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil {
			limit = v
		}
	}
	if o := c.QueryParam("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil {
			offset = v
		}
	}
	return limit, offset
}
