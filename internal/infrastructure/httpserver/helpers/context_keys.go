package helpers

import (
	"github.com/labstack/echo/v4"
)

type ctxKey string

const (
	keyActor       ctxKey = "actor"
	keyActorGroups ctxKey = "actor_groups"
)

func SetActor(c echo.Context, actor string) { c.Set(string(keyActor), actor) }
func GetActorRaw(c echo.Context) (string, bool) {
	v := c.Get(string(keyActor))
	s, ok := v.(string)
	return s, ok
}

func SetActorGroups(c echo.Context, groups []string) { c.Set(string(keyActorGroups), groups) }
func GetActorGroupsRaw(c echo.Context) ([]string, bool) {
	v := c.Get(string(keyActorGroups))
	g, ok := v.([]string)
	return g, ok
}
