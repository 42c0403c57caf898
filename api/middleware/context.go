package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	contextUserIDKey   = "auth_user_id"
	contextUsernameKey = "auth_username"
	contextRolesKey    = "auth_roles"
)

func SetAuthContext(c echo.Context, userID uuid.UUID, username string, roles []string) {
	c.Set(contextUserIDKey, userID)
	c.Set(contextUsernameKey, username)
	c.Set(contextRolesKey, roles)
}

func UserIDFromContext(c echo.Context) (uuid.UUID, bool) {
	value := c.Get(contextUserIDKey)
	userID, ok := value.(uuid.UUID)
	return userID, ok
}

func UsernameFromContext(c echo.Context) (string, bool) {
	value := c.Get(contextUsernameKey)
	username, ok := value.(string)
	return username, ok
}

func RolesFromContext(c echo.Context) ([]string, bool) {
	value := c.Get(contextRolesKey)
	roles, ok := value.([]string)
	return roles, ok
}
