package helpers

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ctxKey string

const (
	keyAccountID ctxKey = "account_id"
	keyUsername  ctxKey = "username"
)

func SetAccountID(c echo.Context, id uuid.UUID) { c.Set(string(keyAccountID), id) }
func GetAccountIDRaw(c echo.Context) (uuid.UUID, bool) {
	v := c.Get(string(keyAccountID))
	id, ok := v.(uuid.UUID)
	return id, ok
}

func SetUsername(c echo.Context, username string) { c.Set(string(keyUsername), username) }
func GetUsernameRaw(c echo.Context) (string, bool) {
	v := c.Get(string(keyUsername))
	s, ok := v.(string)
	return s, ok
}
