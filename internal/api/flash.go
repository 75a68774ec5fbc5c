package api

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const flashCookieName = "glucolog_flash"

// Flash is a one-time notice rendered on the next page load.
type Flash struct {
	Level   string
	Message string
}

// setFlash queues a notice for the next rendered page. gin escapes the
// cookie value on write and unescapes it on read.
func setFlash(c *gin.Context, level, message string) {
	c.SetCookie(flashCookieName, level+"|"+message, 60, "/", "", false, true)
}

// popFlash consumes a queued notice, clearing the cookie.
func popFlash(c *gin.Context) *Flash {
	raw, err := c.Cookie(flashCookieName)
	if err != nil || raw == "" {
		return nil
	}
	c.SetCookie(flashCookieName, "", -1, "/", "", false, true)

	parts := strings.SplitN(raw, "|", 2)
	if len(parts) != 2 {
		return &Flash{Level: "info", Message: raw}
	}
	return &Flash{Level: parts[0], Message: parts[1]}
}
