package handler

import (
	"github.com/gin-gonic/gin"

	"hedgeblotter/internal/session"
)

const sessionMaxAge = 30 * 24 * 3600

// state resolves the caller's session from the cookie, creating one when
// absent, and refreshes the cookie on every request.
func state(c *gin.Context, m *session.Manager) *session.State {
	id, _ := c.Cookie(session.CookieName)
	st := m.Get(id)
	c.SetCookie(session.CookieName, st.ID, sessionMaxAge, "/", "", false, true)
	return st
}
