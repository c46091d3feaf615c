// Package cookie reads and writes the cookies the web flow relies on.
package cookie

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Jar describes one cookie. All cookies are host-only, path "/", HttpOnly
// and SameSite=Lax.
type Jar struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Set writes value with the configured lifetime.
func (j Jar) Set(c *gin.Context, value string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(j.Name, value, int(j.MaxAge.Seconds()), "/", "", j.Secure, true)
}

// Clear expires the cookie in the browser.
func (j Jar) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(j.Name, "", -1, "/", "", j.Secure, true)
}

// Read returns the cookie value or "" when absent.
func (j Jar) Read(c *gin.Context) string {
	value, err := c.Cookie(j.Name)
	if err != nil {
		return ""
	}
	return value
}
