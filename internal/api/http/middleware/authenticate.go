package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/shareride-auth/internal/api/http/cookie"
	"github.com/dtroode/shareride-auth/internal/apperrors"
	"github.com/dtroode/shareride-auth/internal/logger"
	"github.com/dtroode/shareride-auth/internal/model"
)

const sessionErrKey = "shareride.session_error"

// SessionResolver resolves session tokens.
type SessionResolver interface {
	Session(ctx context.Context, token string) (model.Session, error)
}

// Authenticate resolves the session cookie and gates protected pages.
type Authenticate struct {
	sessions       SessionResolver
	contextManager model.ContextManager
	jar            cookie.Jar
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(sessions SessionResolver, contextManager model.ContextManager, jar cookie.Jar, logger *logger.Logger) *Authenticate {
	return &Authenticate{sessions: sessions, contextManager: contextManager, jar: jar, logger: logger}
}

// Load attaches the session named by the cookie to the request. A stale
// cookie is cleared. A store failure is remembered for RequireSession and the
// request continues as anonymous.
func (m *Authenticate) Load(c *gin.Context) {
	token := m.jar.Read(c)
	if token == "" {
		c.Next()
		return
	}

	session, err := m.sessions.Session(c.Request.Context(), token)
	switch {
	case err == nil:
		m.contextManager.SetSession(c, session)
	case errors.Is(err, model.ErrSessionNotFound):
		m.logger.Debug("Authenticate middleware: stale session cookie")
		m.jar.Clear(c)
	default:
		m.logger.Error("Authenticate middleware: failed to resolve session",
			"error", err.Error())
		c.Set(sessionErrKey, err)
	}

	c.Next()
}

// RequireSession redirects anonymous visitors to the login page and stops
// the handler chain.
func (m *Authenticate) RequireSession(c *gin.Context) {
	if _, ok := m.contextManager.GetSession(c); ok {
		c.Next()
		return
	}

	if v, ok := c.Get(sessionErrKey); ok {
		_ = c.Error(v.(error))
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"Title":   "Error",
			"Message": apperrors.MsgInternal,
		})
		c.Abort()
		return
	}

	c.Redirect(http.StatusSeeOther, "/login")
	c.Abort()
}

// RedirectAuthenticated sends visitors that already have a session to target.
func (m *Authenticate) RedirectAuthenticated(target string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := m.contextManager.GetSession(c); ok {
			c.Redirect(http.StatusSeeOther, target)
			c.Abort()
			return
		}
		c.Next()
	}
}
