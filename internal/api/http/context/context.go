package context

import (
	"github.com/gin-gonic/gin"

	"github.com/dtroode/shareride-auth/internal/model"
)

// sessionKey is the gin context key the resolved session is stored under.
const sessionKey = "shareride.session"

var _ model.ContextManager = (*Manager)(nil)

// Manager stores the authenticated session on the gin context for the
// lifetime of one request.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetSession attaches session to the request.
func (m *Manager) SetSession(c *gin.Context, session model.Session) {
	c.Set(sessionKey, session)
}

// GetSession returns the session attached by SetSession, if any.
func (m *Manager) GetSession(c *gin.Context) (model.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return model.Session{}, false
	}
	session, ok := v.(model.Session)
	return session, ok
}
