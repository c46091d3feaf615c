package model

import "github.com/gin-gonic/gin"

// ContextManager carries the resolved session through a request.
type ContextManager interface {
	SetSession(c *gin.Context, session Session)
	GetSession(c *gin.Context) (Session, bool)
}
