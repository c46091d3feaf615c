package middleware

import (
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/shareride-auth/internal/api/http/templates"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(templates.Must())
	return r
}
