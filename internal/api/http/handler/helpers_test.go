package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	httpcontext "github.com/dtroode/shareride-auth/internal/api/http/context"
	"github.com/dtroode/shareride-auth/internal/api/http/cookie"
	"github.com/dtroode/shareride-auth/internal/api/http/templates"
	"github.com/dtroode/shareride-auth/internal/mocks"
	"github.com/dtroode/shareride-auth/internal/model"
	"github.com/dtroode/shareride-auth/internal/testutil"
)

var sessionJar = cookie.Jar{Name: "sr_session", MaxAge: 12 * time.Hour}

// newAuthEngine mounts the handlers without the session or CSRF middleware.
// A non-nil session is attached to every request.
func newAuthEngine(t *testing.T, svc *mocks.AuthService, session *model.Session) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cm := httpcontext.NewManager()
	h := NewAuth(svc, cm, sessionJar, testutil.MakeNoopLogger())

	r := gin.New()
	r.SetHTMLTemplate(templates.Must())
	if session != nil {
		r.Use(func(c *gin.Context) { cm.SetSession(c, *session) })
	}
	r.GET("/", h.Index)
	r.GET("/login", h.LoginForm)
	r.POST("/login", h.Login)
	r.GET("/register", h.RegisterForm)
	r.POST("/register", h.Register)
	r.GET("/home", h.Home)
	r.GET("/logout", h.Logout)
	r.POST("/logout", h.Logout)
	return r
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "192.0.2.10:51234"
	return req
}
