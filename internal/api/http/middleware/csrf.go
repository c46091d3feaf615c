package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/shareride-auth/internal/api/http/cookie"
	"github.com/dtroode/shareride-auth/internal/apperrors"
	"github.com/dtroode/shareride-auth/internal/logger"
	"github.com/dtroode/shareride-auth/internal/model"
)

const (
	// CSRFFormField is the hidden form field carrying the token.
	CSRFFormField = "csrf_token"

	csrfKey = "shareride.csrf"
)

// CSRF implements the double-submit cookie check. Safe requests get a signed
// token in a cookie; unsafe requests must echo it in CSRFFormField.
type CSRF struct {
	tokens model.FormTokenManager
	jar    cookie.Jar
	logger *logger.Logger
}

// NewCSRF creates a new CSRF middleware instance.
func NewCSRF(tokens model.FormTokenManager, jar cookie.Jar, logger *logger.Logger) *CSRF {
	return &CSRF{tokens: tokens, jar: jar, logger: logger}
}

// CSRFToken returns the token to embed in forms rendered for this request.
func CSRFToken(c *gin.Context) string {
	return c.GetString(csrfKey)
}

// Handle issues or verifies the form token depending on the request method.
func (m *CSRF) Handle(c *gin.Context) {
	token := m.jar.Read(c)

	if isSafeMethod(c.Request.Method) {
		if token == "" || m.tokens.Validate(token) != nil {
			fresh, err := m.tokens.Generate()
			if err != nil {
				m.logger.Error("CSRF middleware: failed to generate token",
					"error", err.Error())
				_ = c.Error(err)
				c.HTML(http.StatusInternalServerError, "error.html", gin.H{
					"Title":   "Error",
					"Message": apperrors.MsgInternal,
				})
				c.Abort()
				return
			}
			m.jar.Set(c, fresh)
			token = fresh
		}
		c.Set(csrfKey, token)
		c.Next()
		return
	}

	submitted := c.PostForm(CSRFFormField)
	if token == "" || submitted == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(submitted)) != 1 ||
		m.tokens.Validate(token) != nil {
		m.logger.Warn("CSRF middleware: rejected request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"has_cookie", token != "",
			"has_field", submitted != "")
		c.HTML(http.StatusForbidden, "error.html", gin.H{
			"Title":   "Forbidden",
			"Message": apperrors.MsgFormExpired,
		})
		c.Abort()
		return
	}

	c.Set(csrfKey, token)
	c.Next()
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
