package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/dtroode/shareride-auth/internal/logger"
)

func TestLogging_Handle(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLogging(logger.NewWithFormat(-4, "json", &buf))

	r := newTestEngine(t)
	r.Use(lg.Handle)
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.String(http.StatusInternalServerError, "fail")
	})

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantError  bool
	}{
		{name: "success path", path: "/ok", wantStatus: http.StatusOK},
		{name: "handler error is logged", path: "/fail", wantStatus: http.StatusInternalServerError, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			out := buf.String()
			assert.Contains(t, out, "HTTP request started")
			assert.Contains(t, out, "HTTP request completed")
			assert.Contains(t, out, `"path":"`+tt.path+`"`)
			if tt.wantError {
				assert.Contains(t, out, "HTTP request failed")
				assert.Contains(t, out, "boom")
			} else {
				assert.NotContains(t, out, "HTTP request failed")
			}
		})
	}
}
