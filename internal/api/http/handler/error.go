package handler

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/shareride-auth/internal/apperrors"
)

type errorView struct {
	status     int
	message    string
	retryAfter time.Duration
}

// handleError maps err to the status and message a form is re-rendered with.
// Errors that are not AppErrors never reach the page.
func handleError(err error) errorView {
	if appErr, ok := apperrors.As(err); ok {
		return errorView{
			status:     appErr.HTTPCode,
			message:    appErr.Message,
			retryAfter: appErr.RetryAfter,
		}
	}
	return errorView{status: http.StatusInternalServerError, message: apperrors.MsgInternal}
}

// apply writes the headers that go with the view and records server errors
// on the gin context for the logging middleware.
func (v errorView) apply(c *gin.Context, err error) {
	if v.retryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(v.retryAfter.Seconds()))))
	}
	if v.status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
}
