package response

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/ratelimit"
)

// UnexpectedError is what callers see for failures that carry no apierr status.
const UnexpectedError = "Unexpected error occurred"

type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK wraps data in the success envelope.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Success writes a flat success body: fields are merged next to success=true.
func Success(c *gin.Context, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Error: msg})
}

// Error renders err as a failure envelope. Errors carrying an apierr status
// keep their message; anything else is logged by the caller and answered with
// fallback and a generic message.
func Error(c *gin.Context, err error, fallback int) {
	var exceeded *ratelimit.Exceeded
	if errors.As(err, &exceeded) {
		c.Header("Retry-After", strconv.Itoa(exceeded.RetryAfterSeconds()))
	}
	if apierr.CodeOf(err) == "" {
		Fail(c, fallback, UnexpectedError)
		return
	}
	Fail(c, apierr.StatusOf(err, fallback), err.Error())
}
