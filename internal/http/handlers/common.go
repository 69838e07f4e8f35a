package handlers

import (
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SyedHasanCronosPMC/StudySync/internal/http/response"
)

const (
	msgMethodNotAllowed = "Method not allowed"
	msgInvalidJSON      = "Invalid JSON body"
	msgJSONRequired     = "Content-Type must be application/json"
)

// allowPost answers preflight and non-POST requests. It returns true when
// the handler should continue.
func allowPost(c *gin.Context) bool {
	switch c.Request.Method {
	case http.MethodPost:
		return true
	case http.MethodOptions:
		c.AbortWithStatus(http.StatusNoContent)
	default:
		c.Header("Allow", "POST, OPTIONS")
		response.Fail(c, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	}
	return false
}

func isJSON(c *gin.Context) bool {
	ct := strings.TrimSpace(c.GetHeader("Content-Type"))
	if ct == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && mt == "application/json"
}
