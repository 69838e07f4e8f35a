package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SyedHasanCronosPMC/StudySync/internal/http/response"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
	"github.com/SyedHasanCronosPMC/StudySync/internal/services"
)

const (
	MsgMissingAuth  = "Missing Authorization header"
	MsgUnauthorized = "Unauthorized"
)

type AuthMiddleware struct {
	log      *logger.Logger
	identity services.IdentityService
}

func NewAuthMiddleware(log *logger.Logger, identity services.IdentityService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), identity: identity}
}

// RequireAuth resolves the caller and aborts with 401 when that fails.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !am.Authenticate(c) {
			return
		}
		c.Next()
	}
}

// Authenticate attaches the caller to the request context. On failure it
// writes the 401 envelope and returns false.
func (am *AuthMiddleware) Authenticate(c *gin.Context) bool {
	token := ExtractToken(c)
	if token == "" {
		response.Fail(c, http.StatusUnauthorized, MsgMissingAuth)
		return false
	}
	ctx, err := am.identity.SetContextFromToken(c.Request.Context(), token)
	if err != nil {
		am.log.Debug("token rejected", "path", c.Request.URL.Path, "error", err)
		response.Fail(c, http.StatusUnauthorized, MsgUnauthorized)
		return false
	}
	c.Request = c.Request.WithContext(ctx)
	return true
}

// ExtractToken reads a bearer token, falling back to ?token= for EventSource clients.
func ExtractToken(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return strings.TrimSpace(c.Query("token"))
}
