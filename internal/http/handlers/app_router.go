package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SyedHasanCronosPMC/StudySync/internal/actions"
	"github.com/SyedHasanCronosPMC/StudySync/internal/http/middleware"
	"github.com/SyedHasanCronosPMC/StudySync/internal/http/response"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

type AppRouterHandler struct {
	log      *logger.Logger
	auth     *middleware.AuthMiddleware
	registry *actions.Registry
}

func NewAppRouterHandler(log *logger.Logger, auth *middleware.AuthMiddleware, registry *actions.Registry) *AppRouterHandler {
	return &AppRouterHandler{
		log:      log.With("handler", "AppRouterHandler"),
		auth:     auth,
		registry: registry,
	}
}

type actionRequest struct {
	Action  string          `json:"action"`
	Payload actions.Payload `json:"payload"`
}

// POST /functions/v1/app-router
// body: { "action": "studyRooms.join", "payload": { "roomId": "..." } }
func (h *AppRouterHandler) Handle(c *gin.Context) {
	if !allowPost(c) {
		return
	}
	if !h.auth.Authenticate(c) {
		return
	}

	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	name := strings.TrimSpace(req.Action)
	if name == "" {
		response.Fail(c, http.StatusBadRequest, "Action is required")
		return
	}
	c.Set("action", name)

	data, ok, err := h.registry.Dispatch(c.Request.Context(), name, req.Payload)
	if !ok {
		response.Fail(c, http.StatusBadRequest, fmt.Sprintf("Unknown action: %s", name))
		return
	}
	if err != nil {
		response.Error(c, err, http.StatusBadRequest)
		return
	}
	response.OK(c, data)
}
