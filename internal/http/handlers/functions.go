package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SyedHasanCronosPMC/StudySync/internal/http/middleware"
	"github.com/SyedHasanCronosPMC/StudySync/internal/http/response"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
	"github.com/SyedHasanCronosPMC/StudySync/internal/services"
)

// functionGuard runs the checks shared by the standalone function endpoints:
// method, caller, then a JSON body.
func functionGuard(c *gin.Context, auth *middleware.AuthMiddleware) bool {
	if !allowPost(c) {
		return false
	}
	if !auth.Authenticate(c) {
		return false
	}
	if !isJSON(c) {
		response.Error(c, apierr.UnsupportedMedia(msgJSONRequired), http.StatusUnsupportedMediaType)
		return false
	}
	return true
}

func failFunction(c *gin.Context, log *logger.Logger, err error) {
	if apierr.CodeOf(err) == "" {
		log.Error("function failed", "path", c.Request.URL.Path, "error", err)
	}
	response.Error(c, err, http.StatusInternalServerError)
}

type CheckInHandler struct {
	log     *logger.Logger
	auth    *middleware.AuthMiddleware
	checkIn services.CheckInService
}

func NewCheckInHandler(log *logger.Logger, auth *middleware.AuthMiddleware, checkIn services.CheckInService) *CheckInHandler {
	return &CheckInHandler{log: log.With("handler", "CheckInHandler"), auth: auth, checkIn: checkIn}
}

type checkInReq struct {
	Type      string         `json:"type"`
	Responses map[string]any `json:"responses"`
}

// POST /functions/v1/check-in
// body: { "type": "morning", "responses": { "energy": 6, "mood": "ok" } }
func (h *CheckInHandler) Submit(c *gin.Context) {
	if !functionGuard(c, h.auth) {
		return
	}
	var req checkInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	out, err := h.checkIn.Submit(c.Request.Context(), services.CheckInInput{Type: req.Type, Responses: req.Responses})
	if err != nil {
		failFunction(c, h.log, err)
		return
	}
	response.Success(c, gin.H{
		"message":      out.Message,
		"checkIn":      out.CheckIn,
		"achievements": out.Achievements,
	})
}

type DecomposeHandler struct {
	log       *logger.Logger
	auth      *middleware.AuthMiddleware
	decompose services.DecomposeService
}

func NewDecomposeHandler(log *logger.Logger, auth *middleware.AuthMiddleware, decompose services.DecomposeService) *DecomposeHandler {
	return &DecomposeHandler{log: log.With("handler", "DecomposeHandler"), auth: auth, decompose: decompose}
}

type decomposeReq struct {
	TaskInput   string `json:"task_input"`
	UserProfile struct {
		Conditions        []string `json:"conditions"`
		PreferredDuration int      `json:"preferred_duration"`
	} `json:"user_profile"`
}

// POST /functions/v1/decompose-task
// body: { "task_input": "Write essay", "user_profile": { "conditions": ["ADHD"], "preferred_duration": 20 } }
func (h *DecomposeHandler) Decompose(c *gin.Context) {
	if !functionGuard(c, h.auth) {
		return
	}
	var req decomposeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	out, err := h.decompose.Decompose(c.Request.Context(), services.DecomposeInput{
		TaskInput:         req.TaskInput,
		Conditions:        req.UserProfile.Conditions,
		PreferredDuration: req.UserProfile.PreferredDuration,
	})
	if err != nil {
		failFunction(c, h.log, err)
		return
	}
	response.Success(c, gin.H{
		"parentTask": out.ParentTask,
		"subtasks":   out.Subtasks,
		"generated":  out.Generated,
	})
}
