package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SyedHasanCronosPMC/StudySync/internal/http/response"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/ctxutil"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
	"github.com/SyedHasanCronosPMC/StudySync/internal/realtime"
)

type RealtimeHandler struct {
	Log *logger.Logger
	Hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{Log: log.With("handler", "RealtimeHandler"), Hub: hub}
}

// GET /api/rooms/:id/presence?token=...
func (h *RealtimeHandler) RoomPresence(c *gin.Context) {
	userID := ctxutil.UserID(c.Request.Context())
	if userID == uuid.Nil {
		response.Fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "roomId must be a valid id")
		return
	}

	channel := realtime.RoomChannel(roomID)
	client := h.Hub.NewSSEClient(userID)
	h.Hub.AddChannel(client, channel)
	h.Log.Info("presence stream open", "user_id", userID.String(), "room_id", roomID.String(), "client_id", client.ID.String())

	// first frame tells the client who is already connected
	snapshot := realtime.SSEMessage{
		Channel: channel,
		Event:   realtime.SSEEventPresenceSnapshot,
		Data:    gin.H{"room_id": roomID, "user_ids": h.Hub.ChannelUsers(channel)},
	}
	client.Offer(snapshot)

	h.Hub.ServeHTTP(c.Writer, c.Request, client)

	h.Hub.CloseClient(client)
	h.Log.Info("presence stream closed", "user_id", userID.String(), "room_id", roomID.String(), "client_id", client.ID.String())
}
