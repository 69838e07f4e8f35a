package realtime

import (
	"github.com/google/uuid"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

// SSEClient is one open presence stream. A user with several tabs open
// has one client per tab.
type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
	Logger   *logger.Logger
}

// Offer queues msg without blocking and reports whether it was accepted.
// Callers must not Offer after CloseClient.
func (c *SSEClient) Offer(msg SSEMessage) bool {
	if c == nil {
		return false
	}
	select {
	case c.Outbound <- msg:
		return true
	default:
		return false
	}
}

// Closed reports whether the hub has closed this client.
func (c *SSEClient) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
