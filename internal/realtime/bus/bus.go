// Package bus carries room presence events between replicas so every
// replica's SSE hub can deliver them to its own streams.
package bus

import (
	"context"
	"strings"

	"github.com/SyedHasanCronosPMC/StudySync/internal/realtime"
)

type Bus interface {
	// Publish sends msg to every replica subscribed to msg.Channel.
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	// StartForwarder subscribes to all room channels and hands each
	// message to onMsg until ctx is done.
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}

// topic maps a hub channel such as "room:<id>" to its redis channel.
func topic(prefix, channel string) string {
	return prefix + ":" + channel
}

// hubChannel is the inverse of topic; ok is false for foreign channels.
func hubChannel(prefix, redisChannel string) (string, bool) {
	rest, ok := strings.CutPrefix(redisChannel, prefix+":")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}
