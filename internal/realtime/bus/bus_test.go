package bus

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
	"github.com/SyedHasanCronosPMC/StudySync/internal/realtime"
)

func TestTopicRoundTrip(t *testing.T) {
	room := realtime.RoomChannel(uuid.New())
	got, ok := hubChannel(DefaultPrefix, topic(DefaultPrefix, room))
	if !ok || got != room {
		t.Fatalf("hubChannel = %q, %v; want %q", got, ok, room)
	}
	if _, ok := hubChannel(DefaultPrefix, "other:room:x"); ok {
		t.Fatalf("foreign channel should not map")
	}
	if _, ok := hubChannel(DefaultPrefix, DefaultPrefix+":"); ok {
		t.Fatalf("empty suffix should not map")
	}
}

func TestNewRedisBusRequiresClient(t *testing.T) {
	if _, err := NewRedisBus(logger.Nop(), nil, ""); err == nil {
		t.Fatalf("expected error without redis client")
	}
}

func TestRedisBusForwardsRoomEvents(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := NewRedisBus(logger.Nop(), rdb, "studysync:test:"+uuid.NewString())
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}
	got := make(chan realtime.SSEMessage, 1)
	if err := b.StartForwarder(ctx, func(m realtime.SSEMessage) { got <- m }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}

	room := realtime.RoomChannel(uuid.New())
	if err := b.Publish(ctx, realtime.SSEMessage{Channel: room, Event: realtime.SSEEventParticipantJoined}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case m := <-got:
		if m.Channel != room || m.Event != realtime.SSEEventParticipantJoined {
			t.Fatalf("unexpected message %+v", m)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no message forwarded")
	}
}
