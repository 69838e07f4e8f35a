package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
	"github.com/SyedHasanCronosPMC/StudySync/internal/realtime"
)

const DefaultPrefix = "studysync:realtime"

type redisBus struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

// NewRedisBus publishes each room on its own redis channel under prefix.
// The client is shared with the rate limiter and owned by the caller.
func NewRedisBus(log *logger.Logger, rdb *goredis.Client, prefix string) (Bus, error) {
	if log == nil {
		return nil, errors.New("logger required")
	}
	if rdb == nil {
		return nil, errors.New("redis client required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &redisBus{
		log:    log.With("service", "RoomPresenceBus"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if b == nil || b.rdb == nil {
		return errors.New("redis bus not initialized")
	}
	if strings.TrimSpace(msg.Channel) == "" {
		return errors.New("message channel required")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, topic(b.prefix, msg.Channel), raw).Err()
}

func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if b == nil || b.rdb == nil {
		return errors.New("redis bus not initialized")
	}
	if onMsg == nil {
		return errors.New("onMsg callback required")
	}

	sub := b.rdb.PSubscribe(ctx, topic(b.prefix, "*"))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis psubscribe: %w", err)
	}
	b.log.Info("presence forwarder started", "pattern", topic(b.prefix, "*"))

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				channel, ok := hubChannel(b.prefix, m.Channel)
				if !ok {
					continue
				}
				var msg realtime.SSEMessage
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					b.log.Warn("bad presence payload", "channel", m.Channel, "error", err)
					continue
				}
				// the redis channel is authoritative for routing
				msg.Channel = channel
				onMsg(msg)
			}
		}
	}()
	return nil
}

// Close is a no-op; the redis client outlives the bus.
func (b *redisBus) Close() error { return nil }
