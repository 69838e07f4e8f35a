package ratelimit

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// fixed window: the first hit in a window sets its expiry
var incrWindow = goredis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {n, ttl}
`)

// Redis is a fixed-window counter shared by every replica.
type Redis struct {
	rdb    *goredis.Client
	prefix string
}

func NewRedis(rdb *goredis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "studysync:ratelimit"
	}
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) Allow(ctx context.Context, key string, p Policy) (Decision, error) {
	if !p.valid() {
		return Decision{Allowed: true}, nil
	}
	if r == nil || r.rdb == nil {
		return Decision{}, fmt.Errorf("redis limiter not initialized")
	}
	res, err := incrWindow.Run(ctx, r.rdb, []string{r.prefix + ":" + key}, p.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, err
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("unexpected limiter reply %v", res)
	}
	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if ttl < 0 {
		ttl = p.Window
	}
	if count > p.Max {
		return Decision{Allowed: false, RetryAfter: ttl}, nil
	}
	return Decision{Allowed: true, Remaining: p.Max - count}, nil
}
