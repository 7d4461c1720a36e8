package notify

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/comitanigiacomo/neko-engine/internal/platform/logger"
)

// ChannelPrefix is followed by the user id.
const ChannelPrefix = "notifications:"

func Channel(userID string) string {
	return ChannelPrefix + userID
}

// RedisPublisher publishes notifications as JSON on a per-user channel.
type RedisPublisher struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewRedisPublisher(rdb *goredis.Client, log *logger.Logger) *RedisPublisher {
	return &RedisPublisher{
		log: log.With("service", "RedisPublisher"),
		rdb: rdb,
	}
}

func (p *RedisPublisher) Notify(ctx context.Context, msg domain.Notification) error {
	if p == nil || p.rdb == nil {
		return fmt.Errorf("notify: redis publisher not initialized")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("notify: encode: %w", err)
	}
	if err := p.rdb.Publish(ctx, Channel(msg.UserID), raw).Err(); err != nil {
		return fmt.Errorf("notify: publish: %w", err)
	}
	return nil
}

// Subscribe forwards the user's notifications to onMsg until ctx ends.
func (p *RedisPublisher) Subscribe(ctx context.Context, userID string, onMsg func(domain.Notification)) error {
	if onMsg == nil {
		return fmt.Errorf("notify: onMsg callback required")
	}

	sub := p.rdb.Subscribe(ctx, Channel(userID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("notify: subscribe: %w", err)
	}

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
				var msg domain.Notification
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					p.log.Warn("bad notification payload", "error", err)
					continue
				}
				onMsg(msg)
			}
		}
	}()

	return nil
}
