package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultChannel is the pub/sub channel toasts are published on.
	DefaultChannel = "laundryconnect:notifications"
	recentSuffix   = ":recent"
	recentLimit    = 50
)

// RedisNotifier publishes toasts for the UI shell and keeps a short history list.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
	timeout time.Duration
}

// NewRedisNotifier wires a go-redis client. An empty channel uses DefaultChannel.
func NewRedisNotifier(client *redis.Client, channel string, logger *slog.Logger) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisNotifier{client: client, channel: channel, logger: logger, timeout: 2 * time.Second}
}

// Notify implements Notifier. Delivery failures are logged and otherwise ignored.
func (r *RedisNotifier) Notify(ctx context.Context, n Notification) {
	if r == nil || r.client == nil {
		return
	}
	if n.SentAt.IsZero() {
		n.SentAt = time.Now().UTC()
	}
	payload, err := json.Marshal(n)
	if err != nil {
		r.logger.Warn("encode notification", slog.Any("error", err))
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	pipe := r.client.Pipeline()
	pipe.LPush(ctx, r.channel+recentSuffix, payload)
	pipe.LTrim(ctx, r.channel+recentSuffix, 0, recentLimit-1)
	pipe.Publish(ctx, r.channel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warn("publish notification", slog.String("channel", r.channel), slog.Any("error", err))
	}
}

// Recent returns up to limit notifications, newest first.
func (r *RedisNotifier) Recent(ctx context.Context, limit int) ([]Notification, error) {
	if r == nil || r.client == nil {
		return nil, nil
	}
	if limit <= 0 || limit > recentLimit {
		limit = recentLimit
	}
	raw, err := r.client.LRange(ctx, r.channel+recentSuffix, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Notification, 0, len(raw))
	for _, item := range raw {
		var n Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			r.logger.Warn("decode notification", slog.Any("error", err))
			continue
		}
		out = append(out, n)
	}
	return out, nil
}
