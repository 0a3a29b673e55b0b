// Package notify delivers fire-and-forget toast messages to the UI shell.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Variant styles the toast.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a single toast message.
type Notification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     Variant   `json:"variant,omitempty"`
	Reference   string    `json:"reference,omitempty"`
	SentAt      time.Time `json:"sent_at"`
}

// Notifier accepts notifications without reporting delivery outcome.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (l LogNotifier) Notify(ctx context.Context, n Notification) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if n.Variant == VariantDestructive {
		level = slog.LevelWarn
	}
	logger.LogAttrs(ctx, level, "notification",
		slog.String("title", n.Title),
		slog.String("description", n.Description),
		slog.String("variant", string(n.Variant)),
		slog.String("reference", n.Reference),
	)
}

// Multi fans a notification out to several notifiers in order.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, target := range m {
		if target != nil {
			target.Notify(ctx, n)
		}
	}
}

// Discard drops every notification.
type Discard struct{}

// Notify implements Notifier.
func (Discard) Notify(context.Context, Notification) {}
