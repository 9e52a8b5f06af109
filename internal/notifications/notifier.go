// Package notifications publishes domain events to Redis pub/sub. Publishing is
// best-effort: failures are logged and counted, never returned to the caller.
package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/austinzumbro/nosql-social-api/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Channel carries every domain event.
const Channel = "social:events"

// Event types.
const (
	EventUserCreated     = "user.created"
	EventUserUpdated     = "user.updated"
	EventUserDeleted     = "user.deleted"
	EventThoughtCreated  = "thought.created"
	EventThoughtUpdated  = "thought.updated"
	EventThoughtDeleted  = "thought.deleted"
	EventReactionAdded   = "reaction.added"
	EventReactionRemoved = "reaction.removed"
	EventFriendAdded     = "friend.added"
	EventFriendRemoved   = "friend.removed"
)

// Event is the JSON payload published on Channel.
type Event struct {
	Type       string         `json:"type"`
	UserID     uint           `json:"userId,omitempty"`
	ThoughtID  uint           `json:"thoughtId,omitempty"`
	FriendID   uint           `json:"friendId,omitempty"`
	ReactionID string         `json:"reactionId,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	At         time.Time      `json:"at"`
}

// Publisher is what services depend on.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client turns Publish into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish sends event to Channel.
func (n *Notifier) Publish(ctx context.Context, event Event) {
	if n == nil || n.rdb == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		observability.EventsPublished.WithLabelValues(event.Type, "error").Inc()
		slog.ErrorContext(ctx, "marshal event", slog.String("type", event.Type), slog.String("error", err.Error()))
		return
	}
	if err := n.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		observability.EventsPublished.WithLabelValues(event.Type, "error").Inc()
		slog.WarnContext(ctx, "publish event failed", slog.String("type", event.Type), slog.String("error", err.Error()))
		return
	}
	observability.EventsPublished.WithLabelValues(event.Type, "ok").Inc()
}

// Subscribe delivers decoded events to onEvent until ctx is cancelled.
func (n *Notifier) Subscribe(ctx context.Context, onEvent func(Event)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, Channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					slog.Warn("dropping malformed event", slog.String("error", err.Error()))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("panic in event subscriber", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onEvent(ev)
				}()
			}
		}
	}()
	return nil
}

// LogEvents returns a subscriber that writes every received event to logger.
func LogEvents(logger *slog.Logger) func(Event) {
	return func(ev Event) {
		attrs := []any{
			slog.String("type", ev.Type),
			slog.Time("at", ev.At),
		}
		if ev.UserID != 0 {
			attrs = append(attrs, slog.Uint64("user_id", uint64(ev.UserID)))
		}
		if ev.ThoughtID != 0 {
			attrs = append(attrs, slog.Uint64("thought_id", uint64(ev.ThoughtID)))
		}
		if ev.FriendID != 0 {
			attrs = append(attrs, slog.Uint64("friend_id", uint64(ev.FriendID)))
		}
		if ev.ReactionID != "" {
			attrs = append(attrs, slog.String("reaction_id", ev.ReactionID))
		}
		logger.Info("domain event", attrs...)
	}
}
