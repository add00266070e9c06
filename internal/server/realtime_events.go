package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"hackit/internal/middleware"
	"hackit/internal/notifications"
	"hackit/internal/observability"
)

// realtimePublisher delivers service events to websocket clients. With Redis
// the event goes through the notifier only, since every hub (this one
// included) is subscribed to it; without Redis it is handed to the local hub.
type realtimePublisher struct {
	hub      *notifications.Hub
	notifier *notifications.Notifier
}

func encodeEvent(eventType string, payload map[string]interface{}) (string, bool) {
	eventJSON, err := json.Marshal(map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		middleware.Logger.Error("failed to marshal event", slog.String("type", eventType), slog.String("error", err.Error()))
		return "", false
	}
	return string(eventJSON), true
}

func (p *realtimePublisher) PublishUserEvent(ctx context.Context, userID, eventType string, payload map[string]interface{}) {
	message, ok := encodeEvent(eventType, payload)
	if !ok {
		return
	}
	observability.WebSocketEventsTotal.WithLabelValues(eventType).Inc()
	if p.notifier.Enabled() {
		if err := p.notifier.PublishUser(context.WithoutCancel(ctx), userID, message); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish user event",
				slog.String("type", eventType), slog.String("user_id", userID), slog.String("error", err.Error()))
			p.hub.Broadcast(userID, message)
		}
		return
	}
	p.hub.Broadcast(userID, message)
}

func (p *realtimePublisher) PublishBroadcastEvent(ctx context.Context, eventType string, payload map[string]interface{}) {
	message, ok := encodeEvent(eventType, payload)
	if !ok {
		return
	}
	observability.WebSocketEventsTotal.WithLabelValues(eventType).Inc()
	if p.notifier.Enabled() {
		if err := p.notifier.PublishBroadcast(context.WithoutCancel(ctx), message); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish broadcast event",
				slog.String("type", eventType), slog.String("error", err.Error()))
			p.hub.BroadcastAll(message)
		}
		return
	}
	p.hub.BroadcastAll(message)
}
