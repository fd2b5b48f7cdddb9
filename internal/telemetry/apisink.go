package telemetry

import "context"

// EventCreator is satisfied by the notification API client.
type EventCreator interface {
	CreateEvent(ctx context.Context, eventType string, data map[string]any) error
}

// APISink delivers events through the notification API's events endpoint,
// for deployments without an analytics queue.
type APISink struct {
	Events EventCreator
}

func (s *APISink) SendEvent(ctx context.Context, eventType string, data map[string]any) error {
	return s.Events.CreateEvent(ctx, eventType, data)
}
