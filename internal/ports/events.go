package ports

import "context"

// EventPublisher emits payload lifecycle events. It is adapter-neutral so the
// application stays independent of delivery specifics.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte) error
}
