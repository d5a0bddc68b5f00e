package eventstream

import "context"

// Publisher publishes ingest and turn events to an event stream backend.
type Publisher interface {
	PublishSourceIngested(ctx context.Context, event *SourceIngestedEvent) error
	PublishTurnCompleted(ctx context.Context, event *TurnCompletedEvent) error
	Close() error
}
