package service

import (
	"context"

	"github.com/iliyamo/weather-favourites/internal/queue"
)

// Publisher emits domain events.  Failures are logged by callers and never
// fail the request that produced the event.
type Publisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}
