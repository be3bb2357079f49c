// Package events publishes order and delivery notifications.
package events

import (
	"context"
	"errors"

	"bazaar/internal/model"

	"github.com/rs/zerolog"
)

// Publisher delivers an event to interested parties. Publishing is best
// effort: callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, event model.Event) error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, model.Event) error { return nil }

type fanout struct {
	publishers []Publisher
	logger     zerolog.Logger
}

// Fanout returns a Publisher that forwards each event to every publisher.
func Fanout(logger zerolog.Logger, publishers ...Publisher) Publisher {
	return &fanout{
		publishers: publishers,
		logger:     logger.With().Str("component", "event-fanout").Logger(),
	}
}

func (f *fanout) Publish(ctx context.Context, event model.Event) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, event); err != nil {
			f.logger.Warn().
				Err(err).
				Str("type", event.Type).
				Str("order_id", event.OrderID).
				Msg("event publish failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
