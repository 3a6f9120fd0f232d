package events

import (
	"context"
	"errors"

	"github.com/bidcraft/engine/internal/auction/domain"
)

// Fanout publishes each event to every configured publisher. A failing
// sink does not stop delivery to the others; errors are joined.
type Fanout struct {
	publishers []domain.EventPublisher
}

func NewFanout(publishers ...domain.EventPublisher) *Fanout {
	return &Fanout{publishers: publishers}
}

func (f *Fanout) Publish(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
