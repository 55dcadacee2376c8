package usecase

import (
	"context"
	"errors"

	"github.com/sokoide/workshop/software/canteen/pkg/domain"
)

// Publishers fans an event out to every sink. All sinks are tried; their
// errors are joined.
type Publishers []domain.OrderEventPublisher

func (ps Publishers) Publish(ctx context.Context, event domain.OrderEvent) error {
	var errs []error
	for _, p := range ps {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
