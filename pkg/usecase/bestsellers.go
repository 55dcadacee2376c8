package usecase

import (
	"context"
	"errors"

	"github.com/sokoide/workshop/software/canteen/pkg/domain"
)

// Bestsellers ranks menu items by units sold. It listens for completed
// orders, so it is wired in as an OrderEventPublisher.
type Bestsellers struct {
	ranking domain.SalesRanking
	catalog domain.CatalogStore
}

func NewBestsellers(ranking domain.SalesRanking, catalog domain.CatalogStore) *Bestsellers {
	return &Bestsellers{ranking: ranking, catalog: catalog}
}

func (b *Bestsellers) Publish(ctx context.Context, event domain.OrderEvent) error {
	if event.Order.Status != domain.OrderStatusCompleted {
		return nil
	}
	var errs []error
	for _, l := range event.Order.Lines {
		if err := b.ranking.RecordSale(ctx, l.ItemID, l.Quantity); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Top returns up to n items still on the menu, best first. Items dropped
// from the catalog are skipped and ranks are renumbered.
func (b *Bestsellers) Top(ctx context.Context, n int64) ([]domain.ItemSales, error) {
	zs, err := b.ranking.TopSellers(ctx, n)
	if err != nil {
		return nil, err
	}

	result := make([]domain.ItemSales, 0, len(zs))
	rank := int64(1)
	for _, z := range zs {
		if _, err := b.catalog.Get(ctx, z.ItemID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		z.Rank = rank
		result = append(result, z)
		rank++
	}
	return result, nil
}
