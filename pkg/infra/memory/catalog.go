package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/sokoide/workshop/software/canteen/pkg/domain"
)

// Catalog is an in-process CatalogStore seeded from a static list.
type Catalog struct {
	mu    sync.RWMutex
	items map[domain.ItemID]domain.CatalogItem
	order []domain.ItemID
}

func NewCatalog(items []domain.CatalogItem) *Catalog {
	c := &Catalog{items: make(map[domain.ItemID]domain.CatalogItem, len(items))}
	for _, it := range items {
		if _, dup := c.items[it.ID]; !dup {
			c.order = append(c.order, it.ID)
		}
		c.items[it.ID] = it
	}
	return c
}

func (c *Catalog) Get(ctx context.Context, id domain.ItemID) (domain.CatalogItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.items[id]
	if !ok {
		return domain.CatalogItem{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return it, nil
}

func (c *Catalog) List(ctx context.Context) ([]domain.CatalogItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.CatalogItem, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out, nil
}

func (c *Catalog) DecrementStock(ctx context.Context, id domain.ItemID, amount int) error {
	return c.DecrementStocks(ctx, []domain.StockChange{{ItemID: id, Amount: amount}})
}

func (c *Catalog) DecrementStocks(ctx context.Context, changes []domain.StockChange) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Lines naming the same item must be checked against their sum.
	want := make(map[domain.ItemID]int, len(changes))
	for _, ch := range changes {
		if ch.Amount < 0 {
			return fmt.Errorf("%w: %d for %s", domain.ErrInvalidQuantity, ch.Amount, ch.ItemID)
		}
		it, ok := c.items[ch.ItemID]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, ch.ItemID)
		}
		want[ch.ItemID] += ch.Amount
		if want[ch.ItemID] > it.Stock {
			return fmt.Errorf("%w: %s available %d, requested %d", domain.ErrInsufficientStock, ch.ItemID, it.Stock, want[ch.ItemID])
		}
	}
	for id, amount := range want {
		it := c.items[id]
		it.Stock -= amount
		c.items[id] = it
	}
	return nil
}

// SetStock overwrites the stock of id. It models a change made outside the
// ordering flow, such as a kitchen recount.
func (c *Catalog) SetStock(id domain.ItemID, stock int) error {
	if stock < 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, stock)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	it.Stock = stock
	c.items[id] = it
	return nil
}
