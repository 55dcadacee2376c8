package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/sokoide/workshop/software/canteen/pkg/domain"
)

// History keeps resolved orders for the lifetime of the process.
type History struct {
	mu     sync.RWMutex
	orders []domain.Order
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Append(ctx context.Context, order domain.Order) error {
	if !order.Status.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", domain.ErrOrderNotTerminal, order.ID, order.Status)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.orders = append(h.orders, order.Clone())
	return nil
}

func (h *History) List(ctx context.Context) ([]domain.Order, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]domain.Order, 0, len(h.orders))
	for _, o := range h.orders {
		out = append(out, o.Clone())
	}
	return out, nil
}
