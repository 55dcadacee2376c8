package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sokoide/workshop/software/canteen/pkg/domain"
)

// Sales is an in-process SalesRanking. Ties rank by item id.
type Sales struct {
	mu   sync.Mutex
	sold map[domain.ItemID]int64
}

func NewSales() *Sales {
	return &Sales{sold: make(map[domain.ItemID]int64)}
}

func (s *Sales) RecordSale(ctx context.Context, id domain.ItemID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sold[id] += int64(quantity)
	return nil
}

func (s *Sales) TopSellers(ctx context.Context, n int64) ([]domain.ItemSales, error) {
	if n < 1 {
		return []domain.ItemSales{}, nil
	}
	s.mu.Lock()
	out := make([]domain.ItemSales, 0, len(s.sold))
	for id, sold := range s.sold {
		out = append(out, domain.ItemSales{ItemID: id, Sold: sold})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Sold == out[j].Sold {
			return out[i].ItemID < out[j].ItemID
		}
		return out[i].Sold > out[j].Sold
	})
	if int64(len(out)) > n {
		out = out[:n]
	}
	for i := range out {
		out[i].Rank = int64(i + 1)
	}
	return out, nil
}
