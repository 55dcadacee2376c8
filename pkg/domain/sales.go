package domain

import "context"

// ItemSales is an item's position in the bestseller ranking.
type ItemSales struct {
	ItemID ItemID `json:"item_id"`
	Sold   int64  `json:"sold"`
	Rank   int64  `json:"rank"`
}

// SalesRanking accumulates units sold per item.
type SalesRanking interface {
	RecordSale(ctx context.Context, id ItemID, quantity int) error
	// TopSellers returns up to n items, best first. Rank is 1-based.
	TopSellers(ctx context.Context, n int64) ([]ItemSales, error)
}
