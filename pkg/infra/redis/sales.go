package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/sokoide/workshop/software/canteen/pkg/domain"
)

// RedisSalesRepository ranks items by units sold in a sorted set.
type RedisSalesRepository struct {
	client *redis.Client
	key    string
}

func NewRedisSalesRepository(client *redis.Client, prefix string) *RedisSalesRepository {
	return &RedisSalesRepository{client: client, key: prefix + ":sales"}
}

func (r *RedisSalesRepository) RecordSale(ctx context.Context, id domain.ItemID, quantity int) error {
	return r.client.ZIncrBy(ctx, r.key, float64(quantity), string(id)).Err()
}

func (r *RedisSalesRepository) TopSellers(ctx context.Context, n int64) ([]domain.ItemSales, error) {
	if n < 1 {
		return []domain.ItemSales{}, nil
	}
	zs, err := r.client.ZRevRangeWithScores(ctx, r.key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	result := make([]domain.ItemSales, len(zs))
	for i, z := range zs {
		result[i] = domain.ItemSales{
			ItemID: domain.ItemID(z.Member.(string)),
			Sold:   int64(z.Score),
			Rank:   int64(i + 1),
		}
	}
	return result, nil
}
