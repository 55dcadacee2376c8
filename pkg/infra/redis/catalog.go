package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/sokoide/workshop/software/canteen/pkg/domain"
)

// decrementScript checks every item before touching any of them, so a batch
// either fully applies or leaves all stock as it was.
// KEYS are item hashes, ARGV the matching amounts.
// Returns {0, 0} on success, {1, i} if KEYS[i] is missing, {2, i} if
// KEYS[i] has too little stock.
const decrementScript = `
for i = 1, #KEYS do
  if redis.call('EXISTS', KEYS[i]) == 0 then
    return {1, i}
  end
  local stock = tonumber(redis.call('HGET', KEYS[i], 'stock') or '0')
  if stock < tonumber(ARGV[i]) then
    return {2, i}
  end
end
for i = 1, #KEYS do
  redis.call('HINCRBY', KEYS[i], 'stock', -tonumber(ARGV[i]))
end
return {0, 0}
`

const (
	decrementOK           = 0
	decrementMissing      = 1
	decrementInsufficient = 2
)

// RedisCatalogRepository keeps one hash per item at <prefix>:item:<id> and
// the menu order in the list <prefix>:items.
type RedisCatalogRepository struct {
	client *redis.Client
	prefix string
	group  singleflight.Group
}

func NewRedisCatalogRepository(client *redis.Client, prefix string) *RedisCatalogRepository {
	return &RedisCatalogRepository{client: client, prefix: prefix}
}

func (r *RedisCatalogRepository) itemsKey() string {
	return r.prefix + ":items"
}

func (r *RedisCatalogRepository) itemKey(id domain.ItemID) string {
	return r.prefix + ":item:" + string(id)
}

// Seed writes items when the catalog is empty. An existing catalog is left
// alone so restarts keep live stock.
func (r *RedisCatalogRepository) Seed(ctx context.Context, items []domain.CatalogItem) error {
	n, err := r.client.Exists(ctx, r.itemsKey()).Result()
	if err != nil {
		return fmt.Errorf("could not check catalog: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, it := range items {
		if err := r.client.HSet(ctx, r.itemKey(it.ID), itemFields(it)...).Err(); err != nil {
			return fmt.Errorf("could not seed item %s: %w", it.ID, err)
		}
		if err := r.client.RPush(ctx, r.itemsKey(), string(it.ID)).Err(); err != nil {
			return fmt.Errorf("could not index item %s: %w", it.ID, err)
		}
	}
	return nil
}

func (r *RedisCatalogRepository) Get(ctx context.Context, id domain.ItemID) (domain.CatalogItem, error) {
	fields, err := r.client.HGetAll(ctx, r.itemKey(id)).Result()
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("could not read item %s: %w", id, err)
	}
	if len(fields) == 0 {
		return domain.CatalogItem{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return parseItem(id, fields)
}

// List returns the menu in seed order. Concurrent callers share one round of
// reads, which ignores the cancellation of whichever caller started it.
func (r *RedisCatalogRepository) List(ctx context.Context) ([]domain.CatalogItem, error) {
	shared := context.WithoutCancel(ctx)
	v, err, _ := r.group.Do("list", func() (interface{}, error) {
		ctx := shared
		ids, err := r.client.LRange(ctx, r.itemsKey(), 0, -1).Result()
		if err != nil {
			return nil, fmt.Errorf("could not list catalog: %w", err)
		}
		items := make([]domain.CatalogItem, 0, len(ids))
		for _, id := range ids {
			it, err := r.Get(ctx, domain.ItemID(id))
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			items = append(items, it)
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	items := v.([]domain.CatalogItem)
	out := make([]domain.CatalogItem, len(items))
	copy(out, items)
	return out, nil
}

func (r *RedisCatalogRepository) DecrementStock(ctx context.Context, id domain.ItemID, amount int) error {
	return r.DecrementStocks(ctx, []domain.StockChange{{ItemID: id, Amount: amount}})
}

func (r *RedisCatalogRepository) DecrementStocks(ctx context.Context, changes []domain.StockChange) error {
	merged, err := mergeChanges(changes)
	if err != nil {
		return err
	}
	if len(merged) == 0 {
		return nil
	}

	keys := make([]string, len(merged))
	args := make([]interface{}, len(merged))
	for i, c := range merged {
		keys[i] = r.itemKey(c.ItemID)
		args[i] = c.Amount
	}

	res, err := r.client.Eval(ctx, decrementScript, keys, args...).Int64Slice()
	if err != nil {
		return fmt.Errorf("could not decrement stock: %w", err)
	}
	if len(res) != 2 {
		return fmt.Errorf("unexpected decrement reply %v", res)
	}
	switch res[0] {
	case decrementOK:
		return nil
	case decrementMissing:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, merged[res[1]-1].ItemID)
	case decrementInsufficient:
		return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, merged[res[1]-1].ItemID)
	default:
		return fmt.Errorf("unexpected decrement reply %v", res)
	}
}

// mergeChanges sums repeated items, keeping first-seen order. Zero amounts
// are kept so unknown items still fail with ErrNotFound.
func mergeChanges(changes []domain.StockChange) ([]domain.StockChange, error) {
	var out []domain.StockChange
	index := make(map[domain.ItemID]int)
	for _, c := range changes {
		if c.Amount < 0 {
			return nil, fmt.Errorf("%w: %d for %s", domain.ErrInvalidQuantity, c.Amount, c.ItemID)
		}
		if i, ok := index[c.ItemID]; ok {
			out[i].Amount += c.Amount
			continue
		}
		index[c.ItemID] = len(out)
		out = append(out, c)
	}
	return out, nil
}

func itemFields(it domain.CatalogItem) []interface{} {
	return []interface{}{
		"name", it.Product.Name,
		"description", it.Product.Description,
		"image", it.Product.ImageRef,
		"category", it.Product.Category,
		"rating", strconv.FormatFloat(it.Product.Rating, 'f', -1, 64),
		"price", strconv.FormatInt(it.Price, 10),
		"stock", strconv.Itoa(it.Stock),
	}
}

func parseItem(id domain.ItemID, f map[string]string) (domain.CatalogItem, error) {
	price, err := strconv.ParseInt(f["price"], 10, 64)
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("item %s has bad price %q: %w", id, f["price"], err)
	}
	stock, err := strconv.Atoi(f["stock"])
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("item %s has bad stock %q: %w", id, f["stock"], err)
	}
	var rating float64
	if s := f["rating"]; s != "" {
		if rating, err = strconv.ParseFloat(s, 64); err != nil {
			return domain.CatalogItem{}, fmt.Errorf("item %s has bad rating %q: %w", id, s, err)
		}
	}
	return domain.CatalogItem{
		ID:    id,
		Price: price,
		Stock: stock,
		Product: domain.Product{
			Name:        f["name"],
			Description: f["description"],
			ImageRef:    f["image"],
			Category:    f["category"],
			Rating:      rating,
		},
	}, nil
}
