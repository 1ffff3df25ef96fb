package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-redis/redis/v8"

	"github.com/libreriarexy/libreriarexy/internal/entity"
	"github.com/libreriarexy/libreriarexy/internal/repository"
)

// CatalogService serves product read views with an optional redis
// read-through cache. Mutations elsewhere invalidate the cache explicitly.
type CatalogService struct {
	store repository.Store
	rdb   *redis.Client
}

func NewCatalogService(store repository.Store, rdb *redis.Client) *CatalogService {
	return &CatalogService{store: store, rdb: rdb}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]entity.Product, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, productsCacheKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			logger.Error().Err(err).Msg("product cache read failed")
		}
		if cached != "" {
			var products []entity.Product
			if err := json.Unmarshal([]byte(cached), &products); err == nil {
				return products, nil
			}
		}
	}

	products, err := s.store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(products); err == nil {
			if err := s.rdb.Set(ctx, productsCacheKey, raw, 0).Err(); err != nil {
				logger.Error().Err(err).Msg("product cache write failed")
			}
		}
	}
	return products, nil
}

// ListActive returns the catalog as shoppers see it: inactive products are
// hidden.
func (s *CatalogService) ListActive(ctx context.Context) ([]entity.Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Product, 0, len(products))
	for _, p := range products {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	return s.store.GetProduct(ctx, id)
}
