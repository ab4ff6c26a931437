package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mercantil/storefront/internal/catalog"
	"github.com/mercantil/storefront/internal/catalog/dto"
	"github.com/mercantil/storefront/internal/catalog/normalize"
	"github.com/mercantil/storefront/internal/model"
	"github.com/mercantil/storefront/pkg/cache"
	"github.com/mercantil/storefront/pkg/logger"
)

const listCacheTTL = 5 * time.Minute

type catalogUseCase struct {
	repo   catalog.Repository
	cache  *cache.RedisClient
	logger logger.Logger
}

func NewCatalogUseCase(repo catalog.Repository, cache *cache.RedisClient, log logger.Logger) catalog.UseCase {
	return &catalogUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

func (uc *catalogUseCase) ListListings(ctx context.Context, filters *dto.ListingFilters) ([]model.CatalogEntry, int, error) {
	cacheKey, keyErr := uc.generateCacheKey(filters)
	if keyErr == nil && uc.cache != nil {
		val, err := uc.cache.Client.Get(ctx, cacheKey).Result()
		if err == nil {
			var cached struct {
				Entries []model.CatalogEntry
				Count   int
			}
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached.Entries, cached.Count, nil
			}
		}
	}

	rows, count, err := uc.repo.FindListings(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	entries := make([]model.CatalogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, normalize.Entry(row))
	}

	if uc.cache != nil && cacheKey != "" {
		cached := struct {
			Entries []model.CatalogEntry
			Count   int
		}{Entries: entries, Count: count}
		if data, err := json.Marshal(cached); err == nil {
			uc.cache.Client.Set(ctx, cacheKey, data, listCacheTTL)
		}
	}

	return entries, count, nil
}

func (uc *catalogUseCase) GetListing(ctx context.Context, id string) (*model.CatalogEntry, error) {
	row, err := uc.repo.FindListingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	entry := normalize.Entry(row)
	return &entry, nil
}

func (uc *catalogUseCase) InvalidateListings(ctx context.Context) error {
	if uc.cache == nil {
		return nil
	}
	keys, err := uc.cache.Client.Keys(ctx, "catalog:list:*").Result()
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		if err := uc.cache.Client.Del(ctx, keys...).Err(); err != nil {
			uc.logger.Error("failed to invalidate listing cache", zap.Error(err))
			return err
		}
	}
	return nil
}

func (uc *catalogUseCase) generateCacheKey(filters *dto.ListingFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("catalog:list:%x", md5.Sum(data)), nil
}
