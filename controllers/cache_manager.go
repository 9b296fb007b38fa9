package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-backend/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	ProductCachePrefix     = "product:detail:"
	ProductListCachePrefix = "products:v:"
	CacheVersionKey        = "products:version"

	DefaultCacheTTL = 5 * time.Minute
)

// CacheManager handles Redis caching for the product catalog. List caches
// are versioned: any catalog write bumps the version, orphaning every key
// built under the old one.
type CacheManager struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCacheManager(rdb *redis.Client) *CacheManager {
	return &CacheManager{
		redis: rdb,
		ttl:   DefaultCacheTTL,
	}
}

// GetProductList retrieves a cached catalog page.
func (cm *CacheManager) GetProductList(ctx context.Context, page, limit int, filters *models.ProductFilters) (map[string]interface{}, bool) {
	version, err := cm.getCacheVersion(ctx)
	if err != nil || version == 0 {
		return nil, false
	}

	cacheKey := cm.listCacheKey(version, page, limit, filters)
	cachedData, err := cm.redis.Get(ctx, cacheKey).Result()
	if err != nil {
		return nil, false
	}

	var response map[string]interface{}
	if err := json.Unmarshal([]byte(cachedData), &response); err != nil {
		zap.L().Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, false
	}

	return response, true
}

// SetProductListAsync caches a catalog page without blocking the request.
func (cm *CacheManager) SetProductListAsync(page, limit int, filters *models.ProductFilters, response map[string]interface{}) {
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version, err := cm.getCacheVersion(bgCtx)
		if err != nil || version == 0 {
			return
		}

		jsonBytes, err := json.Marshal(response)
		if err != nil {
			zap.L().Warn("Failed to marshal product list for cache", zap.Error(err))
			return
		}

		cacheKey := cm.listCacheKey(version, page, limit, filters)
		if err := cm.redis.Set(bgCtx, cacheKey, jsonBytes, cm.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache product list", zap.Error(err))
		}
	}()
}

// GetProduct retrieves a cached product detail document.
func (cm *CacheManager) GetProduct(ctx context.Context, productID string) (*models.Product, bool) {
	cachedData, err := cm.redis.Get(ctx, ProductCachePrefix+productID).Result()
	if err != nil {
		return nil, false
	}

	var product models.Product
	if err := json.Unmarshal([]byte(cachedData), &product); err != nil {
		zap.L().Warn("Failed to unmarshal cached product", zap.Error(err), zap.String("product_id", productID))
		return nil, false
	}

	return &product, true
}

// SetProductAsync caches a single product without blocking the request.
func (cm *CacheManager) SetProductAsync(productID string, product *models.Product) {
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		productJSON, err := json.Marshal(product)
		if err != nil {
			zap.L().Warn("Failed to marshal product for cache", zap.Error(err), zap.String("product_id", productID))
			return
		}

		if err := cm.redis.Set(bgCtx, ProductCachePrefix+productID, productJSON, cm.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache product", zap.Error(err), zap.String("product_id", productID))
		}
	}()
}

// Invalidate orphans all list caches by bumping the version counter.
func (cm *CacheManager) Invalidate(ctx context.Context) error {
	newVersion, err := cm.redis.Incr(ctx, CacheVersionKey).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	zap.L().Info("Product cache invalidated", zap.Int64("new_version", newVersion))
	return nil
}

// InvalidateProduct invalidates the list caches and the product's own
// detail cache.
func (cm *CacheManager) InvalidateProduct(ctx context.Context, productID string) {
	if err := cm.Invalidate(ctx); err != nil {
		zap.L().Error("Failed to invalidate product caches", zap.Error(err), zap.String("product_id", productID))
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := cm.redis.Del(bgCtx, ProductCachePrefix+productID).Err(); err != nil {
			zap.L().Warn("Failed to delete product cache", zap.Error(err), zap.String("product_id", productID))
		}
	}()
}

func (cm *CacheManager) getCacheVersion(ctx context.Context) (int64, error) {
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		ver, err := cm.redis.Get(ctx, CacheVersionKey).Int64()
		if err == nil && ver > 0 {
			return ver, nil
		}

		if err == redis.Nil {
			if err := cm.redis.Set(ctx, CacheVersionKey, 1, 0).Err(); err == nil {
				return 1, nil
			}
		}

		if i < maxRetries-1 {
			time.Sleep(50 * time.Millisecond)
		}
	}

	return 0, fmt.Errorf("failed to get cache version after %d retries", maxRetries)
}

func (cm *CacheManager) listCacheKey(version int64, page, limit int, filters *models.ProductFilters) string {
	featured := ""
	if filters.Featured != nil {
		featured = fmt.Sprintf("%t", *filters.Featured)
	}
	return fmt.Sprintf("%s%d:p:%d:l:%d:c:%s:f:%s",
		ProductListCachePrefix, version, page, limit, filters.Category, featured)
}
