package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yashrajoria/storefront/models"
	"go.uber.org/zap"
)

const (
	ProductListCachePrefix = "products:v:"
	CacheVersionKey        = "products:version"

	DefaultCacheTTL = 5 * time.Minute
)

// CacheManager caches the /allproducts response in Redis. Writes bump a
// version counter instead of deleting keys, so stale lists simply expire.
// A nil *CacheManager or one without a client is a permanent miss.
type CacheManager struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCacheManager(client *redis.Client, ttl time.Duration, logger *zap.Logger) *CacheManager {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CacheManager{redis: client, ttl: ttl, logger: logger}
}

func (cm *CacheManager) enabled() bool {
	return cm != nil && cm.redis != nil
}

// noVersion marks a miss on which the version itself could not be read, so
// nothing may be written back.
const noVersion int64 = -1

// GetProductList returns the cached catalog for the current version. On a
// miss it also returns the version it looked under; the caller must write the
// fresh list back under that version so a concurrent Invalidate wins.
func (cm *CacheManager) GetProductList(ctx context.Context) ([]models.Product, int64, bool) {
	if !cm.enabled() {
		return nil, noVersion, false
	}
	version, err := cm.getCacheVersion(ctx)
	if err != nil {
		return nil, noVersion, false
	}

	cached, err := cm.redis.Get(ctx, listCacheKey(version)).Bytes()
	if err != nil {
		return nil, version, false
	}

	var products []models.Product
	if err := json.Unmarshal(cached, &products); err != nil {
		cm.logger.Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, version, false
	}
	return products, version, true
}

// SetProductListAsync caches the catalog in the background under version,
// the value GetProductList missed on before the list was read.
func (cm *CacheManager) SetProductListAsync(version int64, products []models.Product) {
	if !cm.enabled() || version == noVersion {
		return
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		cm.setProductList(bgCtx, version, products)
	}()
}

func (cm *CacheManager) setProductList(ctx context.Context, version int64, products []models.Product) {
	payload, err := json.Marshal(products)
	if err != nil {
		cm.logger.Warn("Failed to marshal product list for cache", zap.Error(err))
		return
	}
	if err := cm.redis.Set(ctx, listCacheKey(version), payload, cm.ttl).Err(); err != nil {
		cm.logger.Warn("Failed to cache product list", zap.Error(err))
	}
}

// Invalidate bumps the version so the next read misses.
func (cm *CacheManager) Invalidate(ctx context.Context) {
	if !cm.enabled() {
		return
	}
	newVersion, err := cm.redis.Incr(ctx, CacheVersionKey).Result()
	if err != nil {
		cm.logger.Error("Failed to invalidate product cache", zap.Error(err))
		return
	}
	cm.logger.Debug("Product cache invalidated", zap.Int64("new_version", newVersion))
}

func (cm *CacheManager) getCacheVersion(ctx context.Context) (int64, error) {
	version, err := cm.redis.Get(ctx, CacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

func listCacheKey(version int64) string {
	return fmt.Sprintf("%s%d:all", ProductListCachePrefix, version)
}
