package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/latticepricing/internal/lattice/domain"
	"github.com/wyfcoding/latticepricing/pkg/cache"
)

const latestValuationKeyPrefix = "lattice:valuation:latest:"

// ValuationCache 最新估值缓存的 Redis 实现
type ValuationCache struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewValuationCache 创建估值缓存
func NewValuationCache(c *cache.RedisCache, ttl time.Duration) *ValuationCache {
	return &ValuationCache{cache: c, ttl: ttl}
}

// GetLatest 读取标的最新估值，key 不存在时返回 false
func (vc *ValuationCache) GetLatest(ctx context.Context, symbol string) (*domain.ValuationResult, bool, error) {
	var result domain.ValuationResult
	ok, err := vc.cache.GetJSON(ctx, latestValuationKey(symbol), &result)
	if err != nil || !ok {
		return nil, false, err
	}
	return &result, true, nil
}

// SaveLatest 写入标的最新估值
func (vc *ValuationCache) SaveLatest(ctx context.Context, result *domain.ValuationResult) error {
	return vc.cache.SetJSON(ctx, latestValuationKey(result.Symbol), result, vc.ttl)
}

// InvalidateLatest 删除标的最新估值缓存
func (vc *ValuationCache) InvalidateLatest(ctx context.Context, symbol string) error {
	return vc.cache.Delete(ctx, latestValuationKey(symbol))
}

func latestValuationKey(symbol string) string {
	return fmt.Sprintf("%s%s", latestValuationKeyPrefix, symbol)
}
