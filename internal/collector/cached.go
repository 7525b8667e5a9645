package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"StockDashboard/internal/model"

	goredis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CachedFetcher is a read-through Redis cache in front of another Fetcher.
// Redis failures are logged and bypassed; they never fail a fetch.
type CachedFetcher struct {
	inner  Fetcher
	client *goredis.Client
	ttl    time.Duration
	log    *zap.Logger

	// OnHit and OnMiss, if set, are called on every lookup.
	OnHit  func()
	OnMiss func()
}

// NewRedisClient connects to Redis and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// NewCachedFetcher wraps inner with a Redis cache.
func NewCachedFetcher(inner Fetcher, client *goredis.Client, ttl time.Duration, log *zap.Logger) *CachedFetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedFetcher{inner: inner, client: client, ttl: ttl, log: log}
}

func (f *CachedFetcher) Name() string { return f.inner.Name() }

// CacheKey identifies one source/code/range series.
func CacheKey(source, code string, start, end time.Time) string {
	return fmt.Sprintf("prices:%s:%s:%s:%s", source, code, DateKey(start), DateKey(end))
}

func (f *CachedFetcher) FetchDaily(ctx context.Context, c model.Company, start, end time.Time) ([]model.OHLCV, error) {
	key := CacheKey(f.inner.Name(), c.Code, start, end)

	raw, err := f.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var bars []model.OHLCV
		jerr := json.Unmarshal(raw, &bars)
		if jerr == nil {
			if f.OnHit != nil {
				f.OnHit()
			}
			return bars, nil
		}
		f.log.Warn("discarding corrupt cached series", zap.String("key", key), zap.Error(jerr))
	case errors.Is(err, goredis.Nil):
	default:
		f.log.Warn("redis get failed, bypassing cache", zap.String("key", key), zap.Error(err))
	}
	if f.OnMiss != nil {
		f.OnMiss()
	}

	bars, err := f.inner.FetchDaily(ctx, c, start, end)
	if err != nil || len(bars) == 0 {
		return bars, err
	}

	payload, err := json.Marshal(bars)
	if err != nil {
		f.log.Warn("encode series for cache", zap.Error(err))
		return bars, nil
	}
	if err := f.client.Set(ctx, key, payload, f.ttl).Err(); err != nil {
		f.log.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
	return bars, nil
}
