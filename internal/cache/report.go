package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/config"
	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	reportKeyPrefix = "kpi:report"
	resultKeyPrefix = "kpi:result"
	cachePrefix     = "kpi:"

	defaultReportTTL = 5 * time.Minute
	unlinkBatchSize  = 100
)

// ReportCache stores evaluated reports per window and scope. Any import or
// catalog write invalidates everything.
type ReportCache interface {
	GetReport(ctx context.Context, window domain.Window, scope domain.Scope) (*domain.Report, bool, error)
	SetReport(ctx context.Context, window domain.Window, scope domain.Scope, report *domain.Report) error
	GetResult(ctx context.Context, shortKey string, window domain.Window, scope domain.Scope) (*domain.KpiResult, bool, error)
	SetResult(ctx context.Context, shortKey string, window domain.Window, scope domain.Scope, result *domain.KpiResult) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("report cache unreachable at %s: %w", opts.Addr, err)
	}

	return &redisReportCache{
		client: client,
		ttl:    reportTTL(cfg),
	}, nil
}

// reportTTL bounds how stale a cached report can get between imports.
func reportTTL(cfg config.CacheConfig) time.Duration {
	if cfg.ReportTTLSeconds <= 0 {
		return defaultReportTTL
	}
	return time.Duration(cfg.ReportTTLSeconds) * time.Second
}

// redisOptions prefers REDIS_URL and falls back to host, port and db.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opts, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) GetReport(ctx context.Context, window domain.Window, scope domain.Scope) (*domain.Report, bool, error) {
	var report domain.Report
	ok, err := c.get(ctx, buildKey(reportKeyPrefix, window, scope), &report)
	if !ok || err != nil {
		return nil, false, err
	}
	return &report, true, nil
}

func (c *redisReportCache) SetReport(ctx context.Context, window domain.Window, scope domain.Scope, report *domain.Report) error {
	return c.set(ctx, buildKey(reportKeyPrefix, window, scope), report)
}

func (c *redisReportCache) GetResult(ctx context.Context, shortKey string, window domain.Window, scope domain.Scope) (*domain.KpiResult, bool, error) {
	var result domain.KpiResult
	ok, err := c.get(ctx, buildKey(resultKeyPrefix, window, scope, "kpi="+shortKey), &result)
	if !ok || err != nil {
		return nil, false, err
	}
	return &result, true, nil
}

func (c *redisReportCache) SetResult(ctx context.Context, shortKey string, window domain.Window, scope domain.Scope, result *domain.KpiResult) error {
	return c.set(ctx, buildKey(resultKeyPrefix, window, scope, "kpi="+shortKey), result)
}

// InvalidateAll drops every report and result key. Keys are unlinked in
// batches while the scan runs so a large key space never sits in memory.
func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, cachePrefix+"*", unlinkBatchSize).Iterator()
	batch := make([]string, 0, unlinkBatchSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == unlinkBatchSize {
			if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("unlink report keys: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan report keys: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("unlink report keys: %w", err)
		}
	}
	return nil
}

func (c *redisReportCache) get(ctx context.Context, key string, dest any) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode report cache: %w", err)
	}
	return true, nil
}

func (c *redisReportCache) set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode report cache: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopReportCache) GetReport(ctx context.Context, window domain.Window, scope domain.Scope) (*domain.Report, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetReport(ctx context.Context, window domain.Window, scope domain.Scope, report *domain.Report) error {
	return nil
}

func (n *noopReportCache) GetResult(ctx context.Context, shortKey string, window domain.Window, scope domain.Scope) (*domain.KpiResult, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetResult(ctx context.Context, shortKey string, window domain.Window, scope domain.Scope, result *domain.KpiResult) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildKey(prefix string, window domain.Window, scope domain.Scope, extra ...string) string {
	parts := append([]string{"window=" + window.String(), "scope=" + scope.Key()}, extra...)
	raw := strings.Join(parts, "|")
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}
