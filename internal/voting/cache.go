package voting

import (
	"context"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

const (
	// DefaultStatsCacheTTL bounds how long cached stats survive without an invalidation.
	DefaultStatsCacheTTL = 5 * time.Minute

	// StatsKeyPrefix namespaces Redis keys storing vote stats.
	// Keys are formatted as "vote_stats:{reportID}".
	StatsKeyPrefix = "vote_stats:"

	// StatsGenerationKeyPrefix namespaces the per-report invalidation counters.
	// Keys are formatted as "vote_stats_gen:{reportID}".
	StatsGenerationKeyPrefix = "vote_stats_gen:"

	// generationTTL must outlive any single stats load.
	generationTTL = time.Hour
)

// fillScript stores stats only while the report's generation still matches the
// one read before loading.
var fillScript = rueidis.NewLuaScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'EX', ARGV[3])
return 1
`)

// invalidateScript advances the report's generation and drops its cached stats.
var invalidateScript = rueidis.NewLuaScript(`
redis.call('INCR', KEYS[2])
redis.call('EXPIRE', KEYS[2], ARGV[1])
redis.call('DEL', KEYS[1])
return 1
`)

// RedisStatsCache stores vote statistics in Redis.
// Cache failures are logged and treated as misses.
type RedisStatsCache struct {
	client rueidis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStatsCache creates a stats cache backed by the given Redis client.
func NewRedisStatsCache(client rueidis.Client, ttl time.Duration, logger *zap.Logger) *RedisStatsCache {
	if ttl <= 0 {
		ttl = DefaultStatsCacheTTL
	}

	return &RedisStatsCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("stats_cache"),
	}
}

// Get returns the cached stats for a report. On a miss it returns the report's
// current generation, which a following Fill must present.
func (c *RedisStatsCache) Get(ctx context.Context, reportID uuid.UUID) (*types.VoteStats, int64, bool) {
	msgs, err := c.client.Do(ctx,
		c.client.B().Mget().Key(statsKey(reportID), generationKey(reportID)).Build(),
	).ToArray()
	if err != nil || len(msgs) != 2 {
		c.logger.Warn("Failed to get cached vote stats",
			zap.Error(err),
			zap.String("reportID", reportID.String()))
		return nil, -1, false
	}

	var generation int64
	if raw, err := msgs[1].ToString(); err == nil {
		generation, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.logger.Warn("Invalid vote stats generation",
				zap.Error(err),
				zap.String("reportID", reportID.String()))
			return nil, -1, false
		}
	}

	data, err := msgs[0].AsBytes()
	if err != nil {
		return nil, generation, false
	}

	var stats types.VoteStats
	if err := sonic.Unmarshal(data, &stats); err != nil {
		c.logger.Warn("Failed to decode cached vote stats",
			zap.Error(err),
			zap.String("reportID", reportID.String()))
		return nil, generation, false
	}

	return &stats, generation, true
}

// Fill caches stats loaded at the given generation. Stats loaded before the
// report's last invalidation are discarded.
func (c *RedisStatsCache) Fill(ctx context.Context, stats *types.VoteStats, generation int64) {
	if generation < 0 {
		return
	}

	data, err := sonic.Marshal(stats)
	if err != nil {
		c.logger.Warn("Failed to encode vote stats", zap.Error(err))
		return
	}

	stored, err := fillScript.Exec(ctx, c.client,
		[]string{statsKey(stats.ReportID), generationKey(stats.ReportID)},
		[]string{
			strconv.FormatInt(generation, 10),
			string(data),
			strconv.FormatInt(int64(c.ttl/time.Second), 10),
		},
	).AsInt64()
	if err != nil {
		c.logger.Warn("Failed to cache vote stats",
			zap.Error(err),
			zap.String("reportID", stats.ReportID.String()))
		return
	}

	if stored == 0 {
		c.logger.Debug("Discarded vote stats loaded before an invalidation",
			zap.String("reportID", stats.ReportID.String()),
			zap.Int64("generation", generation))
	}
}

// Invalidate removes the cached stats of a report and rejects fills of loads
// that started before this call.
func (c *RedisStatsCache) Invalidate(ctx context.Context, reportID uuid.UUID) {
	err := invalidateScript.Exec(ctx, c.client,
		[]string{statsKey(reportID), generationKey(reportID)},
		[]string{strconv.FormatInt(int64(generationTTL/time.Second), 10)},
	).Error()
	if err != nil {
		c.logger.Warn("Failed to invalidate vote stats",
			zap.Error(err),
			zap.String("reportID", reportID.String()))
	}
}

func statsKey(reportID uuid.UUID) string {
	return StatsKeyPrefix + reportID.String()
}

func generationKey(reportID uuid.UUID) string {
	return StatsGenerationKeyPrefix + reportID.String()
}
