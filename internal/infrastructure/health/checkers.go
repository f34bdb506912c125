package health

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/avatarctic/ping-notifier/internal/core/ports"
)

// Pinger is satisfied by *db.Database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// dbHealthChecker wraps the database for health checks.
type dbHealthChecker struct{ db Pinger }

func (d *dbHealthChecker) Name() string                    { return "database" }
func (d *dbHealthChecker) Check(ctx context.Context) error { return d.db.Ping(ctx) }

// redisHealthChecker wraps the redis client for health checks.
type redisHealthChecker struct{ client redis.Cmdable }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// discordHealthChecker lists guild channels. The list is cached, so a healthy
// process only reaches Discord once per cache TTL.
type discordHealthChecker struct{ client ports.ChannelClient }

func (d *discordHealthChecker) Name() string { return "discord" }
func (d *discordHealthChecker) Check(ctx context.Context) error {
	_, err := d.client.ListChannels(ctx)
	return err
}

// NewDBHealthChecker creates a health checker for the database.
func NewDBHealthChecker(db Pinger) ports.HealthChecker { return &dbHealthChecker{db: db} }

// NewRedisHealthChecker creates a health checker for Redis.
func NewRedisHealthChecker(client redis.Cmdable) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}

// NewDiscordHealthChecker creates a health checker for the Discord API.
func NewDiscordHealthChecker(client ports.ChannelClient) ports.HealthChecker {
	return &discordHealthChecker{client: client}
}
