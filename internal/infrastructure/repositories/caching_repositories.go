package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/avatarctic/ping-notifier/internal/core/domain/ping"
	"github.com/avatarctic/ping-notifier/internal/core/ports"
)

const (
	templatesAllKey   = "ping_templates:all"
	templateKeyPrefix = "ping_template:id:"
)

func cacheSetSilently(c ports.Cache, ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.Set(ctx, key, b, ttl)
}

func cacheGet[T any](c ports.Cache, ctx context.Context, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	b, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// loadListWithSingleflight returns the cached list under listKey or loads it
// once for all concurrent callers and caches the result.
func loadListWithSingleflight[T any](sf *singleflight.Group, cache ports.Cache, ctx context.Context, listKey string, ttl time.Duration, loader func() ([]T, error)) ([]T, error) {
	if v, ok := cacheGet[[]T](cache, ctx, listKey); ok {
		return *v, nil
	}
	res, err, _ := sf.Do(listKey, func() (any, error) {
		if v, ok := cacheGet[[]T](cache, ctx, listKey); ok {
			return *v, nil
		}
		all, err := loader()
		if err != nil {
			return nil, err
		}
		cacheSetSilently(cache, ctx, listKey, all, ttl)
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	all, ok := res.([]T)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight result")
	}
	return all, nil
}

// CachingPingTemplateRepository decorates a PingTemplateRepository with
// cache-aside. Templates are read on every ping, written rarely.
type CachingPingTemplateRepository struct {
	inner  ports.PingTemplateRepository
	cache  ports.Cache
	ttl    time.Duration
	sf     singleflight.Group
	logger *logrus.Logger
}

func NewCachingPingTemplateRepository(inner ports.PingTemplateRepository, cache ports.Cache, ttl time.Duration, logger *logrus.Logger) ports.PingTemplateRepository {
	return &CachingPingTemplateRepository{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachingPingTemplateRepository) invalidate(ctx context.Context, keys ...string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, keys...); err != nil && c.logger != nil {
		c.logger.WithError(err).WithField("keys", keys).Warn("template cache invalidation failed")
	}
}

func (c *CachingPingTemplateRepository) Create(ctx context.Context, t *ping.Template) error {
	if err := c.inner.Create(ctx, t); err != nil {
		return err
	}
	cacheSetSilently(c.cache, ctx, templateKeyPrefix+t.ID.String(), t, c.ttl)
	c.invalidate(ctx, templatesAllKey)
	return nil
}

func (c *CachingPingTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*ping.Template, error) {
	key := templateKeyPrefix + id.String()
	if v, ok := cacheGet[ping.Template](c.cache, ctx, key); ok {
		return v, nil
	}
	t, err := c.inner.GetByID(ctx, id)
	if err == nil {
		cacheSetSilently(c.cache, ctx, key, t, c.ttl)
	}
	return t, err
}

func (c *CachingPingTemplateRepository) List(ctx context.Context) ([]*ping.Template, error) {
	return loadListWithSingleflight(&c.sf, c.cache, ctx, templatesAllKey, c.ttl, func() ([]*ping.Template, error) {
		return c.inner.List(ctx)
	})
}

func (c *CachingPingTemplateRepository) Update(ctx context.Context, t *ping.Template) error {
	if err := c.inner.Update(ctx, t); err != nil {
		return err
	}
	cacheSetSilently(c.cache, ctx, templateKeyPrefix+t.ID.String(), t, c.ttl)
	c.invalidate(ctx, templatesAllKey)
	return nil
}

func (c *CachingPingTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, templateKeyPrefix+id.String(), templatesAllKey)
	return nil
}

var _ ports.PingTemplateRepository = (*CachingPingTemplateRepository)(nil)
