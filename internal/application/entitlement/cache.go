package entitlement

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// ActiveSetCache cachea por organización el conjunto de códigos de módulos activos,
// que es lo único que necesita el camino caliente (middleware RequireModule).
// Toda mutación del motor invalida la entrada de la organización.
type ActiveSetCache interface {
	Get(ctx context.Context, organizationID string) ([]string, bool, error)
	Set(ctx context.Context, organizationID string, codes []string) error
	Invalidate(ctx context.Context, organizationID string) error
}

// LocalCache implementación en proceso (LRU con expiración). Útil con una sola instancia.
type LocalCache struct {
	lru *lru.LRU[string, []string]
}

var _ ActiveSetCache = (*LocalCache)(nil)

// NewLocalCache construye la caché local.
func NewLocalCache(size int, ttl time.Duration) *LocalCache {
	if size <= 0 {
		size = 1024
	}
	return &LocalCache{lru: lru.NewLRU[string, []string](size, nil, ttl)}
}

// Get implementa ActiveSetCache.
func (c *LocalCache) Get(_ context.Context, organizationID string) ([]string, bool, error) {
	codes, ok := c.lru.Get(organizationID)
	if !ok {
		return nil, false, nil
	}
	return append([]string(nil), codes...), true, nil
}

// Set implementa ActiveSetCache.
func (c *LocalCache) Set(_ context.Context, organizationID string, codes []string) error {
	c.lru.Add(strings.Clone(organizationID), append([]string(nil), codes...))
	return nil
}

// Invalidate implementa ActiveSetCache.
func (c *LocalCache) Invalidate(_ context.Context, organizationID string) error {
	c.lru.Remove(organizationID)
	return nil
}

// NopCache no cachea nada.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]string, bool, error) { return nil, false, nil }
func (NopCache) Set(context.Context, string, []string) error          { return nil }
func (NopCache) Invalidate(context.Context, string) error             { return nil }
