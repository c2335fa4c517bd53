package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Modulos-api/internal/application/entitlement"
)

var _ entitlement.ActiveSetCache = (*ActiveSetCache)(nil)

const keyPrefix = "entitlements:org:"

// ActiveSetCache caché compartida entre réplicas del conjunto de módulos activos por organización.
type ActiveSetCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewClient crea el cliente a partir de REDIS_URL y verifica la conexión.
func NewClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	client := goredis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewActiveSetCache construye la caché sobre un cliente existente.
func NewActiveSetCache(client *goredis.Client, ttl time.Duration) *ActiveSetCache {
	return &ActiveSetCache{client: client, ttl: ttl}
}

func key(organizationID string) string {
	return keyPrefix + organizationID + ":active"
}

// Get devuelve (codes, true, nil) en acierto y (nil, false, nil) en fallo de caché.
func (c *ActiveSetCache) Get(ctx context.Context, organizationID string) ([]string, bool, error) {
	data, err := c.client.Get(ctx, key(organizationID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var codes []string
	if err := json.Unmarshal(data, &codes); err != nil {
		// Entrada corrupta: se descarta y se recalcula.
		c.client.Del(ctx, key(organizationID))
		return nil, false, fmt.Errorf("unmarshal active set: %w", err)
	}
	return codes, true, nil
}

// Set guarda el conjunto activo con el TTL configurado.
func (c *ActiveSetCache) Set(ctx context.Context, organizationID string, codes []string) error {
	if codes == nil {
		codes = []string{}
	}
	data, err := json.Marshal(codes)
	if err != nil {
		return fmt.Errorf("marshal active set: %w", err)
	}
	if err := c.client.Set(ctx, key(organizationID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate borra la entrada de la organización.
func (c *ActiveSetCache) Invalidate(ctx context.Context, organizationID string) error {
	if err := c.client.Del(ctx, key(organizationID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
