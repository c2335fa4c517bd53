package postgres

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Modulos-api/pkg/config"
)

type fakeLookup map[string][]net.IP

func (f fakeLookup) LookupIP(_ context.Context, _ string, host string) ([]net.IP, error) {
	ips, ok := f[host]
	if !ok {
		return nil, errors.New("no such host")
	}
	return ips, nil
}

func TestPoolConfig_OpcionesDelPool(t *testing.T) {
	cfg := config.DBConfig{
		Host: "db", Port: 5432, User: "app", Password: "secret", DBName: "modulos", SSLMode: "disable",
		MaxConns: 10, LockTimeout: 3,
	}
	pc, err := PoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(10), pc.MaxConns)
	assert.Equal(t, int32(2), pc.MinConns)
	assert.Equal(t, time.Minute, pc.HealthCheckPeriod)
	assert.Equal(t, "modulos-api", pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "3000ms", pc.ConnConfig.RuntimeParams["lock_timeout"])
	assert.NotNil(t, pc.ConnConfig.DialFunc)
	assert.NotNil(t, pc.AfterConnect)
}

func TestPoolConfig_DatabaseURLYValoresPorDefecto(t *testing.T) {
	cfg := config.DBConfig{
		DatabaseURL: "postgres://app:secret@db:5432/modulos?sslmode=disable&application_name=worker",
		MaxConns:    1,
	}
	pc, err := PoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(1), pc.MaxConns)
	assert.Equal(t, int32(1), pc.MinConns, "MinConns nunca supera MaxConns")
	assert.Equal(t, "worker", pc.ConnConfig.RuntimeParams["application_name"], "la URL manda")
	_, ok := pc.ConnConfig.RuntimeParams["lock_timeout"]
	assert.False(t, ok)

	pc, err = PoolConfig(config.DBConfig{DatabaseURL: "postgres://app@db/modulos"})
	require.NoError(t, err)
	assert.Equal(t, int32(defaultMaxConns), pc.MaxConns)
}

func TestPoolConfig_DSNInvalido(t *testing.T) {
	_, err := PoolConfig(config.DBConfig{DatabaseURL: "postgres://app@db:puerto/modulos"})
	assert.Error(t, err)
}

func TestIPv4Addr(t *testing.T) {
	ctx := context.Background()
	r := fakeLookup{
		"db.local":  {net.ParseIP("2001:db8::1"), net.ParseIP("10.0.0.7")},
		"solo-aaaa": {net.ParseIP("2001:db8::2")},
	}

	addr, ok := ipv4Addr(ctx, r, "db.local:5432")
	assert.True(t, ok)
	assert.Equal(t, "10.0.0.7:5432", addr)

	addr, ok = ipv4Addr(ctx, r, "127.0.0.1:6432")
	assert.True(t, ok)
	assert.Equal(t, "127.0.0.1:6432", addr)

	_, ok = ipv4Addr(ctx, r, "[::1]:5432")
	assert.False(t, ok, "literal IPv6")

	_, ok = ipv4Addr(ctx, r, "solo-aaaa:5432")
	assert.False(t, ok)

	_, ok = ipv4Addr(ctx, r, "desconocido:5432")
	assert.False(t, ok)

	_, ok = ipv4Addr(ctx, r, "/tmp/.s.PGSQL.5432")
	assert.False(t, ok, "socket unix")
}
