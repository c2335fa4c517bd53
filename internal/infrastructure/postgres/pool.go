package postgres

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Modulos-api/pkg/config"
)

const (
	applicationName = "modulos-api"
	defaultMaxConns = 25
	defaultMinConns = 2
)

// NewPool abre el pool de PostgreSQL y verifica la conexión.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolConfig, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

// PoolConfig arma la configuración del pool sin abrir conexiones.
//
// Activate y Repair retienen una conexión mientras esperan el advisory lock de la
// organización: MaxConns acota cuántas organizaciones mutan a la vez y lock_timeout
// corta la espera (la operación falla con error en lugar de colgar la petición).
func PoolConfig(cfg config.DBConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	poolConfig.MaxConns = defaultMaxConns
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	poolConfig.MinConns = min(defaultMinConns, poolConfig.MaxConns)
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	params := poolConfig.ConnConfig.RuntimeParams
	if params["application_name"] == "" {
		params["application_name"] = applicationName
	}
	if cfg.LockTimeout > 0 {
		params["lock_timeout"] = strconv.Itoa(cfg.LockTimeout*1000) + "ms"
	}

	poolConfig.ConnConfig.DialFunc = dialPreferIPv4(net.DefaultResolver)

	// NUMERIC -> shopspring/decimal para los precios de planes.
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	return poolConfig, nil
}

type ipLookup interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

// dialPreferIPv4 conecta por IPv4 cuando el host tiene registro A. En contenedores sin
// IPv6 el dial por nombre puede elegir la dirección AAAA y fallar.
func dialPreferIPv4(r ipLookup) func(ctx context.Context, network, addr string) (net.Conn, error) {
	var dialer net.Dialer
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if target, ok := ipv4Addr(ctx, r, addr); ok {
			return dialer.DialContext(ctx, "tcp4", target)
		}
		return dialer.DialContext(ctx, network, addr)
	}
}

// ipv4Addr traduce host:puerto a ipv4:puerto. Literales IPv6, sockets y nombres sin
// registro A devuelven false y se usan sin traducir.
func ipv4Addr(ctx context.Context, r ipLookup, addr string) (string, bool) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", false
	}
	if ip := net.ParseIP(host); ip != nil {
		return addr, ip.To4() != nil
	}
	ips, err := r.LookupIP(ctx, "ip4", host)
	if err != nil {
		return "", false
	}
	for _, ip := range ips {
		if ip.To4() != nil {
			return net.JoinHostPort(ip.String(), port), true
		}
	}
	return "", false
}
