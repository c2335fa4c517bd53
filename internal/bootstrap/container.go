package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Modulos-api/internal/application/entitlement"
	"github.com/jhoicas/Modulos-api/internal/application/permission"
	"github.com/jhoicas/Modulos-api/internal/application/reconcile"
	"github.com/jhoicas/Modulos-api/internal/domain/repository"
	"github.com/jhoicas/Modulos-api/internal/infrastructure/memory"
	"github.com/jhoicas/Modulos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Modulos-api/internal/infrastructure/postgres/migrations"
	rediscache "github.com/jhoicas/Modulos-api/internal/infrastructure/redis"
	"github.com/jhoicas/Modulos-api/pkg/config"
	"github.com/jhoicas/Modulos-api/pkg/logger"
	"github.com/jhoicas/Modulos-api/pkg/metrics"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	catalogTTL = 5 * time.Minute
)

// Container agrupa los servicios ya cableados que consumen los binarios (API y CLI de conciliación).
type Container struct {
	Modules     *entitlement.Service
	Permissions *permission.Resolver
	Reconciler  *reconcile.Reconciler
	Registry    *prometheus.Registry

	pool  *pgxpool.Pool
	redis *goredis.Client
}

type stores struct {
	modules       repository.ModuleRepository
	orgModules    repository.OrganizationModuleRepository
	plans         repository.PlanRepository
	subscriptions repository.SubscriptionRepository
	organizations repository.OrganizationRepository
	members       repository.MembershipRepository
	permissions   repository.PermissionRepository
	roles         repository.RoleRepository
	tx            entitlement.TxRunner
}

// Build abre el almacenamiento elegido por STORE_DRIVER, la caché (Redis si hay REDIS_URL)
// y construye motor, resolvedor y conciliador. El llamador debe invocar Close.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	c := &Container{Registry: prometheus.NewRegistry()}
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(c.Registry)

	st, err := c.openStores(ctx, cfg, log)
	if err != nil {
		c.Close()
		return nil, err
	}

	var cache entitlement.ActiveSetCache
	switch {
	case cfg.Entitlement.CacheTTL() <= 0:
		cache = entitlement.NopCache{}
		log.Warn().Msg("ENTITLEMENT_CACHE_TTL_SECONDS <= 0: caché de módulos activos deshabilitada")
	case cfg.Redis.URL != "":
		client, err := rediscache.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		c.redis = client
		cache = rediscache.NewActiveSetCache(client, cfg.Entitlement.CacheTTL())
		log.Info().Msg("caché de módulos activos en Redis")
	default:
		cache = entitlement.NewLocalCache(cfg.Entitlement.CacheSize, cfg.Entitlement.CacheTTL())
	}

	c.Modules = entitlement.NewService(entitlement.Deps{
		Catalog:    entitlement.NewModuleCatalog(st.modules, catalogTTL),
		Plans:      entitlement.NewPlanResolver(st.plans),
		OrgModules: st.orgModules,
		Tx:         st.tx,
		Cache:      cache,
		Metrics:    m,
		Logger:     log,
	})
	c.Permissions = permission.NewResolver(permission.Deps{
		Members:      st.members,
		Permissions:  st.permissions,
		Roles:        st.roles,
		Entitlements: c.Modules,
		Metrics:      m,
		Logger:       log,
	})
	c.Reconciler = reconcile.New(reconcile.Deps{
		Engine:        c.Modules,
		Catalog:       c.Modules.Catalog(),
		OrgModules:    st.orgModules,
		Organizations: st.organizations,
		Plans:         st.plans,
		Subscriptions: st.subscriptions,
		DefaultPlan:   cfg.Entitlement.DefaultPlan,
		Concurrency:   cfg.Reconcile.Concurrency,
		Metrics:       m,
		Logger:        log,
	})
	return c, nil
}

func (c *Container) openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	switch cfg.App.StoreDriver {
	case DriverMemory:
		s := memory.New()
		memory.Seed(s, time.Now().UTC())
		log.Warn().Msg("STORE_DRIVER=memory: datos de demostración, no persistentes")
		return &stores{
			modules: s, orgModules: s, plans: s, subscriptions: s,
			organizations: s, members: s, permissions: s, roles: s, tx: s,
		}, nil
	case DriverPostgres, "":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		c.pool = pool
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool, migrations.FS, log); err != nil {
				return nil, fmt.Errorf("migraciones: %w", err)
			}
		}
		r := postgres.NewRepositories(pool)
		return &stores{
			modules:       r.Modules,
			orgModules:    r.OrganizationModules,
			plans:         r.Plans,
			subscriptions: r.Subscriptions,
			organizations: r.Organizations,
			members:       r.Members,
			permissions:   r.Permissions,
			roles:         r.Roles,
			tx:            r.Tx,
		}, nil
	default:
		return nil, fmt.Errorf("STORE_DRIVER desconocido: %q", cfg.App.StoreDriver)
	}
}

// Ping verifica las dependencias externas abiertas (base de datos y Redis).
func (c *Container) Ping(ctx context.Context) error {
	if c.pool != nil {
		if err := c.pool.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	if c.redis != nil {
		if err := c.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close libera conexiones. Es seguro llamarlo más de una vez.
func (c *Container) Close() {
	if c.redis != nil {
		_ = c.redis.Close()
		c.redis = nil
	}
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
}
