package entitlement

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jhoicas/Modulos-api/internal/domain/entity"
	"github.com/jhoicas/Modulos-api/internal/domain/repository"
)

const catalogKey = "all"

// ModuleCatalog accesos de solo lectura al catálogo de módulos (partición core / de pago).
// El catálogo lo administra la plataforma y cambia muy poco: se cachea completo con TTL.
type ModuleCatalog struct {
	repo  repository.ModuleRepository
	cache *lru.LRU[string, []*entity.Module]
}

// NewModuleCatalog construye el catálogo. ttl <= 0 deshabilita la caché.
func NewModuleCatalog(repo repository.ModuleRepository, ttl time.Duration) *ModuleCatalog {
	c := &ModuleCatalog{repo: repo}
	if ttl > 0 {
		c.cache = lru.NewLRU[string, []*entity.Module](1, nil, ttl)
	}
	return c
}

// List devuelve los módulos de la partición, ordenados por rank.
func (c *ModuleCatalog) List(ctx context.Context, filter entity.ModuleFilter) ([]*entity.Module, error) {
	all, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Module, 0, len(all))
	for _, m := range all {
		if filter.Matches(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

// Find devuelve el módulo o (nil, nil) si el código no existe.
// Ante un fallo de caché consulta el repositorio, por si el módulo se agregó después de cargarla.
func (c *ModuleCatalog) Find(ctx context.Context, code string) (*entity.Module, error) {
	all, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range all {
		if m.Code == code {
			return m, nil
		}
	}
	if c.cache == nil {
		return nil, nil
	}
	m, err := c.repo.FindModule(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("find module %s: %w", code, err)
	}
	if m == nil {
		return nil, nil
	}
	c.cache.Remove(catalogKey)
	return normalized(m), nil
}

// CoreCodes devuelve los códigos de los módulos core.
func (c *ModuleCatalog) CoreCodes(ctx context.Context) ([]string, error) {
	core, err := c.List(ctx, entity.ModuleFilterCore)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(core))
	for _, m := range core {
		codes = append(codes, m.Code)
	}
	return codes, nil
}

// normalized devuelve el módulo con el código en forma canónica. Filas cargadas antes
// de la restricción de minúsculas pueden traer "POS" o " pos".
func normalized(m *entity.Module) *entity.Module {
	code := entity.NormalizeCode(m.Code)
	if code == m.Code {
		return m
	}
	cp := *m
	cp.Code = code
	return &cp
}

func (c *ModuleCatalog) all(ctx context.Context) ([]*entity.Module, error) {
	if c.cache != nil {
		if mods, ok := c.cache.Get(catalogKey); ok {
			return mods, nil
		}
	}
	mods, err := c.repo.ListModules(ctx, entity.ModuleFilterAll)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	for i, m := range mods {
		mods[i] = normalized(m)
	}
	if c.cache != nil {
		c.cache.Add(catalogKey, mods)
	}
	return mods, nil
}
