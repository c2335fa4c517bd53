package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Modulos-api/internal/application/entitlement"
	"github.com/jhoicas/Modulos-api/internal/domain/repository"
)

var _ entitlement.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunLocked inicia una transacción, toma un advisory lock transaccional sobre la organización
// y ejecuta fn con repos atados a la tx. El lock se libera con Commit o Rollback, de modo que
// dos activaciones concurrentes de la misma organización se ejecutan una tras otra.
func (r *TxRunner) RunLocked(ctx context.Context, organizationID string, fn func(
	planRepo repository.PlanRepository,
	orgModuleRepo repository.OrganizationModuleRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, "organization_modules:"+organizationID); err != nil {
		return fmt.Errorf("lock organization: %w", err)
	}

	if err := fn(NewPlanRepository(tx), NewOrganizationModuleRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
