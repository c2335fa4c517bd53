package reconcile_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Modulos-api/internal/application/reconcile"
	"github.com/jhoicas/Modulos-api/internal/domain/entity"
)

func TestScheduler_ExpresionInvalida(t *testing.T) {
	f := newFixture(t, "")

	_, err := reconcile.NewScheduler(f.rec, "cada día", time.Minute, nil)
	assert.Error(t, err)
}

func TestScheduler_EjecutaReparacionPeriodica(t *testing.T) {
	f := newFixture(t, "")
	f.st.AddOrganization(entity.Organization{ID: "org-huerfana", Name: "Sin plan"})

	s, err := reconcile.NewScheduler(f.rec, "@every 1s", 5*time.Second, nil)
	require.NoError(t, err)
	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Stop(ctx)
	}()

	require.Eventually(t, func() bool {
		plan, err := f.st.GetCurrentPlan(context.Background(), "org-huerfana")
		return err == nil && plan != nil
	}, 5*time.Second, 100*time.Millisecond)
}
