// reconcile audita la consistencia entre planes, suscripciones y módulos activos,
// y opcionalmente la repara.
//
// Uso:
//
//	go run ./cmd/reconcile            # solo auditoría, imprime el reporte JSON
//	go run ./cmd/reconcile -fix       # repara todas las organizaciones marcadas
//	go run ./cmd/reconcile -org <id>  # repara una organización
//
// Sale con código 1 ante errores de infraestructura o reparaciones fallidas.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/Modulos-api/internal/bootstrap"
	"github.com/jhoicas/Modulos-api/pkg/config"
	"github.com/jhoicas/Modulos-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	os.Exit(run(ctx, cfg, log, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fix := fs.Bool("fix", false, "reparar todas las organizaciones marcadas por la auditoría")
	org := fs.String("org", "", "reparar solo esta organización")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	container, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "inicialización: %v\n", err)
		return 1
	}
	defer container.Close()

	rec := container.Reconciler
	switch {
	case *org != "":
		res := rec.Repair(ctx, *org)
		if err := writeJSON(stdout, res); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		if !res.Success {
			return 1
		}
	case *fix:
		batch, err := rec.RepairAll(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "reconciliación: %v\n", err)
			return 1
		}
		if err := writeJSON(stdout, batch); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		if batch.Failed > 0 {
			return 1
		}
	default:
		report, err := rec.Audit(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "auditoría: %v\n", err)
			return 1
		}
		if err := writeJSON(stdout, report); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	return 0
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
