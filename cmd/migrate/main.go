// migrate aplica el esquema y, opcionalmente, tareas de mantenimiento de datos.
//
// Uso:
//
//	go run ./cmd/migrate                              # solo esquema
//	go run ./cmd/migrate --rehash-plaintext           # hashea contraseñas heredadas en texto plano
//	go run ./cmd/migrate --catalog catalogo.xml       # importa sucursales y productos
//
// La conexión se toma de la misma configuración que la API (DB_DRIVER, DATABASE_URL, SQLITE_PATH, ...).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/jhoicas/supermercado-api/internal/application/auth"
	"github.com/jhoicas/supermercado-api/internal/infrastructure/catalogxml"
	"github.com/jhoicas/supermercado-api/internal/infrastructure/persistence"
	"github.com/jhoicas/supermercado-api/internal/infrastructure/storage"
	"github.com/jhoicas/supermercado-api/pkg/config"
	"github.com/jhoicas/supermercado-api/pkg/logger"
)

func main() {
	rehash := flag.Bool("rehash-plaintext", false, "reemplaza contraseñas en texto plano por su hash")
	catalogPath := flag.String("catalog", "", "archivo XML de catálogo a importar")
	timeout := flag.Duration("timeout", 5*time.Minute, "tiempo máximo de ejecución")
	flag.Parse()

	if err := run(*rehash, *catalogPath, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(rehash bool, catalogPath string, timeout time.Duration) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	st, err := storage.Open(ctx, cfg.DB, log)
	if err != nil {
		return err
	}
	defer st.Close()

	runner := st.Runner(cfg.DB, log, nil)
	if err := persistence.Migrate(ctx, runner); err != nil {
		return err
	}
	store := persistence.NewEntityStore(runner)

	if rehash {
		uc := auth.NewUseCase(store, auth.JWTConfig{Secret: cfg.JWT.Secret, TTL: cfg.JWT.TTL(), Issuer: cfg.JWT.Issuer}, nil, log)
		n, err := uc.MigratePlaintextPasswords(ctx)
		log.Info().Int("rehashed", n).Msg("contraseñas en texto plano migradas")
		if err != nil {
			return fmt.Errorf("rehash: %w", err)
		}
	}

	if catalogPath != "" {
		f, err := os.Open(catalogPath)
		if err != nil {
			return fmt.Errorf("abrir catálogo: %w", err)
		}
		defer f.Close()
		cat, err := catalogxml.Decode(f)
		if err != nil {
			return err
		}
		sum, err := catalogxml.Import(ctx, runner, store, cat)
		if err != nil {
			return fmt.Errorf("importar catálogo: %w", err)
		}
		log.Info().
			Int("branches", sum.Branches).
			Int("products", sum.Products).
			Int("skipped", sum.Skipped).
			Msg("catálogo importado")
	}
	return nil
}
