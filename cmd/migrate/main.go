// migrate aplica las migraciones embebidas con goose.
//
// Uso: go run ./cmd/migrate [up|down|status|version|redo|reset] [args...]
// Sin argumentos ejecuta "up".
package main

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/obralink/obralink-api/internal/infrastructure/postgres"
	"github.com/obralink/obralink-api/pkg/config"
	"github.com/obralink/obralink-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Named("migrate")

	command, args := "up", []string(nil)
	if len(os.Args) > 1 {
		command, args = os.Args[1], os.Args[2:]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := postgres.Migrate(ctx, db, command, args...); err != nil {
		log.Error().Err(err).Str("command", command).Msg("migración fallida")
		os.Exit(1)
	}
	log.Info().Str("command", command).Msg("migración completada")
}
