package db

import (
	"context"
	"fmt"

	"pizzeria-telegram/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is nil unless session persistence is enabled.
var Pool *pgxpool.Pool

func Init(ctx context.Context, cfg config.DBConfig) error {
	pool, err := pgxpool.New(ctx, ConnString(cfg))
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Database, err)
	}
	Pool = pool
	return nil
}

func ConnString(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
}

func Close() {
	if Pool != nil {
		Pool.Close()
		Pool = nil
	}
}
