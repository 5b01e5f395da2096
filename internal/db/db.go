package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"learnoted/internal/config"
)

// poolConfig traduce la configuración de la aplicación a opciones de pgxpool.
// Valores no positivos conservan el default de pgx.
func poolConfig(cfg *config.Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if cfg.DBMaxConns > 0 {
		pc.MaxConns = cfg.DBMaxConns
	}
	if cfg.DBMinConns > 0 {
		pc.MinConns = cfg.DBMinConns
	}
	if cfg.DBConnMaxLifetimeMinutes > 0 {
		pc.MaxConnLifetime = time.Duration(cfg.DBConnMaxLifetimeMinutes) * time.Minute
	}
	if cfg.DBConnMaxIdleMinutes > 0 {
		pc.MaxConnIdleTime = time.Duration(cfg.DBConnMaxIdleMinutes) * time.Minute
	}
	if cfg.DBConnectTimeoutSeconds > 0 {
		pc.ConnConfig.ConnectTimeout = time.Duration(cfg.DBConnectTimeoutSeconds) * time.Second
	}
	pc.HealthCheckPeriod = 30 * time.Second

	return pc, nil
}

// NewPool construye un pool de conexiones con los parámetros de Config.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}
	return pgxpool.NewWithConfig(ctx, pc)
}

// Ping verifica conectividad con la base de datos.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}
