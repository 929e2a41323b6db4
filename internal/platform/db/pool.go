// Package db owns the Postgres connection pool and the readiness check the
// probe endpoints run against it.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// pingTimeout bounds a readiness ping so a wedged database cannot hang the
// probe endpoint.
const pingTimeout = 5 * time.Second

// Pinger is the slice of pgxpool.Pool the readiness check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := CheckReady(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// CheckReady reports whether the database answers a ping within the probe
// window. Used both at startup and by the readiness endpoint.
func CheckReady(ctx context.Context, p Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}
