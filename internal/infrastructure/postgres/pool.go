package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/jobify/config"
)

const pingTimeout = 5 * time.Second

// PoolOptions sizes the connection pool.
type PoolOptions struct {
	MaxConns    int32
	MinConns    int32
	MaxConnLife time.Duration
}

// PoolOptionsFrom reads pool sizing from cfg. Short-lived commands pass
// small to shrink it.
func PoolOptionsFrom(cfg *config.Config, small bool) PoolOptions {
	if small {
		return PoolOptions{MaxConns: 2, MinConns: 1, MaxConnLife: cfg.DBMaxConnLife}
	}
	return PoolOptions{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns, MaxConnLife: cfg.DBMaxConnLife}
}

func (o PoolOptions) apply(pc *pgxpool.Config) {
	if o.MaxConns > 0 {
		pc.MaxConns = o.MaxConns
	}
	if o.MinConns > 0 && o.MinConns <= pc.MaxConns {
		pc.MinConns = o.MinConns
	}
	if o.MaxConnLife > 0 {
		pc.MaxConnLifetime = o.MaxConnLife
	}
}

// NewPool opens a pool and pings it before returning.
func NewPool(ctx context.Context, dsn string, opts PoolOptions) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	opts.apply(pc)
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}
