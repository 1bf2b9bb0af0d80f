// Package db runs verification queries against the system under test and
// returns every value as a string, ready for assertions.
//
// Connections are opened from dburl-style URLs. Postgres goes through a
// pgxpool sized from configuration; MySQL, SQL Server and SQLite use their
// database/sql drivers.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/xo/dburl"

	"github.com/the-sdet/sdetkit/internal/config"
	"github.com/the-sdet/sdetkit/internal/logging"
)

// PoolConfig sizes the connection pool.
type PoolConfig struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// PoolConfigFrom copies the pool settings out of the database configuration.
func PoolConfigFrom(cfg config.DatabaseConfig) PoolConfig {
	return PoolConfig{
		MaxConns:        cfg.MaxConns,
		MinConns:        cfg.MinConns,
		MaxConnLifetime: cfg.MaxConnLifetime,
		MaxConnIdleTime: cfg.MaxConnIdleTime,
		ConnectTimeout:  cfg.ConnectTimeout,
	}
}

// Reader executes queries over a *sql.DB.
type Reader struct {
	db   *sql.DB
	pool *pgxpool.Pool
}

// New wraps an already opened handle. Close closes it.
func New(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// Open connects to rawURL and verifies the connection with a ping bounded
// by cfg.ConnectTimeout.
func Open(ctx context.Context, rawURL string, cfg PoolConfig) (*Reader, error) {
	u, err := dburl.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	var r *Reader
	if u.Driver == "postgres" {
		r, err = openPostgres(ctx, u, cfg)
	} else {
		r, err = openSQL(u, cfg)
	}
	if err != nil {
		return nil, err
	}

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := r.db.PingContext(pingCtx); err != nil {
		r.Close()
		return nil, fmt.Errorf("ping %s database: %w", u.Driver, err)
	}

	logging.Info(ctx, "Connected to database", "driver", u.Driver, "host", u.Hostname(), "name", u.Path)
	return r, nil
}

func openPostgres(ctx context.Context, u *dburl.URL, cfg PoolConfig) (*Reader, error) {
	// pgx only understands the postgres scheme, not dburl aliases like pg:
	pu := u.URL
	pu.Scheme = "postgres"

	poolConfig, err := pgxpool.ParseConfig(pu.String())
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	poolConfig.MinConns = int32(cfg.MinConns)
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	return &Reader{db: stdlib.OpenDBFromPool(pool), pool: pool}, nil
}

func openSQL(u *dburl.URL, cfg PoolConfig) (*Reader, error) {
	db, err := sql.Open(u.Driver, u.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", u.Driver, err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	db.SetMaxIdleConns(cfg.MinConns)
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
	return &Reader{db: db}, nil
}

// DB exposes the underlying handle.
func (r *Reader) DB() *sql.DB { return r.db }

// Close releases the connection pool.
func (r *Reader) Close() error {
	err := r.db.Close()
	if r.pool != nil {
		r.pool.Close()
	}
	if err != nil {
		logging.Error(context.Background(), "Error closing database connection", err)
		return fmt.Errorf("close database: %w", err)
	}
	logging.Info(context.Background(), "Closed Database Connection")
	return nil
}
