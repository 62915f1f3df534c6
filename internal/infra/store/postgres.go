package store

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx via database/sql
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/nmhoang23/rotauth/internal/core/domain"
)

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	URL        string `yaml:"url"`
	MaxConns   int    `yaml:"max_conns"`
	MinConns   int    `yaml:"min_conns"`
	Migrations string `yaml:"migrations"`
}

// PostgresStore persists stats in a resource_stats table, one row per
// resource. Save replaces the whole table inside a transaction.
type PostgresStore struct {
	db *sqlx.DB
}

type statsRow struct {
	Resource     string    `db:"resource"`
	CooldownMs   int64     `db:"cooldown_ms"`
	SuccessCount int64     `db:"success_count"`
	FailCount    int64     `db:"fail_count"`
	UseCount     int64     `db:"use_count"`
	LastUsedAt   time.Time `db:"last_used_at"`
}

// NewPostgresStore connects, applies migrations, and returns the store.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	db, err := sqlx.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	} else {
		db.SetMaxOpenConns(10)
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	} else {
		db.SetMaxIdleConns(2)
	}
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	migrations := cfg.Migrations
	if migrations == "" {
		migrations = "migrations"
	}
	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := goose.Up(db.DB, migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Load reads all rows into the resource→stats mapping.
func (s *PostgresStore) Load(ctx context.Context) (map[string]domain.ResourceStats, error) {
	var rows []statsRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT resource, cooldown_ms, success_count, fail_count, use_count, last_used_at
		 FROM resource_stats`)
	if err != nil {
		return nil, fmt.Errorf("select resource stats: %w", err)
	}

	stats := make(map[string]domain.ResourceStats, len(rows))
	for _, r := range rows {
		stats[r.Resource] = domain.ResourceStats{
			CooldownMs:   r.CooldownMs,
			SuccessCount: r.SuccessCount,
			FailCount:    r.FailCount,
			UseCount:     r.UseCount,
			LastUsedAt:   r.LastUsedAt,
		}
	}
	return stats, nil
}

// Save replaces the table contents with the given mapping.
func (s *PostgresStore) Save(ctx context.Context, stats map[string]domain.ResourceStats) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stats tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM resource_stats`); err != nil {
		return fmt.Errorf("clear resource stats: %w", err)
	}

	for key, rs := range stats {
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO resource_stats
			   (resource, cooldown_ms, success_count, fail_count, use_count, last_used_at)
			 VALUES (:resource, :cooldown_ms, :success_count, :fail_count, :use_count, :last_used_at)`,
			statsRow{
				Resource:     key,
				CooldownMs:   rs.CooldownMs,
				SuccessCount: rs.SuccessCount,
				FailCount:    rs.FailCount,
				UseCount:     rs.UseCount,
				LastUsedAt:   rs.LastUsedAt,
			})
		if err != nil {
			return fmt.Errorf("insert stats for %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit stats tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
