package sink

import (
	"context"
	"fmt"
	"regexp"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/insightmine/reddit-quote-miner/internal/miner"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresConfig controls the connection pool behind the Postgres sink.
type PostgresConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// PostgresSink inserts one row per record into a quotes table.
type PostgresSink struct {
	pool    execCloser
	table   string
	builder sq.StatementBuilderType
	logger  *zap.Logger
}

// NewPostgresSink creates a pool-backed sink using the provided config.
func NewPostgresSink(ctx context.Context, cfg PostgresConfig, logger *zap.Logger) (*PostgresSink, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dataset.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewPostgresSinkWithPool(pool, cfg.Table, logger)
}

// NewPostgresSinkWithPool constructs a sink from an existing pool
// (primarily for testing).
func NewPostgresSinkWithPool(pool execCloser, table string, logger *zap.Logger) (*PostgresSink, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "quotes"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresSink{
		pool:    pool,
		table:   table,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger:  logger,
	}, nil
}

// Append inserts the record.
func (s *PostgresSink) Append(ctx context.Context, rec miner.Record) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("postgres sink is not configured")
	}
	query, args, err := s.builder.
		Insert(s.table).
		Columns(
			"country",
			"topic",
			"quote_type",
			"quote",
			"quote_en",
			"post_title",
			"post_title_en",
			"subreddit",
			"score",
			"url",
			"created_at",
			"lang",
			"author",
		).
		Values(
			rec.Country,
			rec.Topic,
			rec.QuoteType,
			rec.Quote,
			rec.QuoteEN,
			rec.PostTitle,
			rec.PostTitleEN,
			rec.Subreddit,
			rec.Score,
			rec.URL,
			rec.CreatedAt,
			rec.Lang,
			rec.Author,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

// Close releases the underlying pool resources.
func (s *PostgresSink) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}
