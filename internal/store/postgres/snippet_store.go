// Package postgres provides the Postgres-backed article/snippet store.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/citesweep/citesweep/internal/pipeline"
)

// Config controls the Postgres connection pool backing a SnippetStore.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// SnippetStore writes article and snippet rows into Postgres. Each worker
// owns its own SnippetStore; the server-side tables are shared, so the
// insert paths must tolerate concurrent writers.
type SnippetStore struct {
	pool   execCloser
	retry  retryPolicy
	logger *zap.Logger
}

// NewSnippetStore creates a Postgres-backed SnippetStore from the config.
func NewSnippetStore(ctx context.Context, cfg Config, logger *zap.Logger) (*SnippetStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
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
	return &SnippetStore{
		pool:   pool,
		retry:  defaultRetryPolicy(),
		logger: logger,
	}, nil
}

// NewSnippetStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewSnippetStoreWithPool(pool execCloser, logger *zap.Logger) (*SnippetStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &SnippetStore{
		pool:   pool,
		retry:  defaultRetryPolicy(),
		logger: logger,
	}, nil
}

// Close releases the underlying pool resources.
func (s *SnippetStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// InsertArticle inserts one article row, retrying on transient failures.
// A duplicate pageid is a hard error: within a run every page is processed
// at most once, so a collision means an invariant was violated upstream.
func (s *SnippetStore) InsertArticle(ctx context.Context, article pipeline.Article) error {
	const query = `INSERT INTO articles (pageid, url, title) VALUES ($1, $2, $3)`

	for attempt := 0; ; attempt++ {
		_, err := s.pool.Exec(ctx, query, string(article.PageID), article.URL, article.Title)
		if err == nil {
			return nil
		}
		if !s.retry.shouldRetry(err, attempt) {
			return fmt.Errorf("insert article %s: %w", article.PageID, err)
		}
		s.logger.Warn("article insert failed, retrying",
			zap.String("pageid", string(article.PageID)),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("insert article %s: %w", article.PageID, ctx.Err())
		case <-time.After(s.retry.backoff(attempt)):
		}
	}
}

// InsertSnippets inserts snippet rows in one statement with
// ignore-on-conflict semantics: a snippet id that already exists, whether
// from this run or a previous one, is silently skipped.
func (s *SnippetStore) InsertSnippets(ctx context.Context, snippets []pipeline.Snippet) error {
	if len(snippets) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO snippets (id, text, section_anchor, pageid) VALUES ")
	args := make([]any, 0, len(snippets)*4)
	for i, row := range snippets {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * 4
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, row.ID, row.Text, row.SectionAnchor, string(row.PageID))
	}
	b.WriteString(" ON CONFLICT (id) DO NOTHING")

	if _, err := s.pool.Exec(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("insert snippets: %w", err)
	}
	return nil
}

// Reset clears the scratch tables before a fresh run.
func (s *SnippetStore) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE snippets, articles`); err != nil {
		return fmt.Errorf("reset scratch tables: %w", err)
	}
	return nil
}
