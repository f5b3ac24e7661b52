package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

// Schema creates the journal table. It is idempotent and runs on Open.
const Schema = `
create table if not exists solve_journal (
  id           uuid primary key,
  created_at   timestamptz not null default now(),
  chat_id      bigint not null default 0,
  problem_hash text not null,
  engine       text not null,
  model        text not null,
  technique_id text not null default '',
  repaired     boolean not null default false,
  solutions    integer not null default 0,
  outcome      text not null,
  elapsed_ms   bigint not null default 0
);
create index if not exists solve_journal_created_at_idx on solve_journal (created_at);
create index if not exists solve_journal_problem_hash_idx on solve_journal (problem_hash);`

// Open connects through pgx, checks the connection and applies Schema.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
