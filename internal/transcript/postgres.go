package transcript

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/nayacomm/voicebridge/internal/obs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresSink is the durable implementation from SPEC_FULL.md §4.9, backed
// by calls/messages/tool_calls tables keyed by ref. Enrichment from the
// pack's only SQL-fluent example (vango-go-vai-lite's pgx+goose stack) since
// the teacher has no persistence layer of its own.
type PostgresSink struct {
	pool *pgxpool.Pool
	log  *obs.Logger
}

// NewPostgresSink connects to dsn and applies pending migrations.
func NewPostgresSink(ctx context.Context, dsn string, logger *obs.Logger) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("transcript: connect: %w", err)
	}

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("transcript: open migration connection: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("transcript: set goose dialect: %w", err)
	}
	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return nil, fmt.Errorf("transcript: apply migrations: %w", err)
	}

	return &PostgresSink{pool: pool, log: logger}, nil
}

func (s *PostgresSink) StartCall(ctx context.Context, p StartParams) Ref {
	ref := Ref("call_" + uuid.New().String())
	_, err := s.pool.Exec(ctx,
		`INSERT INTO calls (ref, call_id, caller_phone, customer_name, identified, started_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		string(ref), p.CallID, p.CallerPhone, p.CustomerName, p.Identified, time.Now())
	if err != nil {
		s.log.Printf("StartCall: %v", err)
	}
	return ref
}

func (s *PostgresSink) AppendMessage(ctx context.Context, ref Ref, p MessageParams) {
	if ref == "" {
		return
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (ref, speaker, content) VALUES ($1,$2,$3)`,
		string(ref), string(p.Speaker), p.Content)
	if err != nil {
		s.log.Printf("AppendMessage: %v", err)
	}
}

func (s *PostgresSink) AppendToolCall(ctx context.Context, ref Ref, p ToolCallParams) {
	if ref == "" {
		return
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tool_calls (ref, name, arguments, result) VALUES ($1,$2,$3,$4)`,
		string(ref), p.Name, p.Arguments, p.Result)
	if err != nil {
		s.log.Printf("AppendToolCall: %v", err)
	}
}

func (s *PostgresSink) EndCall(ctx context.Context, ref Ref, p EndParams) {
	if ref == "" {
		return
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE calls SET duration_seconds = $2 WHERE ref = $1`,
		string(ref), p.DurationSeconds)
	if err != nil {
		s.log.Printf("EndCall: %v", err)
	}
}

// Close releases the connection pool.
func (s *PostgresSink) Close() { s.pool.Close() }
