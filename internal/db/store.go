package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketdrift/backend/internal/models"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// InsertTickets bulk-loads tickets; the embedding column is float8[] and maps
// to []float64 through pgx.
func (s *Store) InsertTickets(ctx context.Context, tickets []models.Ticket) (int64, error) {
	rows := make([][]any, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, []any{t.ID, t.CreatedAt, nullable(t.Category), nullable(t.Subcategory), nullable(t.Priority), t.Message, t.Source, t.Embedding})
	}
	copyCount, err := s.Pool.CopyFrom(ctx, pgx.Identifier{"tickets"}, []string{"id", "created_at", "category", "subcategory", "priority", "message", "source", "embedding"}, pgx.CopyFromRows(rows))
	return copyCount, err
}

// TruncateTickets clears the ticket table for a full re-import.
func (s *Store) TruncateTickets(ctx context.Context) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `TRUNCATE tickets`)
		return err
	})
}

// ListTicketsForAnalysis returns every ticket of a data source ordered by
// creation time, embeddings included. Empty source means all sources.
func (s *Store) ListTicketsForAnalysis(ctx context.Context, source string) ([]models.Ticket, error) {
	query := `SELECT id, created_at, category, subcategory, priority, message, source, embedding FROM tickets`
	var args []any
	if source != "" {
		args = append(args, source)
		query += ` WHERE source = $1`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTickets(rows)
}

// ListTickets is the paged read endpoint query.
func (s *Store) ListTickets(ctx context.Context, category, source, q string, limit, offset int) ([]models.Ticket, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT id, created_at, category, subcategory, priority, message, source, embedding FROM tickets`
	var args []any
	var wheres []string
	if category != "" {
		args = append(args, category)
		wheres = append(wheres, fmt.Sprintf("category = $%d", len(args)))
	}
	if source != "" {
		args = append(args, source)
		wheres = append(wheres, fmt.Sprintf("source = $%d", len(args)))
	}
	if q != "" {
		args = append(args, "%"+q+"%")
		wheres = append(wheres, fmt.Sprintf("(message ILIKE $%d OR id ILIKE $%d)", len(args), len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT $" + fmt.Sprint(len(args)+1) + " OFFSET $" + fmt.Sprint(len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTickets(rows)
}

// CountTickets reports the number of stored tickets for a source.
func (s *Store) CountTickets(ctx context.Context, source string) (int64, error) {
	query := `SELECT COUNT(*) FROM tickets`
	var args []any
	if source != "" {
		args = append(args, source)
		query += ` WHERE source = $1`
	}
	var n int64
	err := s.Pool.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func scanTickets(rows pgx.Rows) ([]models.Ticket, error) {
	var out []models.Ticket
	for rows.Next() {
		var (
			t                               models.Ticket
			createdAt                       time.Time
			category, subcategory, priority *string
			embedding                       []float64
		)
		if err := rows.Scan(&t.ID, &createdAt, &category, &subcategory, &priority, &t.Message, &t.Source, &embedding); err != nil {
			return nil, err
		}
		t.CreatedAt = createdAt
		t.Category = deref(category)
		t.Subcategory = deref(subcategory)
		t.Priority = deref(priority)
		t.Embedding = embedding
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
