package repository

import (
	"context"
	"cozy_nook/internal/models"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type OrderSQLite struct {
	db *sql.DB
}

func NewOrderSQLite(db *sql.DB) *OrderSQLite { return &OrderSQLite{db: db} }

var _ OrderRepo = (*OrderSQLite)(nil)

const (
	insertOrderSQL = `INSERT INTO orders (id, username, placed_at, lines, total) VALUES (?, ?, ?, ?, ?)`
	selectOrderSQL = `SELECT id, username, placed_at, lines, total FROM orders`

	sqliteTimestampLayout = "2006-01-02 15:04:05"
)

// Append inserts a new order. If ID or PlacedAt are empty, they're set.
func (r *OrderSQLite) Append(ctx context.Context, o models.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.PlacedAt.IsZero() {
		o.PlacedAt = time.Now().UTC()
	} else {
		o.PlacedAt = o.PlacedAt.UTC()
	}
	if o.Lines == nil {
		o.Lines = []models.OrderLine{}
	}

	lines, err := json.Marshal(o.Lines)
	if err != nil {
		return fmt.Errorf("encode order %s lines: %w", o.ID, err)
	}

	_, err = r.db.ExecContext(ctx, insertOrderSQL,
		o.ID,
		o.Username,
		o.PlacedAt.Format(sqliteTimestampLayout),
		string(lines),
		o.Total,
	)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", o.ID, err)
	}
	return nil
}

// List returns orders filtered by [from, to] (inclusive) and/or username, oldest first.
func (r *OrderSQLite) List(ctx context.Context, from, to time.Time, username string) ([]models.Order, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "placed_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimestampLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "placed_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimestampLayout))
	}
	if username = strings.TrimSpace(username); username != "" {
		conds = append(conds, "username = ?")
		args = append(args, username)
	}

	q := selectOrderSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY placed_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	out := make([]models.Order, 0, 16)
	for rows.Next() {
		var (
			o        models.Order
			placedAt string
			lines    string
		)
		if err := rows.Scan(&o.ID, &o.Username, &placedAt, &lines, &o.Total); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if o.PlacedAt, err = parseTimestamp(placedAt); err != nil {
			return nil, fmt.Errorf("order %s placed_at: %w", o.ID, err)
		}
		if err := json.Unmarshal([]byte(lines), &o.Lines); err != nil {
			return nil, fmt.Errorf("decode order %s lines: %w", o.ID, err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// parseTimestamp accepts the layout Append writes and RFC3339, which the
// sqlite driver may hand back for TIMESTAMP columns.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{sqliteTimestampLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
