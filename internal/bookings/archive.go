// Package bookings persists completed bookings to Postgres. The archive is
// optional: with no database configured the assistant still books, it just
// keeps the record in the session alone.
package bookings

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kaidodd21-ctrl/kai-assistant/internal/session"
	"github.com/kaidodd21-ctrl/kai-assistant/pkg/logging"
)

// Archive writes completed bookings to the bookings table. A nil *Archive is
// a no-op, so callers never need to branch on whether persistence is wired.
type Archive struct {
	db     *sql.DB
	logger *logging.Logger
}

func NewArchive(db *sql.DB, logger *logging.Logger) *Archive {
	if db == nil {
		panic("bookings: db required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Archive{db: db, logger: logger}
}

const insertBookingSQL = `
INSERT INTO bookings (id, session_id, service, scheduled_for, customer_name, contact, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Record inserts one completed booking row.
func (a *Archive) Record(ctx context.Context, sessionID string, b session.Booking) error {
	if a == nil {
		return nil
	}
	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := a.db.ExecContext(ctx, insertBookingSQL,
		uuid.NewString(), sessionID, b.Service, b.DateTime.At, b.Name, b.Contact, createdAt)
	if err != nil {
		return fmt.Errorf("bookings: insert: %w", err)
	}
	a.logger.Info("booking archived", "session_id", sessionID, "service", b.Service)
	return nil
}

// BookingRow is one archived booking as read back from the database.
type BookingRow struct {
	ID           string
	SessionID    string
	Service      string
	ScheduledFor time.Time
	CustomerName string
	Contact      string
	CreatedAt    time.Time
}

const recentBookingsSQL = `
SELECT id, session_id, service, scheduled_for, customer_name, contact, created_at
FROM bookings
ORDER BY created_at DESC
LIMIT $1`

// Recent lists the latest archived bookings, newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]BookingRow, error) {
	if a == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := a.db.QueryContext(ctx, recentBookingsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("bookings: list recent: %w", err)
	}
	defer rows.Close()

	var out []BookingRow
	for rows.Next() {
		var r BookingRow
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Service, &r.ScheduledFor, &r.CustomerName, &r.Contact, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("bookings: scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: iterate: %w", err)
	}
	return out, nil
}
