// Package repository contains data access logic separated from HTTP handlers.
// This file stores and reads the audit trail of admission checks.  Each
// evaluated batch becomes one row in `admission_checks`.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to define custom error values

	"github.com/iliyamo/cinema-admission/internal/model"
)

// ErrCheckNotFound is returned when an admission check cannot be found in the DB.
var ErrCheckNotFound = errors.New("admission check not found")

// AdmissionRepo encapsulates all database queries related to admission checks.
type AdmissionRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewAdmissionRepo constructs an AdmissionRepo with the provided DB handle.
func NewAdmissionRepo(db *sql.DB) *AdmissionRepo {
	return &AdmissionRepo{db: db}
}

const checkColumns = "id, input_text, output_text, valid, admitted, ticket_count, rejected_count, locale, created_at"

// Create inserts a check and populates its ID and CreatedAt.
func (r *AdmissionRepo) Create(ctx context.Context, c *model.AdmissionCheck) error {
	const qInsert = `INSERT INTO admission_checks
		(input_text, output_text, valid, admitted, ticket_count, rejected_count, locale)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		c.Input, c.Output, c.Valid, c.Admitted, c.TicketCount, c.RejectedCount, c.Locale)
	if err != nil {
		return err // propagate DB errors to the caller
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)

	// Read back the DB default for created_at.
	const qSelect = "SELECT created_at FROM admission_checks WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, c.ID).Scan(&c.CreatedAt)
}

// GetByID fetches a check by its ID.  It returns ErrCheckNotFound if no row
// is found.
func (r *AdmissionRepo) GetByID(ctx context.Context, id uint64) (*model.AdmissionCheck, error) {
	const q = "SELECT " + checkColumns + " FROM admission_checks WHERE id = ?"
	c, err := scanCheck(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCheckNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns checks newest first.  When no rows exist it returns an empty
// slice and nil error.
func (r *AdmissionRepo) List(ctx context.Context, limit, offset int) ([]model.AdmissionCheck, error) {
	const q = "SELECT " + checkColumns + " FROM admission_checks ORDER BY id DESC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.AdmissionCheck, 0, limit)
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheck(s rowScanner) (*model.AdmissionCheck, error) {
	var c model.AdmissionCheck
	if err := s.Scan(&c.ID, &c.Input, &c.Output, &c.Valid, &c.Admitted,
		&c.TicketCount, &c.RejectedCount, &c.Locale, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
