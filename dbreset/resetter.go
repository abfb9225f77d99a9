// Package dbreset restores the ticketing store to a fixed seed between tests
// that book tickets.
package dbreset

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"
)

// Ticket is a row of the ticket table.
type Ticket struct {
	ID         int64
	SeatID     int64
	ScheduleID int64
	BillID     int64
}

const (
	// SeedScheduleID is the schedule the seed tickets belong to.
	SeedScheduleID = 1
	// SeedBillID is the bill the seed tickets belong to.
	SeedBillID = 1
)

// DefaultSeed returns the rows present after a reset: seats 5 and 10 booked
// for the seed schedule, so "already booked" scenarios are deterministic.
func DefaultSeed() []Ticket {
	return []Ticket{
		{SeatID: 5, ScheduleID: SeedScheduleID, BillID: SeedBillID},
		{SeatID: 10, ScheduleID: SeedScheduleID, BillID: SeedBillID},
	}
}

// Options configures a Resetter.
type Options struct {
	// Dialect selects identity reset and placeholder syntax.
	// Default: sqlite
	Dialect string
	// Table is the ticket table name.
	// Default: ticket
	Table string
	// Seed rows inserted after clearing the table.
	// Default: DefaultSeed()
	Seed []Ticket
	// Logger defaults to slog.Default()
	Logger *slog.Logger
}

// Resetter deletes all tickets, restarts the id counter and inserts the seed rows.
type Resetter struct {
	db      *sql.DB
	dialect Dialect
	table   string
	seed    []Ticket
	logger  *slog.Logger
}

// New creates a resetter for db.
func New(db *sql.DB, options Options) (*Resetter, error) {
	if options.Dialect == "" {
		options.Dialect = "sqlite"
	}
	if options.Table == "" {
		options.Table = "ticket"
	}
	if options.Seed == nil {
		options.Seed = DefaultSeed()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	dialect, err := LookupDialect(options.Dialect)
	if err != nil {
		return nil, err
	}
	if !validIdentifier(options.Table) {
		return nil, fmt.Errorf("invalid table name %q", options.Table)
	}

	return &Resetter{
		db:      db,
		dialect: dialect,
		table:   options.Table,
		seed:    options.Seed,
		logger:  options.Logger.With(slog.String("component", "dbreset")),
	}, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Reset restores the seed state. Running it repeatedly yields the same rows
// with the same ids.
func (r *Resetter) Reset(ctx context.Context) error {
	if r.dialect.IdentityCommits {
		// The emptied table is committed before the identity restart, so the
		// counter can go back to 1 and the seed rows are inserted afterwards.
		if err := r.inTx(ctx, r.deleteAll); err != nil {
			return err
		}
		if err := r.resetIdentity(ctx, r.db); err != nil {
			return err
		}
		if err := r.inTx(ctx, r.insertSeed); err != nil {
			return err
		}
	} else {
		err := r.inTx(ctx, func(ctx context.Context, tx execer) error {
			if err := r.deleteAll(ctx, tx); err != nil {
				return err
			}
			if err := r.resetIdentity(ctx, tx); err != nil {
				return err
			}
			return r.insertSeed(ctx, tx)
		})
		if err != nil {
			return err
		}
	}

	r.logger.Debug("Reset ticket table",
		slog.String("table", r.table),
		slog.Any("seats", lo.Map(r.seed, func(t Ticket, _ int) int64 { return t.SeatID })),
	)

	return nil
}

func (r *Resetter) inTx(ctx context.Context, fn func(ctx context.Context, tx execer) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning reset transaction: %w", err)
	}
	defer func() {
		// No-op after a successful commit
		_ = tx.Rollback()
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reset: %w", err)
	}
	return nil
}

func (r *Resetter) deleteAll(ctx context.Context, ex execer) error {
	if _, err := ex.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", r.table)); err != nil {
		return fmt.Errorf("deleting tickets: %w", err)
	}
	return nil
}

func (r *Resetter) resetIdentity(ctx context.Context, ex execer) error {
	if _, err := ex.ExecContext(ctx, r.dialect.ResetIdentity(r.table)); err != nil {
		return fmt.Errorf("resetting ticket identity: %w", err)
	}
	return nil
}

func (r *Resetter) insertSeed(ctx context.Context, ex execer) error {
	insert := r.insertStatement()
	for _, t := range r.seed {
		if _, err := ex.ExecContext(ctx, insert, t.SeatID, t.ScheduleID, t.BillID); err != nil {
			return fmt.Errorf("inserting seed ticket for seat %d: %w", t.SeatID, err)
		}
	}
	return nil
}

// ResetOrLog resets and logs a failure instead of returning it. The store may
// then be inconsistent for the next test.
func (r *Resetter) ResetOrLog(ctx context.Context) {
	if err := r.Reset(ctx); err != nil {
		r.logger.Error("Database reset failed, ticket data may be inconsistent", slog.Any("err", err))
	}
}

// Rows returns all tickets ordered by id.
func (r *Resetter) Rows(ctx context.Context) ([]Ticket, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf("SELECT id, seat_id, schedule_id, bill_id FROM %s ORDER BY id", r.table))
	if err != nil {
		return nil, fmt.Errorf("querying tickets: %w", err)
	}
	defer rows.Close()

	var tickets []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.SeatID, &t.ScheduleID, &t.BillID); err != nil {
			return nil, fmt.Errorf("scanning ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *Resetter) insertStatement() string {
	placeholders := lo.Map([]int{1, 2, 3}, func(n int, _ int) string { return r.dialect.Placeholder(n) })
	return fmt.Sprintf("INSERT INTO %s (seat_id, schedule_id, bill_id) VALUES (%s)", r.table, strings.Join(placeholders, ", "))
}
