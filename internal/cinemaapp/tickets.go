package cinemaapp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// ErrSeatTaken is returned when a seat of a booking is already sold.
var ErrSeatTaken = errors.New("seat already booked")

// BookedTicket is a ticket row of a user.
type BookedTicket struct {
	ID         int64     `json:"id"`
	SeatID     int64     `json:"seatId"`
	ScheduleID int64     `json:"scheduleId"`
	BillID     int64     `json:"billId"`
	UserID     int64     `json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ticketStore reads and writes the ticket table created by the dbreset migrations.
type ticketStore struct {
	db *sql.DB
}

func (s *ticketStore) bookedSeats(ctx context.Context, scheduleID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT seat_id FROM ticket WHERE schedule_id = ? ORDER BY seat_id", scheduleID)
	if err != nil {
		return nil, fmt.Errorf("querying booked seats: %w", err)
	}
	defer rows.Close()

	var seats []int64
	for rows.Next() {
		var seat int64
		if err := rows.Scan(&seat); err != nil {
			return nil, fmt.Errorf("scanning seat: %w", err)
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

// book inserts one ticket per seat on a new bill and returns the bill id.
func (s *ticketStore) book(ctx context.Context, userID int64, b Booking) (int64, error) {
	if len(b.Seats) == 0 {
		return 0, errors.New("booking without seats")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning booking transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	placeholders := strings.Repeat("?, ", len(b.Seats))
	args := append([]any{b.ScheduleID}, lo.ToAnySlice(b.Seats)...)
	var taken int
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM ticket WHERE schedule_id = ? AND seat_id IN (%s)", strings.TrimSuffix(placeholders, ", ")),
		args...,
	).Scan(&taken)
	if err != nil {
		return 0, fmt.Errorf("checking seats: %w", err)
	}
	if taken > 0 {
		return 0, ErrSeatTaken
	}

	var billID int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(bill_id), 0) + 1 FROM ticket").Scan(&billID); err != nil {
		return 0, fmt.Errorf("allocating bill: %w", err)
	}

	for _, seat := range b.Seats {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO ticket (seat_id, schedule_id, bill_id, user_id) VALUES (?, ?, ?, ?)",
			seat, b.ScheduleID, billID, userID,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting ticket for seat %d: %w", seat, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing booking: %w", err)
	}
	return billID, nil
}

func (s *ticketStore) forUser(ctx context.Context, userID int64) ([]BookedTicket, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, seat_id, schedule_id, bill_id, user_id, CAST(strftime('%s', created_at) AS INTEGER) FROM ticket WHERE user_id = ? ORDER BY id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying tickets: %w", err)
	}
	defer rows.Close()

	tickets := []BookedTicket{}
	for rows.Next() {
		var (
			t       BookedTicket
			created int64
		)
		if err := rows.Scan(&t.ID, &t.SeatID, &t.ScheduleID, &t.BillID, &t.UserID, &created); err != nil {
			return nil, fmt.Errorf("scanning ticket: %w", err)
		}
		t.CreatedAt = time.Unix(created, 0).UTC()
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}
