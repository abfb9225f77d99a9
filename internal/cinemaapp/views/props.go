package views

import (
	"github.com/a-h/templ"
	"github.com/samber/lo"
)

type User struct {
	Name  string
	Email string
}

// LayoutProps holds what every page renders around its body: the navigation
// for the current user and the login and register modals.
type LayoutProps struct {
	User *User

	LoginOpen     bool
	LoginEmail    string
	LoginError    string
	RegisterOpen  bool
	RegisterName  string
	RegisterEmail string
	RegisterError string
}

type Movie struct {
	ID          int64
	Name        string
	Description string
	Poster      string
}

type Branch struct {
	ID      int64
	Name    string
	Address string
}

type ScheduleProps struct {
	Movie  Movie
	Branch Branch
	Dates  []string
	Times  []string
}

type RoomOption struct {
	Name string
	URL  templ.SafeURL
}

// Screening names one showing of a movie by display labels.
type Screening struct {
	ScheduleID int64
	Movie      string
	Branch     string
	Room       string
	StartDate  string
	StartTime  string
}

type SeatSelectionProps struct {
	Screening Screening
	Seats     int
	Booked    []int64
	Error     string
}

func (p SeatSelectionProps) isBooked(seat int) bool {
	return lo.Contains(p.Booked, int64(seat))
}

type BillProps struct {
	Screening Screening
	Seats     []int64
	Total     int64
}

type HistoryRow struct {
	TicketID  int64
	Screening Screening
	SeatID    int64
	BillID    int64
}
