package views

//go:generate go run github.com/a-h/templ/cmd/templ generate

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/samber/lo"
)

// FormatPrice groups thousands with dots: 150000 -> 150.000
func FormatPrice(v int64) string {
	s := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SeatSelectionURL links to the seat map of one room for a chosen showing.
func SeatSelectionURL(movieID, branchID int64, startDate, startTime string, roomID int64) templ.SafeURL {
	q := url.Values{}
	q.Set("movieId", strconv.FormatInt(movieID, 10))
	q.Set("branchId", strconv.FormatInt(branchID, 10))
	q.Set("startDate", startDate)
	q.Set("startTime", startTime)
	q.Set("roomId", strconv.FormatInt(roomID, 10))
	return templ.SafeURL("/seat-selection?" + q.Encode())
}

func movieDetailsURL(movieID int64) templ.SafeURL {
	return templ.URL(fmt.Sprintf("/movie-details?movieId=%d", movieID))
}

func branchesURL(movieID int64) templ.SafeURL {
	return templ.URL(fmt.Sprintf("/branches?movieId=%d", movieID))
}

func scheduleURL(movieID, branchID int64) templ.SafeURL {
	return templ.URL(fmt.Sprintf("/schedule?movieId=%d&branchId=%d", movieID, branchID))
}

func seatID(seat int) string {
	return fmt.Sprintf("seat-%d", seat)
}

func seatList(seats []int64) string {
	return strings.Join(lo.Map(seats, func(s int64, _ int) string { return strconv.FormatInt(s, 10) }), ", ")
}
