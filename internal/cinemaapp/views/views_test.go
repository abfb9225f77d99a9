package views

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()

	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	return sb.String()
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "0", FormatPrice(0))
	assert.Equal(t, "75.000", FormatPrice(75000))
	assert.Equal(t, "150.000", FormatPrice(150000))
	assert.Equal(t, "1.500.000", FormatPrice(1500000))
}

func TestSeatSelectionURL_EncodesQuery(t *testing.T) {
	u := SeatSelectionURL(7, 1, "2021-01-05", "10:15", 2)
	assert.Equal(t, templ.SafeURL("/seat-selection?branchId=1&movieId=7&roomId=2&startDate=2021-01-05&startTime=10%3A15"), u)

	u = SeatSelectionURL(7, 1, "2021-01-05&roomId=9", "10:15 #x", 2)
	assert.Equal(t, templ.SafeURL("/seat-selection?branchId=1&movieId=7&roomId=2&startDate=2021-01-05%26roomId%3D9&startTime=10%3A15+%23x"), u)
}

func TestRoomSelection_LinksRooms(t *testing.T) {
	html := renderString(t, RoomSelection([]RoomOption{
		{Name: "Phòng <101>", URL: SeatSelectionURL(7, 1, "2021-01-05", "10:15", 1)},
	}))

	assert.Contains(t, html, `<h5 class="card-title">Phòng &lt;101&gt;</h5>`)
	assert.Contains(t, html, `href="/seat-selection?branchId=1&amp;movieId=7&amp;roomId=1&amp;startDate=2021-01-05&amp;startTime=10%3A15"`)
	assert.NotContains(t, html, "Không có phòng chiếu phù hợp.")

	html = renderString(t, RoomSelection(nil))
	assert.Contains(t, html, "Không có phòng chiếu phù hợp.")
}

func TestSeatSelection_MarksBookedSeats(t *testing.T) {
	html := renderString(t, SeatSelection(SeatSelectionProps{
		Screening: Screening{ScheduleID: 4, Movie: "Tenet", Branch: "Hà Đông", Room: "Phòng 101", StartDate: "2021-01-05", StartTime: "10:15"},
		Seats:     3,
		Booked:    []int64{2},
		Error:     "Ghế đã được đặt",
	}))

	assert.Contains(t, html, `<input type="hidden" name="scheduleId" value="4">`)
	assert.Contains(t, html, `<span class="seat"><input type="checkbox" id="seat-1" name="seats" value="1">`)
	assert.Contains(t, html, `<span class="seat booked"><input type="checkbox" id="seat-2" name="seats" value="2" disabled>`)
	assert.NotContains(t, html, `id="seat-4"`)
	assert.Contains(t, html, `<p class="text-danger">Ghế đã được đặt</p>`)
}

func TestLayout_AnonymousAndLoggedIn(t *testing.T) {
	body := templ.Raw("<main>content</main>")

	html := renderString(t, Layout(LayoutProps{LoginOpen: true, LoginEmail: `a"b@c.de`, LoginError: "Sai"}, body))
	assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
	assert.Contains(t, html, `<link rel="stylesheet" href="/static/app.css">`)
	assert.Contains(t, html, `<script src="/static/app.js"></script>`)
	assert.Contains(t, html, "<main>content</main>")
	assert.Contains(t, html, `<div class="modal show" id="modalLoginForm"`)
	assert.Contains(t, html, `<div class="modal" id="modalRegisterForm"`)
	assert.Contains(t, html, `value="a&#34;b@c.de"`)
	assert.Contains(t, html, `<p class="text-danger">Sai</p>`)

	html = renderString(t, Layout(LayoutProps{User: &User{Name: "Huy"}}, body))
	assert.Contains(t, html, `<span class="nav-link user-name">Huy</span>`)
	assert.Contains(t, html, `href="/tickets/history">Lịch sử mua vé</a>`)
	assert.NotContains(t, html, `id="modalLoginForm"`)
}

func TestBill_ShowsSeatsAndTotal(t *testing.T) {
	html := renderString(t, Bill(BillProps{Seats: []int64{3, 4}, Total: 150000}))

	assert.Contains(t, html, `<td class="bill-seats">3, 4</td>`)
	assert.Contains(t, html, `<td class="bill-total">150.000 VND</td>`)
}
