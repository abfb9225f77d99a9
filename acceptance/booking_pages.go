//go:build acceptance
// +build acceptance

package acceptance

import (
	"fmt"
	"regexp"
	"strconv"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
)

// BookingFlow drives the purchase pages: branch, schedule, room, seats, bill.
type BookingFlow struct {
	Page   playwright.Page
	expect playwright.PlaywrightAssertions
	t      *testing.T
}

func NewBookingFlow(t *testing.T, page playwright.Page, expect playwright.PlaywrightAssertions) *BookingFlow {
	return &BookingFlow{Page: page, expect: expect, t: t}
}

// BuyTicket clicks "Mua vé" on the movie card of the home page.
func (bf *BookingFlow) BuyTicket(movie string) {
	bf.t.Helper()

	card := bf.Page.Locator("div.card.movie-item").Filter(playwright.LocatorFilterOptions{HasText: movie})
	require.NoError(bf.t, card.GetByText("Mua vé").Click(), "failed to click Mua vé for %s", movie)
}

// ChooseBranch follows the link of a branch card.
func (bf *BookingFlow) ChooseBranch(branch string) {
	bf.t.Helper()

	card := bf.Page.Locator("div.card.branch-item").Filter(playwright.LocatorFilterOptions{HasText: branch})
	require.NoError(bf.t, card.GetByRole(*playwright.AriaRoleLink).Click(), "failed to choose branch %s", branch)
	require.NoError(bf.t, bf.expect.Page(bf.Page).ToHaveURL(regexp.MustCompile(`/schedule\?`)))
}

func (bf *BookingFlow) DateSelect() playwright.Locator {
	return bf.Page.Locator("#listDate")
}

func (bf *BookingFlow) TimeSelect() playwright.Locator {
	return bf.Page.Locator("#listTimes")
}

// SelectSchedule picks date and time by option value.
func (bf *BookingFlow) SelectSchedule(date, time string) {
	bf.t.Helper()

	_, err := bf.DateSelect().SelectOption(playwright.SelectOptionValues{Values: &[]string{date}})
	require.NoError(bf.t, err, "failed to select date %s", date)
	_, err = bf.TimeSelect().SelectOption(playwright.SelectOptionValues{Values: &[]string{time}})
	require.NoError(bf.t, err, "failed to select time %s", time)
}

// SubmitSchedule posts the schedule form and waits for the room selection.
func (bf *BookingFlow) SubmitSchedule() {
	bf.t.Helper()

	submit := bf.Page.Locator(`input[type="submit"].btn.btn-outline-danger.btn-block`)
	require.NoError(bf.t, bf.expect.Locator(submit).ToBeVisible())
	require.NoError(bf.t, submit.Click())
	require.NoError(bf.t, bf.expect.Page(bf.Page).ToHaveURL(regexp.MustCompile(`/room-selection$`)))
	require.NoError(bf.t, bf.expect.Locator(bf.Page.Locator("h2.container")).ToHaveText("Chọn Phòng"))
}

// ChooseRoom follows the link of a room card.
func (bf *BookingFlow) ChooseRoom(room string) {
	bf.t.Helper()

	card := bf.Page.Locator("div.card.branch-item").Filter(playwright.LocatorFilterOptions{HasText: room})
	require.NoError(bf.t, card.GetByRole(*playwright.AriaRoleLink).Click(), "failed to choose room %s", room)
	bf.ExpectSeatSelection()
}

// OpenSeatSelection navigates directly to the seat map of a schedule.
func (bf *BookingFlow) OpenSeatSelection(movieID, branchID int, date, time string, roomID int) {
	bf.t.Helper()

	_, err := bf.Page.Goto(fmt.Sprintf("/seat-selection?movieId=%d&branchId=%d&startDate=%s&startTime=%s&roomId=%d",
		movieID, branchID, date, time, roomID))
	require.NoError(bf.t, err)
	bf.ExpectSeatSelection()
}

func (bf *BookingFlow) ExpectSeatSelection() {
	bf.t.Helper()

	require.NoError(bf.t, bf.expect.Page(bf.Page).ToHaveURL(regexp.MustCompile(`seat-selection`)))
	require.NoError(bf.t, bf.expect.Locator(bf.Page.Locator("div.container > h1")).ToHaveText("Chọn Chỗ Ngồi"))
}

// Seat locates the checkbox of a seat.
func (bf *BookingFlow) Seat(seat int) playwright.Locator {
	return bf.Page.Locator("input[name='seats'][value='" + strconv.Itoa(seat) + "']")
}

// SeatSubmit locates the button continuing to the bill.
func (bf *BookingFlow) SeatSubmit() playwright.Locator {
	return bf.Page.Locator("input[type='submit'].btn-outline-danger")
}

// CheckSeats checks each seat and asserts it is checked.
func (bf *BookingFlow) CheckSeats(seats ...int) {
	bf.t.Helper()

	for _, seat := range seats {
		require.NoError(bf.t, bf.Seat(seat).Check(), "failed to check seat %d", seat)
		require.NoError(bf.t, bf.expect.Locator(bf.Seat(seat)).ToBeChecked())
	}
}

// SubmitSeats continues to the bill and waits for it.
func (bf *BookingFlow) SubmitSeats() {
	bf.t.Helper()

	require.NoError(bf.t, bf.expect.Locator(bf.SeatSubmit()).ToBeEnabled())
	require.NoError(bf.t, bf.SeatSubmit().Click())
	require.NoError(bf.t, bf.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	}))
	require.NoError(bf.t, bf.expect.Page(bf.Page).ToHaveURL(regexp.MustCompile(`/bill$`)))
	require.NoError(bf.t, bf.expect.Locator(bf.Page.Locator("div.container > h2")).ToHaveText("Thanh toán hóa đơn"))
}

// PayButton locates the payment confirmation on the bill page.
func (bf *BookingFlow) PayButton() playwright.Locator {
	return bf.Page.Locator("a.btn.btn-outline-danger.btn-block")
}

// Pay confirms the bill and waits for the ticket history.
func (bf *BookingFlow) Pay() {
	bf.t.Helper()

	require.NoError(bf.t, bf.expect.Locator(bf.PayButton()).ToBeVisible())
	require.NoError(bf.t, bf.PayButton().Click())
	require.NoError(bf.t, bf.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	}))
	bf.ExpectHistory()
}

func (bf *BookingFlow) ExpectHistory() {
	bf.t.Helper()

	require.NoError(bf.t, bf.expect.Page(bf.Page).ToHaveURL(regexp.MustCompile(`/tickets/history$`)))
	require.NoError(bf.t, bf.expect.Locator(bf.Page.Locator("div.container-fluid > h2")).ToHaveText("Lịch Sử Mua Vé"))
}
