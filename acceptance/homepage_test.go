//go:build acceptance
// +build acceptance

package acceptance

import (
	"regexp"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomepage_CarouselAutoScroll(t *testing.T) {
	WithPage(t, func(t *testing.T, f *TestFixtures) {
		f.Home.Open()

		first := f.Home.ActiveSlide()
		next := f.Home.WaitForSlideChange(first, 8*time.Second)

		assert.NotEqual(t, first, next)
	})
}

func TestHomepage_CarouselManualControls(t *testing.T) {
	WithPage(t, func(t *testing.T, f *TestFixtures) {
		f.Home.Open()

		first := f.Home.ActiveSlide()
		f.Home.NextSlide()
		afterNext := f.Home.WaitForSlideChange(first, 2*time.Second)
		assert.NotEqual(t, first, afterNext)

		f.Home.PrevSlide()
		afterPrev := f.Home.WaitForSlideChange(afterNext, 2*time.Second)
		assert.Equal(t, first, afterPrev)
	})
}

func TestHomepage_MovieDetailsAnonymous(t *testing.T) {
	WithPage(t, func(t *testing.T, f *TestFixtures) {
		f.Home.Open()

		require.NoError(t, f.Home.MovieCard("Người Nhện").GetByText("Chi tiết").Click())

		require.NoError(t, f.Expect.Page(f.Page).ToHaveURL(regexp.MustCompile(`/movie-details\?movieId=7$`)))
		require.NoError(t, f.Expect.Locator(f.Page.GetByText("Chi Tiết Phim")).ToBeVisible())
		require.NoError(t, f.Expect.Locator(f.Page.GetByText("Giới Thiệu:")).ToBeVisible())
	})
}

func TestHomepage_MovieDetailsLoggedIn(t *testing.T) {
	WithLoggedInPage(t, func(t *testing.T, f *TestFixtures) {
		f.Home.Open()

		require.NoError(t, f.Home.MovieCard("Người Nhện").GetByText("Chi tiết").Click())

		require.NoError(t, f.Expect.Locator(f.Page.GetByText("Chi Tiết Phim")).ToBeVisible())
		require.NoError(t, f.Expect.Locator(f.Page.GetByText("Giới Thiệu:")).ToBeVisible())
	})
}

func TestHomepage_SearchMovieExists(t *testing.T) {
	WithPage(t, func(t *testing.T, f *TestFixtures) {
		f.Home.Open()

		searchButton := f.Page.Locator("button.search-btn")
		require.NoError(t, searchButton.Click())
		require.NoError(t, f.Page.Locator("input[name='movie-name']").Fill("Người nhện"))
		require.NoError(t, searchButton.Click())

		require.NoError(t, f.Expect.Page(f.Page).ToHaveURL(regexp.MustCompile(`/$`)))
		require.NoError(t, f.Expect.Locator(f.Home.MovieCard("Người Nhện")).ToBeVisible())
		require.NoError(t, f.Expect.Locator(f.Home.MovieCard("Bố Già")).ToBeHidden())
	})
}

func TestHomepage_SearchMovieDoesNotExist(t *testing.T) {
	WithPage(t, func(t *testing.T, f *TestFixtures) {
		f.Home.Open()

		searchButton := f.Page.Locator("button.search-btn")
		require.NoError(t, searchButton.Click())
		require.NoError(t, f.Page.Locator("input[name='movie-name']").Fill("asdfghjkl"))
		require.NoError(t, searchButton.Click())

		require.NoError(t, f.Expect.Locator(f.Page.GetByText("Chúng Tôi Không Tìm Thấy Phim Của Bạn")).ToBeVisible())
		require.NoError(t, f.Expect.Locator(f.Home.Link("Quay Lại Trang Chủ")).ToBeVisible())
	})
}

func TestHomepage_BuyTicketAnonymousOpensLogin(t *testing.T) {
	WithPage(t, func(t *testing.T, f *TestFixtures) {
		f.Home.Open()

		f.Booking.BuyTicket("Người Nhện")

		require.NoError(t, f.Expect.Locator(f.Home.LoginModal()).ToBeVisible())
	})
}

func TestHomepage_BuyTicketLoggedInShowsBranches(t *testing.T) {
	WithLoggedInPage(t, func(t *testing.T, f *TestFixtures) {
		f.Home.Open()

		f.Booking.BuyTicket("Người Nhện")

		require.NoError(t, f.Expect.Page(f.Page).ToHaveURL(regexp.MustCompile(`/branches\?movieId=7$`)))
		require.NoError(t, f.Expect.Locator(f.Page.Locator("h2")).ToHaveText("Chọn Chi Nhánh"))

		for _, name := range []string{"HUYCINEMA Hà Đông", "HUYCINEMA Thủ Đức"} {
			card := f.Page.Locator("div.card.branch-item").Filter(playwright.LocatorFilterOptions{HasText: name})
			require.NoError(t, f.Expect.Locator(card).ToBeVisible(), "branch %s", name)
		}
	})
}

func TestHomepage_SelectBranch(t *testing.T) {
	WithLoggedInPage(t, func(t *testing.T, f *TestFixtures) {
		f.Home.Open()

		f.Booking.BuyTicket("Người Nhện")
		f.Booking.ChooseBranch("HUYCINEMA Hà Đông")

		require.NoError(t, f.Expect.Page(f.Page).ToHaveURL(regexp.MustCompile(`/schedule\?movieId=7&branchId=1$`)))
	})
}
