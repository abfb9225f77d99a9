//go:build acceptance
// +build acceptance

package acceptance

import (
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
)

// HomePage provides helper methods for the landing page: navigation,
// carousel, movie cards and the login and register modals.
type HomePage struct {
	Page   playwright.Page
	expect playwright.PlaywrightAssertions
	t      *testing.T
}

// NewHomePage wraps page without navigating.
func NewHomePage(t *testing.T, page playwright.Page, expect playwright.PlaywrightAssertions) *HomePage {
	return &HomePage{Page: page, expect: expect, t: t}
}

// Open navigates to the application root.
func (hp *HomePage) Open() *HomePage {
	hp.t.Helper()

	_, err := hp.Page.Goto("/")
	require.NoError(hp.t, err, "failed to open home page")
	return hp
}

// Link locates a link by its accessible name.
func (hp *HomePage) Link(name string) playwright.Locator {
	return hp.Page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{
		Name: name,
	})
}

// Text locates an element by its text.
func (hp *HomePage) Text(text string) playwright.Locator {
	return hp.Page.GetByText(text)
}

func (hp *HomePage) textbox(name string) playwright.Locator {
	return hp.Page.GetByRole(*playwright.AriaRoleTextbox, playwright.PageGetByRoleOptions{
		Name: name,
	})
}

// LoginModal locates the login dialog.
func (hp *HomePage) LoginModal() playwright.Locator {
	return hp.Page.Locator("#modalLoginForm")
}

// RegisterModal locates the registration dialog.
func (hp *HomePage) RegisterModal() playwright.Locator {
	return hp.Page.Locator("#modalRegisterForm")
}

// OpenLoginModal clicks the navigation trigger and waits for the dialog.
func (hp *HomePage) OpenLoginModal() {
	hp.t.Helper()

	require.NoError(hp.t, hp.Page.Locator("a[data-target='#modalLoginForm']").Click(), "failed to click login trigger")
	require.NoError(hp.t, hp.expect.Locator(hp.LoginModal()).ToBeVisible(), "login modal did not open")
}

// OpenRegisterModal clicks the navigation trigger and waits for the dialog.
func (hp *HomePage) OpenRegisterModal() {
	hp.t.Helper()

	require.NoError(hp.t, hp.Page.Locator("a[data-target='#modalRegisterForm']").Click(), "failed to click register trigger")
	require.NoError(hp.t, hp.expect.Locator(hp.RegisterModal()).ToBeVisible(), "register modal did not open")
}

// FillLogin fills the visible email and password inputs of the login modal.
func (hp *HomePage) FillLogin(email, password string) {
	hp.t.Helper()

	require.NoError(hp.t, hp.textbox("Email").Fill(email))
	require.NoError(hp.t, hp.textbox("Mật khẩu").Fill(password))
}

// SubmitLogin clicks the submit button inside the login modal.
func (hp *HomePage) SubmitLogin() {
	hp.t.Helper()

	require.NoError(hp.t, hp.LoginModal().Locator("button[type='submit']").Click(), "failed to submit login")
}

// LogIn performs the complete login through the modal.
func (hp *HomePage) LogIn(email, password string) {
	hp.t.Helper()

	hp.OpenLoginModal()
	hp.FillLogin(email, password)
	hp.SubmitLogin()
}

// RegisterForm holds the values typed into the registration modal. Empty
// fields are left untouched.
type RegisterForm struct {
	Name     string
	Email    string
	Password string
}

// Register fills and submits the registration modal.
func (hp *HomePage) Register(form RegisterForm) {
	hp.t.Helper()

	hp.OpenRegisterModal()
	if form.Name != "" {
		require.NoError(hp.t, hp.Page.GetByLabel("Họ tên").Fill(form.Name))
	}
	if form.Email != "" {
		require.NoError(hp.t, hp.textbox("Email").Fill(form.Email))
	}
	if form.Password != "" {
		require.NoError(hp.t, hp.textbox("Mật khẩu").Fill(form.Password))
	}
	require.NoError(hp.t, hp.RegisterModal().Locator("button[type='submit']").Click(), "failed to submit registration")
}

// ExpectLoggedIn asserts the controls only shown to an authenticated user.
func (hp *HomePage) ExpectLoggedIn(name string) {
	hp.t.Helper()

	require.NoError(hp.t, hp.expect.Locator(hp.Text(name)).ToBeVisible(), "user name %q not visible", name)
	require.NoError(hp.t, hp.expect.Locator(hp.Link("Lịch sử mua vé")).ToBeVisible())
	require.NoError(hp.t, hp.expect.Locator(hp.Link("Đăng xuất")).ToBeVisible())
}

// ExpectLoggedOut asserts the anonymous navigation.
func (hp *HomePage) ExpectLoggedOut() {
	hp.t.Helper()

	require.NoError(hp.t, hp.expect.Locator(hp.Link("Đăng nhập")).ToBeVisible())
	require.NoError(hp.t, hp.expect.Locator(hp.Link("Đăng ký")).ToBeVisible())
	require.NoError(hp.t, hp.expect.Locator(hp.Link("Lịch sử mua vé")).ToBeHidden())
	require.NoError(hp.t, hp.expect.Locator(hp.Link("Đăng xuất")).ToBeHidden())
}

// MovieCard locates the card of a movie by name.
func (hp *HomePage) MovieCard(name string) playwright.Locator {
	return hp.Page.Locator("div.card.movie-item").Filter(playwright.LocatorFilterOptions{
		HasText: name,
	})
}

// ActiveSlide returns the index of the active carousel indicator.
func (hp *HomePage) ActiveSlide() string {
	hp.t.Helper()

	slide, err := hp.Page.Locator("ul.carousel-indicators li.active").GetAttribute("data-slide-to")
	require.NoError(hp.t, err, "failed to read active slide")
	return slide
}

// NextSlide clicks the carousel forward control.
func (hp *HomePage) NextSlide() {
	hp.t.Helper()
	require.NoError(hp.t, hp.Page.Locator("a.carousel-control-next").Click())
}

// PrevSlide clicks the carousel back control.
func (hp *HomePage) PrevSlide() {
	hp.t.Helper()
	require.NoError(hp.t, hp.Page.Locator("a.carousel-control-prev").Click())
}

// WaitForSlideChange waits until the active slide differs from current.
func (hp *HomePage) WaitForSlideChange(current string, timeout time.Duration) string {
	hp.t.Helper()

	selector := "ul.carousel-indicators li.active:not([data-slide-to='" + current + "'])"
	err := hp.Page.Locator(selector).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	require.NoError(hp.t, err, "carousel did not advance from slide %s", current)
	return hp.ActiveSlide()
}
