//go:build acceptance
// +build acceptance

package acceptance

import (
	"regexp"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
)

const (
	msgInvalidCredentials = "Sai email hoặc mật khẩu!"
	testUserName          = "Test1"
)

func TestLogin_ValidCredentials(t *testing.T) {
	WithPage(t, func(t *testing.T, f *TestFixtures) {
		cfg := harness.Config()
		f.Home.Open()

		f.Home.LogIn(cfg.Username, cfg.Password)

		f.Home.ExpectLoggedIn(testUserName)
	})
}

func TestLogin_ByAccessibleRoles(t *testing.T) {
	WithPage(t, func(t *testing.T, f *TestFixtures) {
		cfg := harness.Config()
		f.Home.Open()

		require.NoError(t, f.Home.Link("Đăng nhập").Click())
		require.NoError(t, f.Page.GetByRole(*playwright.AriaRoleTextbox, playwright.PageGetByRoleOptions{Name: "Email"}).Fill(cfg.Username))
		require.NoError(t, f.Page.GetByRole(*playwright.AriaRoleTextbox, playwright.PageGetByRoleOptions{Name: "Mật khẩu"}).Fill(cfg.Password))
		require.NoError(t, f.Page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: "Đăng Nhập"}).Click())

		require.NoError(t, f.Expect.Locator(f.Home.Link("Đăng xuất")).ToBeVisible())
		require.NoError(t, f.Expect.Locator(f.Home.Link("Cá nhân")).ToBeVisible())
	})
}

func TestLogin_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "unknown user", email: "nobody@example.com", password: "1234567"},
		{name: "wrong password", email: "example@gmail.com", password: "wrong-password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			WithPage(t, func(t *testing.T, f *TestFixtures) {
				f.Home.Open()

				f.Home.LogIn(tt.email, tt.password)

				require.NoError(t, f.Expect.Locator(f.Home.LoginModal().GetByText(msgInvalidCredentials)).ToBeVisible())
				require.NoError(t, f.Expect.Locator(f.Home.Link("Lịch sử mua vé")).ToBeHidden())
				require.NoError(t, f.Expect.Locator(f.Home.Link("Đăng xuất")).ToBeHidden())
			})
		})
	}
}

func TestRegister_Success(t *testing.T) {
	WithPage(t, func(t *testing.T, f *TestFixtures) {
		f.Home.Open()

		email := "test-" + uuid.Must(uuid.NewV4()).String()[:8] + "@example.com"
		f.Home.Register(RegisterForm{Name: "Test5", Email: email, Password: "1234567"})

		require.NoError(t, f.Expect.Page(f.Page).ToHaveURL(regexp.MustCompile(`/$`)))
		f.Home.ExpectLoggedIn("Test5")
	})
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name    string
		form    RegisterForm
		message string
	}{
		{name: "missing name", form: RegisterForm{Email: "new@example.com", Password: "1234567"}, message: "Không được để trống họ tên!"},
		{name: "missing email", form: RegisterForm{Name: "Test5", Password: "1234567"}, message: "Không được để trống email!"},
		{name: "invalid email", form: RegisterForm{Name: "Test5", Email: "not-an-email", Password: "1234567"}, message: "Email không hợp lệ"},
		{name: "missing password", form: RegisterForm{Name: "Test5", Email: "new@example.com"}, message: "Không được để trống mật khẩu!"},
		{name: "short password", form: RegisterForm{Name: "Test5", Email: "new@example.com", Password: "123"}, message: "Mật khẩu phải có ít nhất 6 ký tự"},
		{name: "existing email", form: RegisterForm{Name: "Test5", Email: "example@gmail.com", Password: "1234567"}, message: "Đã tồn tại người dùng"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			WithPage(t, func(t *testing.T, f *TestFixtures) {
				f.Home.Open()

				f.Home.Register(tt.form)

				require.NoError(t, f.Expect.Locator(f.Home.RegisterModal().GetByText(tt.message)).ToBeVisible())
				f.Home.ExpectLoggedOut()
			})
		})
	}
}

func TestLogin_ThenLogout(t *testing.T) {
	WithPage(t, func(t *testing.T, f *TestFixtures) {
		cfg := harness.Config()
		f.Home.Open()

		f.Home.LogIn(cfg.Username, cfg.Password)
		f.Home.ExpectLoggedIn(testUserName)

		require.NoError(t, f.Home.Link("Đăng xuất").Click())

		f.Home.ExpectLoggedOut()
	})
}
