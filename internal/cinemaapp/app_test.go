package cinemaapp

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/cinematest/dbreset"
)

type testClient struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
}

func newTestApp(t *testing.T) (*testClient, *sql.DB) {
	t.Helper()

	ctx := context.Background()
	db, err := OpenStore(ctx, "file:"+filepath.Join(t.TempDir(), "cinema.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	resetter, err := dbreset.New(db, dbreset.Options{})
	require.NoError(t, err)
	require.NoError(t, resetter.Reset(ctx))

	app := New(Options{DB: db})
	t.Cleanup(app.Close)

	server := httptest.NewServer(app)
	t.Cleanup(server.Close)

	return newTestClient(t, server), db
}

func newTestClient(t *testing.T, server *httptest.Server) *testClient {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{
		t:      t,
		server: server,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *testClient) do(req *http.Request) (*http.Response, string) {
	c.t.Helper()
	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, string(body)
}

func (c *testClient) get(path string) (*http.Response, string) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.server.URL+path, nil)
	require.NoError(c.t, err)
	return c.do(req)
}

func (c *testClient) postForm(path string, form url.Values) (*http.Response, string) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *testClient) logIn(email, password string) {
	c.t.Helper()
	resp, _ := c.postForm("/account/login", url.Values{"username": {email}, "password": {password}})
	require.Equal(c.t, http.StatusSeeOther, resp.StatusCode)
}

const seatOneSchedulePath = "/seat-selection?movieId=7&branchId=1&startDate=2021-01-05&startTime=10:15&roomId=1"

func TestHome_Anonymous(t *testing.T) {
	c, _ := newTestApp(t)

	resp, body := c.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `data-target="#modalLoginForm">Đăng nhập</a>`)
	assert.Contains(t, body, `data-target="#modalRegisterForm">Đăng ký</a>`)
	assert.Contains(t, body, `<div class="modal" id="modalLoginForm"`)
	assert.NotContains(t, body, "Đăng xuất")
	assert.Equal(t, 3, strings.Count(body, `class="card movie-item"`))
	assert.Contains(t, body, `<li data-target="#movieCarousel" data-slide-to="0" class="active">`)
}

func TestLogin_Success(t *testing.T) {
	c, _ := newTestApp(t)

	resp, _ := c.postForm("/account/login", url.Values{"username": {"example@gmail.com"}, "password": {"1234567"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	_, body := c.get("/")
	assert.Contains(t, body, "Test1")
	assert.Contains(t, body, `<a class="nav-link" href="/tickets/history">Lịch sử mua vé</a>`)
	assert.Contains(t, body, `<a class="nav-link" href="/account/logout">Đăng xuất</a>`)
	assert.Contains(t, body, `href="/branches?movieId=7">Mua vé</a>`)
	assert.NotContains(t, body, `id="modalLoginForm"`)
}

func TestLogin_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown user", "notexist@gmail.com", "1234567"},
		{"wrong password", "example@gmail.com", "1234567__"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestApp(t)

			resp, body := c.postForm("/account/login", url.Values{"username": {tt.email}, "password": {tt.password}})
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body, MsgInvalidCredentials)
			assert.Contains(t, body, `<div class="modal show" id="modalLoginForm"`)
			assert.NotContains(t, body, "Đăng xuất")
		})
	}
}

func TestLogout(t *testing.T) {
	c, _ := newTestApp(t)
	c.logIn("example@gmail.com", "1234567")

	resp, _ := c.get("/account/logout")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body := c.get("/")
	assert.NotContains(t, body, "Test1")
	assert.NotContains(t, body, "Lịch sử mua vé")
	assert.Contains(t, body, "Đăng nhập")
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		form     url.Values
		expected string
	}{
		{"existing email", url.Values{"name": {"TestUser"}, "username": {"example@gmail.com"}, "password": {"12345678910"}}, MsgUserExists},
		{"empty name", url.Values{"username": {"new-user@test.com"}, "password": {"validpassword123"}}, MsgNameRequired},
		{"empty email", url.Values{"name": {"Test3"}, "password": {"12345678"}}, MsgEmailRequired},
		{"empty password", url.Values{"name": {"Test3"}, "username": {"example3@gmail.com"}}, MsgPasswordRequired},
		{"short password", url.Values{"name": {"Test3"}, "username": {"example3@gmail.com"}, "password": {"12345"}}, MsgPasswordTooShort},
		{"invalid email", url.Values{"name": {"TestEmailFormat"}, "username": {"not-email@g"}, "password": {"12345678"}}, MsgEmailInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestApp(t)

			resp, body := c.postForm("/account/register", tt.form)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body, tt.expected)
			assert.Contains(t, body, `<div class="modal show" id="modalRegisterForm"`)
		})
	}
}

func TestRegister_SuccessLogsIn(t *testing.T) {
	c, _ := newTestApp(t)

	resp, _ := c.postForm("/account/register", url.Values{"name": {"Test5"}, "username": {"example1234@gmail.com"}, "password": {"12345678910"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body := c.get("/")
	assert.Contains(t, body, "Test5")
	assert.Contains(t, body, "Đăng xuất")
}

func TestBookingPages_RequireLogin(t *testing.T) {
	c, _ := newTestApp(t)

	for _, path := range []string{"/branches?movieId=7", "/schedule?movieId=7&branchId=1", seatOneSchedulePath, "/tickets/history"} {
		resp, _ := c.get(path)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/?login=1", resp.Header.Get("Location"), path)
	}

	_, body := c.get("/?login=1")
	assert.Contains(t, body, `<div class="modal show" id="modalLoginForm"`)
}

func TestMovieDetails(t *testing.T) {
	c, _ := newTestApp(t)

	resp, body := c.get("/movie-details?movieId=7")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Chi Tiết Phim")
	assert.Contains(t, body, "<strong>Giới Thiệu:</strong>")
	assert.Contains(t, body, "Người Nhện")

	resp, _ = c.get("/movie-details?movieId=999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScheduleAndRoomSelection(t *testing.T) {
	c, _ := newTestApp(t)
	c.logIn("example@gmail.com", "1234567")

	_, body := c.get("/branches?movieId=7")
	assert.Contains(t, body, "HUYCINEMA Hà Đông")
	assert.Contains(t, body, `href="/schedule?movieId=7&amp;branchId=1"`)

	_, body = c.get("/schedule?movieId=7&branchId=1")
	assert.Contains(t, body, `<select id="listDate"`)
	assert.Contains(t, body, `<option value="2021-01-08">`)
	assert.Contains(t, body, `<option value="14:05">`)

	resp, body := c.postForm("/room-selection", url.Values{
		"movieId": {"7"}, "branchId": {"1"}, "startDate": {"2021-01-08"}, "startTime": {"14:05"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `<h2 class="container">Chọn Phòng</h2>`)
	assert.Contains(t, body, "Phòng 101")
	assert.Contains(t, body, `href="/seat-selection?branchId=1&amp;movieId=7&amp;roomId=1&amp;startDate=2021-01-08&amp;startTime=14%3A05"`)

	resp, body = c.get("/room-selection")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Phòng 102")
}

func TestSeatSelection_SeedSeatsDisabled(t *testing.T) {
	c, _ := newTestApp(t)
	c.logIn("example@gmail.com", "1234567")

	resp, body := c.get(seatOneSchedulePath)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<h1>Chọn Chỗ Ngồi</h1>")
	assert.Contains(t, body, `name="seats" value="5" disabled`)
	assert.Contains(t, body, `name="seats" value="10" disabled`)
	assert.Contains(t, body, `name="seats" value="2">`)
	assert.Contains(t, body, `value="Tiếp tục" disabled>`)

	resp, _ = c.get("/seat-selection?movieId=7&branchId=1&startDate=1999-01-01&startTime=10:15&roomId=1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPurchase_BooksTicketsAndListsHistory(t *testing.T) {
	c, db := newTestApp(t)
	c.logIn("example@gmail.com", "1234567")

	resp, body := c.postForm("/bill", url.Values{"scheduleId": {"1"}, "seats": {"2", "3"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<h2>Thanh toán hóa đơn</h2>")
	assert.Contains(t, body, "150.000 VND")
	assert.Contains(t, body, `<a class="btn btn-outline-danger btn-block" href="/bill/pay">`)

	resp, _ = c.get("/bill/pay")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/tickets/history", resp.Header.Get("Location"))

	_, body = c.get("/tickets/history")
	assert.Contains(t, body, `<div class="container-fluid"><h2>Lịch Sử Mua Vé</h2>`)
	assert.Equal(t, 2, strings.Count(body, `class="ticket-row"`))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM ticket WHERE user_id = 1 AND bill_id = 2").Scan(&count))
	assert.Equal(t, 2, count)

	// Booked seats are now disabled
	_, body = c.get(seatOneSchedulePath)
	assert.Contains(t, body, `name="seats" value="2" disabled`)

	// Paying again without a pending bill books nothing
	resp, _ = c.get("/bill/pay")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM ticket").Scan(&count))
	assert.Equal(t, 4, count)
}

func TestBill_RejectsBookedAndEmptySeats(t *testing.T) {
	c, _ := newTestApp(t)
	c.logIn("example@gmail.com", "1234567")

	resp, body := c.postForm("/bill", url.Values{"scheduleId": {"1"}, "seats": {"5"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "Chọn Chỗ Ngồi")

	resp, _ = c.postForm("/bill", url.Values{"scheduleId": {"1"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func apiLoginToken(t *testing.T, c *testClient, email, password string) (int, apiLoginResponse) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.server.URL+"/login", strings.NewReader(`{"username":"`+email+`","password":"`+password+`"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, body := c.do(req)

	var out apiLoginResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal([]byte(body), &out))
	} else {
		assert.Contains(t, body, MsgInvalidCredentials)
	}
	return resp.StatusCode, out
}

func TestAPI_Login(t *testing.T) {
	c, _ := newTestApp(t)

	status, out := apiLoginToken(t, c, "hung@example.com", "123456")
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, out.AccessToken)
	assert.Equal(t, int64(3), out.UserID)

	status, _ = apiLoginToken(t, c, "hung@example.com", "wrong")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_Tickets(t *testing.T) {
	c, _ := newTestApp(t)
	_, login := apiLoginToken(t, c, "hung@example.com", "123456")

	getTickets := func(query string, token string) (int, string) {
		req, err := http.NewRequest(http.MethodGet, c.server.URL+"/api/tickets"+query, nil)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, body := c.do(req)
		return resp.StatusCode, body
	}

	status, body := getTickets("?userId=3", login.AccessToken)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, body)

	tests := []struct {
		name     string
		query    string
		token    string
		expected int
	}{
		{"non numeric", "?userId=abc", login.AccessToken, http.StatusBadRequest},
		{"blank", "?userId=" + url.QueryEscape("   "), login.AccessToken, http.StatusBadRequest},
		{"missing", "", login.AccessToken, http.StatusBadRequest},
		{"negative", "?userId=-1", login.AccessToken, http.StatusBadRequest},
		{"injection", "?userId=" + url.QueryEscape("1 OR 1=1"), login.AccessToken, http.StatusBadRequest},
		{"other user", "?userId=999", login.AccessToken, http.StatusUnauthorized},
		{"no token", "?userId=3", "", http.StatusUnauthorized},
		{"unknown token", "?userId=3", "not-a-token", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := getTickets(tt.query, tt.token)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestStaticAssets(t *testing.T) {
	c, _ := newTestApp(t)

	resp, body := c.get("/static/app.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")
	assert.Contains(t, body, ".modal.show{display:block}")

	resp, body = c.get("/static/app.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "getElementById('seatForm')")

	resp, body = c.get("/static/posters/Tenet.jpg")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, ">Tenet</text>")

	resp, _ = c.get("/static/missing.css")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDefaultCatalog_SeedSchedule(t *testing.T) {
	c := DefaultCatalog()

	sc, ok := c.FindSchedule(7, 1, 1, "2021-01-05", "10:15")
	require.True(t, ok)
	assert.Equal(t, int64(dbreset.SeedScheduleID), sc.ID)

	assert.Equal(t, []string{"2021-01-05", "2021-01-08"}, c.Dates(7, 1))
	assert.Equal(t, []string{"10:15", "14:05"}, c.Times(7, 1))
	assert.Len(t, c.RoomsFor(7, 1, "2021-01-08", "14:05"), 2)
}

func TestServer_ListenServeShutdown(t *testing.T) {
	c, _ := newTestApp(t)

	srv, err := Listen("127.0.0.1:0", c.server.Config.Handler, nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	resp, err := http.Get(srv.URL + "/movie-details?movieId=7")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.NoError(t, <-done)
}

func TestSearch(t *testing.T) {
	c, _ := newTestApp(t)

	resp, body := c.postForm("/", url.Values{"movie-name": {"Người nhện"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, strings.Count(body, `class="card movie-item"`))
	assert.Contains(t, body, "Người Nhện")

	_, body = c.postForm("/", url.Values{"movie-name": {"asdfghjkl"}})
	assert.Contains(t, body, "Chúng Tôi Không Tìm Thấy Phim Của Bạn")
	assert.Contains(t, body, `href="/">Quay Lại Trang Chủ</a>`)
}

func (c *testClient) api(method, path, token, body string) (*http.Response, string) {
	c.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req)
}

func TestAPI_Register(t *testing.T) {
	c, _ := newTestApp(t)

	resp, body := c.api(http.MethodPost, "/register", "", `{"username":"new@example.com","password":"123456","fullName":"Test5"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out apiRegisterResponse
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.NotEmpty(t, out.AccessToken)
	assert.Equal(t, "new@example.com", out.User.Username)
	assert.Equal(t, int64(4), out.User.ID)

	resp, _ = c.api(http.MethodGet, "/api/branches?movieId=7", out.AccessToken, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "token of registered user is accepted")

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"duplicate", `{"username":"hung@example.com","password":"123456","fullName":"Hùng"}`, MsgUserExists},
		{"empty name", `{"username":"a@example.com","password":"123456","fullName":""}`, MsgNameRequired},
		{"empty username", `{"username":"","password":"123456","fullName":"A"}`, MsgEmailRequired},
		{"empty password", `{"username":"a@example.com","password":"","fullName":"A"}`, MsgPasswordRequired},
		{"invalid email", `{"username":"not-an-email","password":"123456","fullName":"A"}`, MsgEmailInvalid},
		{"short password", `{"username":"a@example.com","password":"123","fullName":"A"}`, MsgPasswordTooShort},
		{"malformed", `{"username":`, MsgInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := c.api(http.MethodPost, "/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, body, tt.message)
		})
	}
}

func TestAPI_Movies(t *testing.T) {
	c, _ := newTestApp(t)

	resp, body := c.api(http.MethodGet, "/api/movies/showing", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	var movies []apiMovie
	require.NoError(t, json.Unmarshal([]byte(body), &movies))
	assert.Len(t, movies, 3)

	resp, _ = c.api(http.MethodPost, "/api/movies/showing", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, body = c.api(http.MethodGet, "/api/movies/details?movieId=7", "ignored-token", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"name":"Người Nhện"`)

	resp, body = c.api(http.MethodGet, "/api/movies/showing/search?name="+url.QueryEscape("nhện"), "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"id":7`)

	resp, body = c.api(http.MethodGet, "/api/movies/showing/search?name=xyz", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, body)

	tests := []struct {
		name     string
		path     string
		expected int
	}{
		{"details missing id", "/api/movies/details", http.StatusBadRequest},
		{"details unknown", "/api/movies/details?movieId=999", http.StatusNotFound},
		{"details non numeric", "/api/movies/details?movieId=abc", http.StatusBadRequest},
		{"details decimal", "/api/movies/details?movieId=3.5", http.StatusBadRequest},
		{"details symbols", "/api/movies/details?movieId=" + url.QueryEscape("@#"), http.StatusBadRequest},
		{"details negative", "/api/movies/details?movieId=-1", http.StatusBadRequest},
		{"details zero", "/api/movies/details?movieId=0", http.StatusBadRequest},
		{"details injection", "/api/movies/details?movieId=" + url.QueryEscape("3 OR 1=1"), http.StatusBadRequest},
		{"search missing name", "/api/movies/showing/search", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := c.api(http.MethodGet, tt.path, "", "")
			assert.Equal(t, tt.expected, resp.StatusCode)
		})
	}
}

func TestAPI_Locations(t *testing.T) {
	c, _ := newTestApp(t)
	_, login := apiLoginToken(t, c, "hung@example.com", "123456")
	token := login.AccessToken

	resp, body := c.api(http.MethodGet, "/api/branches?movieId=7", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "HUYCINEMA Hà Đông")

	resp, body = c.api(http.MethodGet, "/api/schedule/start-times?movieId=7&branchId=1&startDate=2021-01-05", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `["10:15","14:05"]`, body)

	resp, body = c.api(http.MethodGet, "/api/rooms?movieId=7&branchId=1&startDate=2021-01-05&startTime=10:15", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"id":1,"name":"Phòng 101"},{"id":2,"name":"Phòng 102"}]`, body)

	tests := []struct {
		name     string
		path     string
		token    string
		expected int
		body     string
	}{
		{"branches unknown movie", "/api/branches?movieId=999", token, http.StatusOK, `[]`},
		{"branches missing movie", "/api/branches", token, http.StatusBadRequest, ""},
		{"branches non numeric", "/api/branches?movieId=abc", token, http.StatusBadRequest, ""},
		{"branches without token", "/api/branches?movieId=7", "", http.StatusUnauthorized, ""},
		{"start times unknown movie", "/api/schedule/start-times?movieId=999&branchId=1&startDate=2021-01-05", token, http.StatusOK, `[]`},
		{"start times negative", "/api/schedule/start-times?movieId=-7&branchId=1&startDate=2021-01-05", token, http.StatusBadRequest, ""},
		{"start times overflow", "/api/schedule/start-times?movieId=99999999999999999999&branchId=1&startDate=2021-01-05", token, http.StatusBadRequest, ""},
		{"start times blank", "/api/schedule/start-times?movieId=" + url.QueryEscape(" ") + "&branchId=1&startDate=2021-01-05", token, http.StatusBadRequest, ""},
		{"start times bad date format", "/api/schedule/start-times?movieId=7&branchId=1&startDate=05-01-2021", token, http.StatusBadRequest, ""},
		{"start times impossible date", "/api/schedule/start-times?movieId=7&branchId=1&startDate=2021-01-32", token, http.StatusBadRequest, ""},
		{"start times injection", "/api/schedule/start-times?movieId=7&branchId=" + url.QueryEscape("1 AND SLEEP(5)") + "&startDate=2021-01-05", token, http.StatusBadRequest, ""},
		{"start times without token", "/api/schedule/start-times?movieId=7&branchId=1&startDate=2021-01-05", "", http.StatusUnauthorized, ""},
		{"rooms no match", "/api/rooms?movieId=7&branchId=1&startDate=2021-02-01&startTime=10:15", token, http.StatusOK, `[]`},
		{"rooms missing movie", "/api/rooms?branchId=1&startDate=2021-01-05&startTime=10:15", token, http.StatusBadRequest, ""},
		{"rooms invalid date", "/api/rooms?movieId=7&branchId=1&startDate=2021-01-35&startTime=10:15", token, http.StatusBadRequest, ""},
		{"rooms without token", "/api/rooms?movieId=7&branchId=1&startDate=2021-01-05&startTime=10:15", "", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := c.api(http.MethodGet, tt.path, tt.token, "")
			assert.Equal(t, tt.expected, resp.StatusCode)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, body)
			}
		})
	}
}

func TestAPI_Seats(t *testing.T) {
	c, _ := newTestApp(t)
	_, login := apiLoginToken(t, c, "hung@example.com", "123456")

	resp, body := c.api(http.MethodGet, "/api/seats?scheduleId=1", login.AccessToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var seats []apiSeat
	require.NoError(t, json.Unmarshal([]byte(body), &seats))
	require.Len(t, seats, 20)
	assert.True(t, seats[4].Booked, "seed seat 5")
	assert.True(t, seats[9].Booked, "seed seat 10")
	assert.False(t, seats[0].Booked)

	for _, query := range []string{"?scheduleId=999", "?scheduleId=abc", "?scheduleId=" + url.QueryEscape(" "), "", "?scheduleId=-1", "?scheduleId=" + url.QueryEscape("1; DROP TABLE ticket")} {
		resp, _ := c.api(http.MethodGet, "/api/seats"+query, login.AccessToken, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, query)
	}

	resp, _ = c.api(http.MethodGet, "/api/seats?scheduleId=1", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_CreateBill(t *testing.T) {
	c, _ := newTestApp(t)
	_, login := apiLoginToken(t, c, "hung@example.com", "123456")
	token := login.AccessToken

	resp, body := c.api(http.MethodPost, "/api/bills/create-new-bill", token, `{"userId":3,"scheduleId":1,"listSeatIds":[1,2]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	var out apiCreateBillResponse
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, int64(2), out.BillID, "seed bill is 1")

	_, body = c.api(http.MethodGet, "/api/tickets?userId=3", token, "")
	assert.Contains(t, body, `"seatId":1`)
	assert.Contains(t, body, `"seatId":2`)

	tests := []struct {
		name     string
		body     string
		token    string
		expected int
	}{
		{"seat taken", `{"userId":3,"scheduleId":1,"listSeatIds":[5]}`, token, http.StatusExpectationFailed},
		{"empty body", ``, token, http.StatusExpectationFailed},
		{"missing seats", `{"userId":3,"scheduleId":1}`, token, http.StatusExpectationFailed},
		{"missing schedule", `{"userId":3,"listSeatIds":[3]}`, token, http.StatusExpectationFailed},
		{"unknown schedule", `{"userId":3,"scheduleId":999,"listSeatIds":[3]}`, token, http.StatusExpectationFailed},
		{"other user", `{"userId":999,"scheduleId":1,"listSeatIds":[3]}`, token, http.StatusExpectationFailed},
		{"duplicate seats", `{"userId":3,"scheduleId":1,"listSeatIds":[3,3]}`, token, http.StatusExpectationFailed},
		{"seat out of range", `{"userId":3,"scheduleId":1,"listSeatIds":[21]}`, token, http.StatusExpectationFailed},
		{"wrong types", `{"userId":"3","scheduleId":1,"listSeatIds":[3]}`, token, http.StatusBadRequest},
		{"malformed", `{"userId":3,`, token, http.StatusBadRequest},
		{"without token", `{"userId":3,"scheduleId":1,"listSeatIds":[3]}`, "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := c.api(http.MethodPost, "/api/bills/create-new-bill", tt.token, tt.body)
			assert.Equal(t, tt.expected, resp.StatusCode)
		})
	}

	tooMany := make([]int, 101)
	for i := range tooMany {
		tooMany[i] = i + 1
	}
	seatsJSON, err := json.Marshal(tooMany)
	require.NoError(t, err)
	resp, _ = c.api(http.MethodPost, "/api/bills/create-new-bill", token, `{"userId":3,"scheduleId":1,"listSeatIds":`+string(seatsJSON)+`}`)
	assert.Equal(t, http.StatusExpectationFailed, resp.StatusCode)

	_, body = c.api(http.MethodPost, "/api/bills/create-new-bill", token, `{"userId":3,"scheduleId":1,"listSeatIds":[2]}`)
	assert.Contains(t, body, MsgSeatTaken)
}
