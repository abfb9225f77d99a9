package cinemaapp

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Messages of the JSON API.
const (
	MsgUnauthorized   = "Unauthorized"
	MsgSeatTaken      = "Đã có người đặt ghế này"
	MsgInvalidBill    = "Hóa đơn không hợp lệ"
	MsgInvalidRequest = "Invalid request body"
)

const (
	apiDateLayout = "2006-01-02"
	apiTimeLayout = "15:04"
)

type apiError struct {
	Message string `json:"message"`
}

type apiLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type apiLoginResponse struct {
	AccessToken string `json:"accessToken"`
	UserID      int64  `json:"userId"`
	Name        string `json:"name"`
}

type apiRegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type apiUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type apiRegisterResponse struct {
	AccessToken string  `json:"accessToken"`
	User        apiUser `json:"user"`
}

type apiMovie struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Poster      string `json:"poster"`
}

type apiBranch struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type apiRoom struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type apiSeat struct {
	ID     int64 `json:"id"`
	Booked bool  `json:"booked"`
}

type apiCreateBillRequest struct {
	UserID      *int64  `json:"userId"`
	ScheduleID  *int64  `json:"scheduleId"`
	ListSeatIDs []int64 `json:"listSeatIds"`
}

type apiCreateBillResponse struct {
	BillID int64 `json:"billId"`
}

func toAPIMovie(m Movie) apiMovie {
	return apiMovie{ID: m.ID, Name: m.Name, Description: m.Description, Poster: m.Poster}
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("Encoding JSON response failed", slog.Any("err", err))
	}
}

func (a *App) writeAPIError(w http.ResponseWriter, status int, message string) {
	a.writeJSON(w, status, apiError{Message: message})
}

// apiID reads a positive integer query parameter. Surrounding whitespace,
// signs and anything past the digits are rejected.
func apiID(r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" || raw[0] == '+' || raw[0] == '-' {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func apiDate(r *http.Request, name string) (string, bool) {
	raw := r.URL.Query().Get(name)
	if _, err := time.Parse(apiDateLayout, raw); err != nil {
		return "", false
	}
	return raw, true
}

func apiClock(r *http.Request, name string) (string, bool) {
	raw := r.URL.Query().Get(name)
	if _, err := time.Parse(apiTimeLayout, raw); err != nil {
		return "", false
	}
	return raw, true
}

type apiUserHandlerFunc func(w http.ResponseWriter, r *http.Request, u User)

// requireToken resolves the bearer token of the request.
func (a *App) requireToken(next apiUserHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := a.users.userForToken(bearerToken(r))
		if !ok {
			a.writeAPIError(w, http.StatusUnauthorized, MsgUnauthorized)
			return
		}
		next(w, r, u)
	}
}

// allowAnyOrigin marks public catalog responses as readable cross origin.
func allowAnyOrigin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next(w, r)
	}
}

func bearerToken(r *http.Request) string {
	token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return token
}

func (a *App) apiLogin(w http.ResponseWriter, r *http.Request) {
	var req apiLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeAPIError(w, http.StatusBadRequest, MsgInvalidRequest)
		return
	}
	u, err := a.users.authenticate(req.Username, req.Password)
	if err != nil {
		a.writeAPIError(w, http.StatusBadRequest, MsgInvalidCredentials)
		return
	}

	a.writeJSON(w, http.StatusOK, apiLoginResponse{
		AccessToken: a.users.issueToken(u.ID),
		UserID:      u.ID,
		Name:        u.Name,
	})
}

// apiRegister creates an account and returns a token for it. The username
// is the email address.
func (a *App) apiRegister(w http.ResponseWriter, r *http.Request) {
	var req apiRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeAPIError(w, http.StatusBadRequest, MsgInvalidRequest)
		return
	}
	u, err := a.users.register(req.FullName, req.Username, req.Password)
	if verr := (*ValidationError)(nil); errors.As(err, &verr) {
		a.writeAPIError(w, http.StatusBadRequest, verr.Message)
		return
	}
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusOK, apiRegisterResponse{
		AccessToken: a.users.issueToken(u.ID),
		User:        apiUser{ID: u.ID, Username: u.Email, Name: u.Name},
	})
}

func (a *App) apiMoviesShowing(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, lo.Map(a.catalog.Movies, func(m Movie, _ int) apiMovie { return toAPIMovie(m) }))
}

func (a *App) apiMovieDetails(w http.ResponseWriter, r *http.Request) {
	movieID, ok := apiID(r, "movieId")
	if !ok {
		a.writeAPIError(w, http.StatusBadRequest, "movieId must be a positive integer")
		return
	}
	m, ok := a.catalog.Movie(movieID)
	if !ok {
		a.writeAPIError(w, http.StatusNotFound, "Movie not found")
		return
	}
	a.writeJSON(w, http.StatusOK, toAPIMovie(m))
}

func (a *App) apiSearchMovies(w http.ResponseWriter, r *http.Request) {
	if !r.URL.Query().Has("name") {
		a.writeAPIError(w, http.StatusBadRequest, "name is required")
		return
	}
	movies := a.catalog.Search(r.URL.Query().Get("name"))
	a.writeJSON(w, http.StatusOK, lo.Map(movies, func(m Movie, _ int) apiMovie { return toAPIMovie(m) }))
}

// apiBranches lists the branches showing a movie.
func (a *App) apiBranches(w http.ResponseWriter, r *http.Request, _ User) {
	movieID, ok := apiID(r, "movieId")
	if !ok {
		a.writeAPIError(w, http.StatusBadRequest, "movieId must be a positive integer")
		return
	}
	branches := lo.Filter(a.catalog.Branches, func(b Branch, _ int) bool {
		return len(a.catalog.schedulesFor(movieID, b.ID)) > 0
	})
	a.writeJSON(w, http.StatusOK, lo.Map(branches, func(b Branch, _ int) apiBranch {
		return apiBranch{ID: b.ID, Name: b.Name, Address: b.Address}
	}))
}

func (a *App) apiStartTimes(w http.ResponseWriter, r *http.Request, _ User) {
	movieID, ok1 := apiID(r, "movieId")
	branchID, ok2 := apiID(r, "branchId")
	date, ok3 := apiDate(r, "startDate")
	if !ok1 || !ok2 || !ok3 {
		a.writeAPIError(w, http.StatusBadRequest, "movieId, branchId and startDate are required")
		return
	}
	a.writeJSON(w, http.StatusOK, a.catalog.TimesOn(movieID, branchID, date))
}

func (a *App) apiRooms(w http.ResponseWriter, r *http.Request, _ User) {
	movieID, ok1 := apiID(r, "movieId")
	branchID, ok2 := apiID(r, "branchId")
	date, ok3 := apiDate(r, "startDate")
	clock, ok4 := apiClock(r, "startTime")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		a.writeAPIError(w, http.StatusBadRequest, "movieId, branchId, startDate and startTime are required")
		return
	}
	rooms := a.catalog.RoomsFor(movieID, branchID, date, clock)
	a.writeJSON(w, http.StatusOK, lo.Map(rooms, func(room Room, _ int) apiRoom {
		return apiRoom{ID: room.ID, Name: room.Name}
	}))
}

// apiSeats lists every seat of a schedule with its booking state.
func (a *App) apiSeats(w http.ResponseWriter, r *http.Request, _ User) {
	scheduleID, ok := apiID(r, "scheduleId")
	if !ok {
		a.writeAPIError(w, http.StatusBadRequest, "scheduleId must be a positive integer")
		return
	}
	sc, ok := a.catalog.ScheduleByID(scheduleID)
	if !ok {
		a.writeAPIError(w, http.StatusBadRequest, "Unknown schedule")
		return
	}
	booked, err := a.tickets.bookedSeats(r.Context(), sc.ID)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, lo.Times(a.catalog.SeatCount, func(i int) apiSeat {
		seat := int64(i + 1)
		return apiSeat{ID: seat, Booked: lo.Contains(booked, seat)}
	}))
}

// apiCreateBill books seats for the token owner. Requests that are well
// formed but cannot be booked are answered with 417.
func (a *App) apiCreateBill(w http.ResponseWriter, r *http.Request, u User) {
	var req apiCreateBillRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		a.writeAPIError(w, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	if message, ok := a.validateBill(req, u); !ok {
		a.writeAPIError(w, http.StatusExpectationFailed, message)
		return
	}

	booking := Booking{ScheduleID: *req.ScheduleID, Seats: req.ListSeatIDs}
	billID, err := a.tickets.book(r.Context(), u.ID, booking)
	if errors.Is(err, ErrSeatTaken) {
		a.writeAPIError(w, http.StatusExpectationFailed, MsgSeatTaken)
		return
	}
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	a.logger.Info("Booked tickets via API",
		slog.Int64("user", u.ID),
		slog.Int64("bill", billID),
		slog.Int64("schedule", booking.ScheduleID),
		slog.Any("seats", booking.Seats),
	)
	a.writeJSON(w, http.StatusOK, apiCreateBillResponse{BillID: billID})
}

func (a *App) validateBill(req apiCreateBillRequest, u User) (string, bool) {
	switch {
	case req.UserID == nil || req.ScheduleID == nil || len(req.ListSeatIDs) == 0:
		return MsgInvalidBill, false
	case *req.UserID != u.ID:
		return MsgInvalidBill, false
	case len(req.ListSeatIDs) > a.catalog.SeatCount:
		return MsgInvalidBill, false
	case len(lo.Uniq(req.ListSeatIDs)) != len(req.ListSeatIDs):
		return MsgInvalidBill, false
	case lo.SomeBy(req.ListSeatIDs, func(seat int64) bool { return seat < 1 || seat > int64(a.catalog.SeatCount) }):
		return MsgInvalidBill, false
	}
	if _, ok := a.catalog.ScheduleByID(*req.ScheduleID); !ok {
		return MsgInvalidBill, false
	}
	return "", true
}

// apiTickets lists the tickets of the user given by the userId parameter.
// Only the owner of the bearer token may read them.
func (a *App) apiTickets(w http.ResponseWriter, r *http.Request, u User) {
	userID, ok := apiID(r, "userId")
	if !ok {
		a.writeAPIError(w, http.StatusBadRequest, "userId must be a positive integer")
		return
	}
	if userID != u.ID {
		a.writeAPIError(w, http.StatusUnauthorized, MsgUnauthorized)
		return
	}

	tickets, err := a.tickets.forUser(r.Context(), userID)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, tickets)
}
