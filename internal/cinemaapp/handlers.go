package cinemaapp

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/samber/lo"

	"github.com/networkteam/cinematest/internal/cinemaapp/views"
)

func queryInt(r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return v, err == nil
}

func formInt(r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(r.PostFormValue(name), 10, 64)
	return v, err == nil
}

func viewUser(u User) *views.User {
	return &views.User{Name: u.Name, Email: u.Email}
}

func viewMovie(m Movie) views.Movie {
	return views.Movie{ID: m.ID, Name: m.Name, Description: m.Description, Poster: m.Poster}
}

func viewMovies(movies []Movie) []views.Movie {
	return lo.Map(movies, func(m Movie, _ int) views.Movie { return viewMovie(m) })
}

func viewBranch(b Branch) views.Branch {
	return views.Branch{ID: b.ID, Name: b.Name, Address: b.Address}
}

// layoutFor renders the navigation for the visitor of r, if logged in.
func (a *App) layoutFor(r *http.Request) views.LayoutProps {
	var props views.LayoutProps
	if _, u, ok := a.currentUser(r); ok {
		props.User = viewUser(u)
	}
	return props
}

func (a *App) home(w http.ResponseWriter, r *http.Request) {
	props := a.layoutFor(r)
	props.LoginOpen = props.User == nil && r.URL.Query().Get("login") == "1"
	a.render(w, r, http.StatusOK, props, views.Home(viewMovies(a.catalog.Movies), props.User != nil))
}

// search filters the movie cards of the home page by name.
func (a *App) search(w http.ResponseWriter, r *http.Request) {
	props := a.layoutFor(r)
	query := r.PostFormValue("movie-name")
	movies := a.catalog.Search(query)
	if len(movies) == 0 {
		a.render(w, r, http.StatusOK, props, views.SearchNotFound(query))
		return
	}
	a.render(w, r, http.StatusOK, props, views.Home(viewMovies(movies), props.User != nil))
}

func (a *App) movieDetails(w http.ResponseWriter, r *http.Request) {
	movieID, _ := queryInt(r, "movieId")
	m, ok := a.catalog.Movie(movieID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	a.render(w, r, http.StatusOK, a.layoutFor(r), views.MovieDetails(viewMovie(m)))
}

func (a *App) branches(w http.ResponseWriter, r *http.Request, _ Session, u User) {
	movieID, _ := queryInt(r, "movieId")
	m, ok := a.catalog.Movie(movieID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	branches := lo.Map(a.catalog.Branches, func(b Branch, _ int) views.Branch { return viewBranch(b) })
	a.render(w, r, http.StatusOK, views.LayoutProps{User: viewUser(u)}, views.Branches(viewMovie(m), branches))
}

func (a *App) schedule(w http.ResponseWriter, r *http.Request, _ Session, u User) {
	movieID, _ := queryInt(r, "movieId")
	branchID, _ := queryInt(r, "branchId")
	m, movieFound := a.catalog.Movie(movieID)
	b, branchFound := a.catalog.Branch(branchID)
	if !movieFound || !branchFound {
		http.NotFound(w, r)
		return
	}
	a.render(w, r, http.StatusOK, views.LayoutProps{User: viewUser(u)}, views.Schedule(views.ScheduleProps{
		Movie:  viewMovie(m),
		Branch: viewBranch(b),
		Dates:  a.catalog.Dates(movieID, branchID),
		Times:  a.catalog.Times(movieID, branchID),
	}))
}

func (a *App) selectSchedule(w http.ResponseWriter, r *http.Request, s Session, u User) {
	movieID, ok1 := formInt(r, "movieId")
	branchID, ok2 := formInt(r, "branchId")
	if !ok1 || !ok2 {
		http.Error(w, "Invalid schedule selection", http.StatusBadRequest)
		return
	}
	sel := Selection{
		MovieID:   movieID,
		BranchID:  branchID,
		StartDate: r.PostFormValue("startDate"),
		StartTime: r.PostFormValue("startTime"),
	}
	a.sessions.Update(s.ID, func(s *Session) { s.Selection = &sel })

	a.renderRoomSelection(w, r, u, sel)
}

func (a *App) roomSelection(w http.ResponseWriter, r *http.Request, s Session, u User) {
	if s.Selection == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.renderRoomSelection(w, r, u, *s.Selection)
}

func (a *App) renderRoomSelection(w http.ResponseWriter, r *http.Request, u User, sel Selection) {
	rooms := lo.Map(a.catalog.RoomsFor(sel.MovieID, sel.BranchID, sel.StartDate, sel.StartTime), func(room Room, _ int) views.RoomOption {
		return views.RoomOption{
			Name: room.Name,
			URL:  views.SeatSelectionURL(sel.MovieID, sel.BranchID, sel.StartDate, sel.StartTime, room.ID),
		}
	})
	a.render(w, r, http.StatusOK, views.LayoutProps{User: viewUser(u)}, views.RoomSelection(rooms))
}

// screening resolves everything shown about a schedule.
func (a *App) screening(sc Schedule) (views.Screening, error) {
	m, ok := a.catalog.Movie(sc.MovieID)
	if !ok {
		return views.Screening{}, fmt.Errorf("unknown movie %d", sc.MovieID)
	}
	b, ok := a.catalog.Branch(sc.BranchID)
	if !ok {
		return views.Screening{}, fmt.Errorf("unknown branch %d", sc.BranchID)
	}
	room, ok := a.catalog.Room(sc.RoomID)
	if !ok {
		return views.Screening{}, fmt.Errorf("unknown room %d", sc.RoomID)
	}
	return views.Screening{
		ScheduleID: sc.ID,
		Movie:      m.Name,
		Branch:     b.Name,
		Room:       room.Name,
		StartDate:  sc.StartDate,
		StartTime:  sc.StartTime,
	}, nil
}

func (a *App) renderSeatSelection(w http.ResponseWriter, r *http.Request, u User, sc Schedule, status int, message string) {
	screening, err := a.screening(sc)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	booked, err := a.tickets.bookedSeats(r.Context(), sc.ID)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.render(w, r, status, views.LayoutProps{User: viewUser(u)}, views.SeatSelection(views.SeatSelectionProps{
		Screening: screening,
		Seats:     a.catalog.SeatCount,
		Booked:    booked,
		Error:     message,
	}))
}

func (a *App) seatSelection(w http.ResponseWriter, r *http.Request, _ Session, u User) {
	movieID, _ := queryInt(r, "movieId")
	branchID, _ := queryInt(r, "branchId")
	roomID, _ := queryInt(r, "roomId")
	q := r.URL.Query()
	sc, ok := a.catalog.FindSchedule(movieID, branchID, roomID, q.Get("startDate"), q.Get("startTime"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	a.renderSeatSelection(w, r, u, sc, http.StatusOK, "")
}

func (a *App) createBill(w http.ResponseWriter, r *http.Request, s Session, u User) {
	scheduleID, _ := formInt(r, "scheduleId")
	sc, ok := a.catalog.ScheduleByID(scheduleID)
	if !ok {
		http.Error(w, "Invalid schedule", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	seats := lo.Uniq(lo.FilterMap(r.PostForm["seats"], func(v string, _ int) (int64, bool) {
		seat, err := strconv.ParseInt(v, 10, 64)
		return seat, err == nil && seat >= 1 && seat <= int64(a.catalog.SeatCount)
	}))
	if len(seats) == 0 {
		a.renderSeatSelection(w, r, u, sc, http.StatusUnprocessableEntity, "Vui lòng chọn ghế")
		return
	}

	booked, err := a.tickets.bookedSeats(r.Context(), sc.ID)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	if taken := lo.Intersect(booked, seats); len(taken) > 0 {
		a.renderSeatSelection(w, r, u, sc, http.StatusConflict, "Ghế đã được đặt")
		return
	}

	booking := Booking{ScheduleID: sc.ID, Seats: seats}
	a.sessions.Update(s.ID, func(s *Session) { s.Pending = &booking })

	a.renderBill(w, r, u, booking)
}

func (a *App) bill(w http.ResponseWriter, r *http.Request, s Session, u User) {
	if s.Pending == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.renderBill(w, r, u, *s.Pending)
}

func (a *App) renderBill(w http.ResponseWriter, r *http.Request, u User, b Booking) {
	sc, ok := a.catalog.ScheduleByID(b.ScheduleID)
	if !ok {
		a.serverError(w, r, fmt.Errorf("unknown schedule %d", b.ScheduleID))
		return
	}
	screening, err := a.screening(sc)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, views.LayoutProps{User: viewUser(u)}, views.Bill(views.BillProps{
		Screening: screening,
		Seats:     b.Seats,
		Total:     int64(len(b.Seats)) * a.catalog.SeatPrice,
	}))
}

func (a *App) payBill(w http.ResponseWriter, r *http.Request, s Session, u User) {
	if s.Pending == nil {
		http.Redirect(w, r, "/tickets/history", http.StatusSeeOther)
		return
	}

	booking := *s.Pending

	billID, err := a.tickets.book(r.Context(), u.ID, booking)
	if errors.Is(err, ErrSeatTaken) {
		sc, _ := a.catalog.ScheduleByID(booking.ScheduleID)
		a.sessions.Update(s.ID, func(s *Session) { s.Pending = nil })
		a.renderSeatSelection(w, r, u, sc, http.StatusConflict, "Ghế đã được đặt")
		return
	}
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.sessions.Update(s.ID, func(s *Session) { s.Pending = nil })

	a.logger.Info("Booked tickets",
		slog.Int64("user", u.ID),
		slog.Int64("bill", billID),
		slog.Int64("schedule", booking.ScheduleID),
		slog.Any("seats", booking.Seats),
	)

	http.Redirect(w, r, "/tickets/history", http.StatusSeeOther)
}

func (a *App) ticketHistory(w http.ResponseWriter, r *http.Request, _ Session, u User) {
	tickets, err := a.tickets.forUser(r.Context(), u.ID)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	rows := lo.FilterMap(tickets, func(t BookedTicket, _ int) (views.HistoryRow, bool) {
		sc, ok := a.catalog.ScheduleByID(t.ScheduleID)
		if !ok {
			return views.HistoryRow{}, false
		}
		screening, err := a.screening(sc)
		return views.HistoryRow{TicketID: t.ID, Screening: screening, SeatID: t.SeatID, BillID: t.BillID}, err == nil
	})
	a.render(w, r, http.StatusOK, views.LayoutProps{User: viewUser(u)}, views.History(rows))
}

func (a *App) profile(w http.ResponseWriter, r *http.Request, _ Session, u User) {
	a.render(w, r, http.StatusOK, views.LayoutProps{User: viewUser(u)}, views.Profile(*viewUser(u)))
}

func (a *App) poster(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(r.PathValue("file"), ".jpg")
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := views.Poster(name).Render(r.Context(), w); err != nil {
		a.logger.Error("Rendering poster failed", slog.String("file", name), slog.Any("err", err))
	}
}

func (a *App) login(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("username")
	u, err := a.users.authenticate(email, r.PostFormValue("password"))
	if err != nil {
		a.logger.Info("Login rejected", slog.String("username", email))
		a.render(w, r, http.StatusOK, views.LayoutProps{
			LoginOpen:  true,
			LoginEmail: email,
			LoginError: MsgInvalidCredentials,
		}, views.Home(viewMovies(a.catalog.Movies), false))
		return
	}

	a.startSession(w, u)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) register(w http.ResponseWriter, r *http.Request) {
	name := r.PostFormValue("name")
	email := r.PostFormValue("username")
	u, err := a.users.register(name, email, r.PostFormValue("password"))
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		a.render(w, r, http.StatusOK, views.LayoutProps{
			RegisterOpen:  true,
			RegisterName:  name,
			RegisterEmail: email,
			RegisterError: validationErr.Message,
		}, views.Home(viewMovies(a.catalog.Movies), false))
		return
	}
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	a.logger.Info("Registered user", slog.Int64("user", u.ID), slog.String("email", u.Email))
	a.startSession(w, u)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if id, err := uuid.FromString(cookie.Value); err == nil {
			a.sessions.Delete(id)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:   SessionCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
