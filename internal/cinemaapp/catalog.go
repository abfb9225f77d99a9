package cinemaapp

import (
	"strings"

	"github.com/samber/lo"
)

// Movie is a film shown by the cinema.
type Movie struct {
	ID          int64
	Name        string
	Description string
	Poster      string
}

// Branch is a cinema location.
type Branch struct {
	ID      int64
	Name    string
	Address string
}

// Room is an auditorium of a branch.
type Room struct {
	ID   int64
	Name string
}

// Schedule is one screening of a movie in a room.
type Schedule struct {
	ID        int64
	MovieID   int64
	BranchID  int64
	RoomID    int64
	StartDate string
	StartTime string
}

// Catalog is the static movie program of the fixture application.
type Catalog struct {
	Movies    []Movie
	Branches  []Branch
	Rooms     []Room
	Schedules []Schedule
	// SeatCount is the number of seats in every room.
	SeatCount int
	// SeatPrice in VND.
	SeatPrice int64
}

// DefaultCatalog returns the program the scenarios are written against.
// Schedule 1 is movie 7 at branch 1 on 2021-01-05 10:15 in room 1.
func DefaultCatalog() Catalog {
	c := Catalog{
		Movies: []Movie{
			{ID: 7, Name: "Người Nhện", Description: "Peter Parker phải đối mặt với những hậu quả khi danh tính Người Nhện bị tiết lộ.", Poster: "/static/posters/7.jpg"},
			{ID: 3, Name: "Bố Già", Description: "Câu chuyện về gia đình ông Sang và những người con.", Poster: "/static/posters/3.jpg"},
			{ID: 5, Name: "Lật Mặt", Description: "Một chuyến đi về quê biến thành cuộc rượt đuổi nghẹt thở.", Poster: "/static/posters/5.jpg"},
		},
		Branches: []Branch{
			{ID: 1, Name: "HUYCINEMA Hà Đông", Address: "Số 10 Trần Phú, Hà Đông, Hà Nội"},
			{ID: 2, Name: "HUYCINEMA Thủ Đức", Address: "Số 216 Võ Văn Ngân, Thủ Đức, TP. Hồ Chí Minh"},
		},
		Rooms: []Room{
			{ID: 1, Name: "Phòng 101"},
			{ID: 2, Name: "Phòng 102"},
		},
		SeatCount: 20,
		SeatPrice: 75000,
	}

	dates := []string{"2021-01-05", "2021-01-08"}
	times := []string{"10:15", "14:05"}

	var id int64
	for _, m := range c.Movies {
		for _, b := range c.Branches {
			for _, d := range dates {
				for _, tm := range times {
					for _, r := range c.Rooms {
						id++
						c.Schedules = append(c.Schedules, Schedule{
							ID:        id,
							MovieID:   m.ID,
							BranchID:  b.ID,
							RoomID:    r.ID,
							StartDate: d,
							StartTime: tm,
						})
					}
				}
			}
		}
	}

	return c
}

// Search returns the movies whose name contains query, ignoring case.
func (c Catalog) Search(query string) []Movie {
	q := strings.ToLower(strings.TrimSpace(query))
	return lo.Filter(c.Movies, func(m Movie, _ int) bool {
		return strings.Contains(strings.ToLower(m.Name), q)
	})
}

func (c Catalog) Movie(id int64) (Movie, bool) {
	return lo.Find(c.Movies, func(m Movie) bool { return m.ID == id })
}

func (c Catalog) Branch(id int64) (Branch, bool) {
	return lo.Find(c.Branches, func(b Branch) bool { return b.ID == id })
}

func (c Catalog) Room(id int64) (Room, bool) {
	return lo.Find(c.Rooms, func(r Room) bool { return r.ID == id })
}

func (c Catalog) ScheduleByID(id int64) (Schedule, bool) {
	return lo.Find(c.Schedules, func(s Schedule) bool { return s.ID == id })
}

// FindSchedule resolves the query parameters used by the seat selection page.
func (c Catalog) FindSchedule(movieID, branchID, roomID int64, date, time string) (Schedule, bool) {
	return lo.Find(c.Schedules, func(s Schedule) bool {
		return s.MovieID == movieID && s.BranchID == branchID && s.RoomID == roomID && s.StartDate == date && s.StartTime == time
	})
}

func (c Catalog) schedulesFor(movieID, branchID int64) []Schedule {
	return lo.Filter(c.Schedules, func(s Schedule, _ int) bool {
		return s.MovieID == movieID && s.BranchID == branchID
	})
}

// Dates lists the distinct screening dates of a movie at a branch.
func (c Catalog) Dates(movieID, branchID int64) []string {
	return lo.Uniq(lo.Map(c.schedulesFor(movieID, branchID), func(s Schedule, _ int) string { return s.StartDate }))
}

// Times lists the distinct screening times of a movie at a branch.
func (c Catalog) Times(movieID, branchID int64) []string {
	return lo.Uniq(lo.Map(c.schedulesFor(movieID, branchID), func(s Schedule, _ int) string { return s.StartTime }))
}

// RoomsFor lists the rooms showing the movie at the given date and time.
func (c Catalog) RoomsFor(movieID, branchID int64, date, time string) []Room {
	roomIDs := lo.FilterMap(c.schedulesFor(movieID, branchID), func(s Schedule, _ int) (int64, bool) {
		return s.RoomID, s.StartDate == date && s.StartTime == time
	})
	return lo.Filter(c.Rooms, func(r Room, _ int) bool { return lo.Contains(roomIDs, r.ID) })
}

// TimesOn lists the screening times of a movie at a branch on one date.
func (c Catalog) TimesOn(movieID, branchID int64, date string) []string {
	return lo.Uniq(lo.FilterMap(c.schedulesFor(movieID, branchID), func(s Schedule, _ int) (string, bool) {
		return s.StartTime, s.StartDate == date
	}))
}
