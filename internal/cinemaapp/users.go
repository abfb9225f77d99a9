package cinemaapp

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/samber/lo"
)

// Form messages shown by the application.
const (
	MsgInvalidCredentials = "Sai email hoặc mật khẩu!"
	MsgUserExists         = "Đã tồn tại người dùng, vui lòng chọn tên đăng nhập khác"
	MsgNameRequired       = "Không được để trống họ tên!"
	MsgEmailRequired      = "Không được để trống email!"
	MsgPasswordRequired   = "Không được để trống mật khẩu!"
	MsgPasswordTooShort   = "Mật khẩu phải có ít nhất 6 ký tự"
	MsgEmailInvalid       = "Email không hợp lệ"
)

// MinPasswordLength for registration.
const MinPasswordLength = 6

// ValidationError carries a message for the registration form.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var errInvalidCredentials = errors.New(MsgInvalidCredentials)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]{2,}$`)

// User is an account of the cinema.
type User struct {
	ID       int64
	Name     string
	Email    string
	Password string
}

// DefaultUsers returns the accounts the scenarios log in with.
func DefaultUsers() []User {
	return []User{
		{ID: 1, Name: "Test1", Email: "example@gmail.com", Password: "1234567"},
		{ID: 2, Name: "Test1", Email: "example1@gmail.com", Password: "1234567"},
		{ID: 3, Name: "Hùng", Email: "hung@example.com", Password: "123456"},
	}
}

type userStore struct {
	mu     sync.RWMutex
	users  []User
	tokens map[string]int64
}

func newUserStore(users []User) *userStore {
	return &userStore{
		users:  append([]User(nil), users...),
		tokens: make(map[string]int64),
	}
}

func (s *userStore) authenticate(email, password string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, found := lo.Find(s.users, func(u User) bool {
		return strings.EqualFold(u.Email, strings.TrimSpace(email))
	})
	if !found || u.Password != password {
		return User{}, errInvalidCredentials
	}
	return u, nil
}

func (s *userStore) byID(id int64) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Find(s.users, func(u User) bool { return u.ID == id })
}

// register validates the form and adds the account.
func (s *userStore) register(name, email, password string) (User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	switch {
	case name == "":
		return User{}, &ValidationError{MsgNameRequired}
	case email == "":
		return User{}, &ValidationError{MsgEmailRequired}
	case !emailPattern.MatchString(email):
		return User{}, &ValidationError{MsgEmailInvalid}
	case password == "":
		return User{}, &ValidationError{MsgPasswordRequired}
	case len([]rune(password)) < MinPasswordLength:
		return User{}, &ValidationError{MsgPasswordTooShort}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if lo.ContainsBy(s.users, func(u User) bool { return strings.EqualFold(u.Email, email) }) {
		return User{}, &ValidationError{MsgUserExists}
	}

	u := User{
		ID:       lo.MaxBy(s.users, func(a, b User) bool { return a.ID > b.ID }).ID + 1,
		Name:     name,
		Email:    email,
		Password: password,
	}
	s.users = append(s.users, u)
	return u, nil
}

func (s *userStore) issueToken(userID int64) string {
	token := uuid.Must(uuid.NewV4()).String()

	s.mu.Lock()
	s.tokens[token] = userID
	s.mu.Unlock()

	return token
}

func (s *userStore) userForToken(token string) (User, bool) {
	s.mu.RLock()
	userID, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok {
		return User{}, false
	}
	return s.byID(userID)
}
