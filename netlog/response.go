// Package netlog records the network responses a page observes and lets
// callers wait for a specific response triggered by an action.
package netlog

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/playwright-community/playwright-go"
)

// Response is a single observed network response.
type Response struct {
	ID        uuid.UUID `json:"id"`
	Method    string    `json:"method"`
	URL       string    `json:"url"`
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (r Response) String() string {
	return fmt.Sprintf("%s %d %s", r.Method, r.Status, r.URL)
}

// Matcher selects responses.
type Matcher func(Response) bool

// MethodAndURLContains matches responses to requests with the given method
// whose URL contains substr.
func MethodAndURLContains(method, substr string) Matcher {
	return func(r Response) bool {
		return strings.EqualFold(r.Method, method) && strings.Contains(r.URL, substr)
	}
}

func fromPlaywright(resp playwright.Response) Response {
	method := ""
	if req := resp.Request(); req != nil {
		method = req.Method()
	}
	return Response{
		ID:        uuid.Must(uuid.NewV4()),
		Method:    method,
		URL:       resp.URL(),
		Status:    resp.Status(),
		Timestamp: time.Now(),
	}
}
