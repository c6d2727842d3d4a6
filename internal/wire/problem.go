package wire

import (
	"fmt"
	"net/http"
)

// Problem is the RFC 7807 problem details body every error response
// carries.
type Problem struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// NewProblem builds a problem with the standard title for the status.
func NewProblem(status int, detail string) Problem {
	return Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
}

// Error implements the error interface so client code can surface a
// Problem directly.
func (p Problem) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%d %s: %s", p.Status, p.Title, p.Detail)
	}
	return fmt.Sprintf("%d %s", p.Status, p.Title)
}

// IsAuthError reports a 401 response.
func (p Problem) IsAuthError() bool {
	return p.Status == http.StatusUnauthorized
}

// IsNotFound reports a 404 response.
func (p Problem) IsNotFound() bool {
	return p.Status == http.StatusNotFound
}

// IsConflict reports a 409 response.
func (p Problem) IsConflict() bool {
	return p.Status == http.StatusConflict
}
