package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

// FieldError points at one bad input. Code is machine readable ("unique",
// "check", "too_long", "invalid_policy", ...).
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Problem is an RFC 7807 body extended with request correlation and
// per-field errors.
type Problem struct {
	Type        string       `json:"type,omitempty"`
	Title       string       `json:"title"`
	Status      int          `json:"status"`
	Detail      string       `json:"detail,omitempty"`
	Instance    string       `json:"instance,omitempty"`
	RequestID   string       `json:"request_id,omitempty"`
	FieldErrors []FieldError `json:"field_errors,omitempty"`
	Retryable   bool         `json:"retryable,omitempty"`
}

const problemContentType = "application/problem+json"

// Write fills the defaults (500, status text, request path, request id) and
// sends p.
func Write(w http.ResponseWriter, r *http.Request, p Problem) {
	if p.Status == 0 {
		p.Status = http.StatusInternalServerError
	}
	if p.Title == "" {
		p.Title = http.StatusText(p.Status)
	}
	if r != nil {
		if p.Instance == "" {
			p.Instance = r.URL.Path
		}
		if p.RequestID == "" {
			p.RequestID = r.Header.Get("X-Request-ID")
		}
	}
	h := w.Header()
	h.Set("Content-Type", problemContentType)
	h.Del("Content-Length")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func WriteStatus(w http.ResponseWriter, r *http.Request, status int, title, detail string) {
	Write(w, r, Problem{Status: status, Title: title, Detail: detail})
}

// Invalid writes a 422 carrying a single field error.
func Invalid(w http.ResponseWriter, r *http.Request, field, code, msg string) {
	Write(w, r, Problem{
		Status:      http.StatusUnprocessableEntity,
		Title:       "Unprocessable Entity",
		FieldErrors: []FieldError{{Field: field, Code: code, Message: msg}},
	})
}

// BadJSON answers an undecodable body: 413 past the size cap, else 400.
func BadJSON(w http.ResponseWriter, r *http.Request, err error) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		Write(w, r, Problem{Status: http.StatusRequestEntityTooLarge})
		return
	}
	Write(w, r, Problem{Status: http.StatusBadRequest, Detail: "invalid JSON body"})
}
