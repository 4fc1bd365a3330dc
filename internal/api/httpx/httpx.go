package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// Envelope wraps every successful response body.
type Envelope struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Envelope{Status: "success", Data: data})
}

func Created(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Envelope{Status: "success", Data: data})
}

func OKNoData(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, Envelope{Status: "success"})
}

// DecodeJSON reads exactly one JSON object into dst, rejecting unknown fields.
// An empty body leaves dst untouched when allowEmpty is set.
func DecodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON object")
	}
	return nil
}
