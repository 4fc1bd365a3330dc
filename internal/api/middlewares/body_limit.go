package middlewares

import (
	"net/http"
	"os"
	"strconv"

	"github.com/5w1tchy/passmeter/internal/api/apperr"
)

// DefaultBodyLimit covers the largest legitimate request: a check call with a
// long password.
const DefaultBodyLimit int64 = 64 << 10

// BodySizeLimit applies BodyLimit with MAX_BODY_SIZE or DefaultBodyLimit.
func BodySizeLimit(next http.Handler) http.Handler {
	limit := DefaultBodyLimit
	if raw := os.Getenv("MAX_BODY_SIZE"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}
	return BodyLimit(limit)(next)
}

// BodyLimit caps request bodies on POST, PUT and PATCH. A declared
// Content-Length over the cap is refused before the handler runs; chunked
// bodies hit http.MaxBytesReader while decoding.
func BodyLimit(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
			default:
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > limit {
				apperr.WriteStatus(w, r, http.StatusRequestEntityTooLarge, "Payload Too Large",
					"request body exceeds "+strconv.FormatInt(limit, 10)+" bytes")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
