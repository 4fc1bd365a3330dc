package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/5w1tchy/passmeter/internal/api/apperr"
	jwtutil "github.com/5w1tchy/passmeter/internal/security/jwt"
)

const ctxKeySessionID ctxKey = 1

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ctxKeySessionID, sessionID)
}

func SessionIDFrom(ctx context.Context) (string, bool) {
	v, _ := ctx.Value(ctxKeySessionID).(string)
	return v, v != ""
}

// RequireSession admits requests carrying a valid session token and puts the
// session id on the context.
func RequireSession(signer *jwtutil.Signer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, detail := bearerToken(r.Header.Get("Authorization"))
		if detail != "" {
			apperr.WriteStatus(w, r, http.StatusUnauthorized, "Unauthorized", detail)
			return
		}
		claims, err := signer.ParseSession(tok)
		if err != nil {
			Logger(r).Debug().Err(err).Msg("session token rejected")
			apperr.WriteStatus(w, r, http.StatusUnauthorized, "Unauthorized", "invalid session token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), claims.Subject)))
	})
}

// bearerToken returns the token or a problem detail.
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "missing Authorization header"
	}
	scheme, tok, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", "invalid Authorization header"
	}
	if tok = strings.TrimSpace(tok); tok == "" {
		return "", "invalid Authorization header"
	}
	return tok, ""
}
