package jwtutil

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionAudience = "passmeter:session"

var (
	ErrShortSecret  = errors.New("session secret must be at least 32 bytes")
	ErrInvalidToken = errors.New("invalid session token")
)

// SessionClaims identify a history session; Subject is the session id.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// Signer issues and checks HS256 session tokens.
type Signer struct {
	cfg    Config
	parser *jwt.Parser
	now    func() time.Time
}

func NewSigner(cfg Config) (*Signer, error) {
	if len(cfg.Secret) < 32 {
		return nil, ErrShortSecret
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaultIssuer
	}
	return &Signer{
		cfg: cfg,
		parser: jwt.NewParser(
			jwt.WithLeeway(cfg.ClockSkew),
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithAudience(sessionAudience),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
		),
		now: time.Now,
	}, nil
}

// SignSession returns the token and its jti.
func (s *Signer) SignSession(sessionID string, ttl time.Duration) (string, string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", "", err
	}
	jti := hex.EncodeToString(b[:])

	now := s.now()
	claims := SessionClaims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    s.cfg.Issuer,
		Subject:   sessionID,
		Audience:  jwt.ClaimStrings{sessionAudience},
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// ParseSession checks signature, issuer, audience and expiry (with leeway).
func (s *Signer) ParseSession(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := s.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
