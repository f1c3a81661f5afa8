// Package token issues and verifies the signed identity tokens used for
// bearer authentication. The signing key lives in process memory only:
// tokens do not survive a restart and cannot be verified by another
// instance.
package token

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMalformedToken = errors.New("malformed or unverifiable token")

const keySize = 32

// Service signs and verifies identity tokens with an HMAC-SHA256 key
// generated once at construction. The key is read-only afterwards, so the
// service is safe for concurrent use.
type Service struct {
	key    []byte
	expiry time.Duration
	now    func() time.Time
}

// NewService generates a fresh signing key and returns a service issuing
// tokens that expire after the given duration.
func NewService(expiry time.Duration) (*Service, error) {
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return &Service{key: key, expiry: expiry, now: time.Now}, nil
}

// Issue builds a signed token asserting the given subject, valid from now
// until now plus the service expiry.
func (s *Service) Issue(subject string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.key)
}

// ExtractSubject parses and verifies a token and returns its subject.
// Returns ErrMalformedToken when the token cannot be parsed, its signature
// does not verify, or its claims fail validation.
func (s *Service) ExtractSubject(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", ErrMalformedToken
	}
	return claims.Subject, nil
}

// Valid reports whether the token parses, its signature verifies, its
// subject equals the expected subject, and its expiration is still in the
// future. It never returns an error; any failure yields false.
func (s *Service) Valid(tokenString, subject string) bool {
	claims, err := s.parse(tokenString)
	if err != nil {
		return false
	}
	return claims.Subject == subject
}

func (s *Service) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrMalformedToken
		}
		return s.key, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, ErrMalformedToken
	}
	return claims, nil
}
