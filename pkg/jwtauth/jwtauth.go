// Package jwtauth issues and verifies HS256 bearer tokens whose subject is
// the caller's user id.
package jwtauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/gbrlsnchs/jwt/v3"
)

var ErrEmptySubject = errors.New("token has empty subject")

type payload struct {
	jwt.Payload
}

type Authority struct {
	alg *jwt.HMACSHA
	now func() time.Time
}

func New(secret []byte) Authority {
	return Authority{
		alg: jwt.NewHS256(secret),
		now: time.Now,
	}
}

// Sign returns a token for subject valid for ttl.
func (a Authority) Sign(subject string, ttl time.Duration) (string, error) {
	now := a.now()

	p := payload{
		Payload: jwt.Payload{
			Subject:        subject,
			IssuedAt:       jwt.NumericDate(now),
			ExpirationTime: jwt.NumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.Sign(&p, a.alg)
	if err != nil {
		return "", fmt.Errorf("jwt.Sign: %w", err)
	}

	return string(token), nil
}

// Verify checks the signature and expiry and returns the token subject.
func (a Authority) Verify(token string) (string, error) {
	var p payload

	validate := jwt.ValidatePayload(&p.Payload, jwt.ExpirationTimeValidator(a.now()))

	if _, err := jwt.Verify([]byte(token), a.alg, &p, validate); err != nil {
		return "", fmt.Errorf("jwt.Verify: %w", err)
	}

	if p.Subject == "" {
		return "", ErrEmptySubject
	}

	return p.Subject, nil
}
