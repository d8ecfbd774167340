package jwtauth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"card_market/pkg/jwtauth"
)

func TestAuthority(t *testing.T) {
	rq := require.New(t)

	authority := jwtauth.New([]byte("test-secret"))

	token, err := authority.Sign("0b7c5b0e-7f5e-4b1e-9d7a-2f1f6c1d9a10", time.Hour)
	rq.NoError(err)

	subject, err := authority.Verify(token)
	rq.NoError(err)
	rq.Equal("0b7c5b0e-7f5e-4b1e-9d7a-2f1f6c1d9a10", subject)

	_, err = jwtauth.New([]byte("other-secret")).Verify(token)
	rq.Error(err)

	expired, err := authority.Sign("user", -time.Minute)
	rq.NoError(err)

	_, err = authority.Verify(expired)
	rq.Error(err)

	empty, err := authority.Sign("", time.Hour)
	rq.NoError(err)

	_, err = authority.Verify(empty)
	rq.ErrorIs(err, jwtauth.ErrEmptySubject)
}
