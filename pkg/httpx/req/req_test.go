package req_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"git.appkode.ru/pub/go/failure"
	"github.com/stretchr/testify/require"

	"card_market/pkg/httpx/req"
)

type message struct {
	Text *string `json:"text" validate:"omitempty,max=5"`
}

func TestReadOptional(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		body          string
		contentLength int64
		wantText      string
		wantErr       bool
	}{
		{name: "empty body", body: "", contentLength: 0},
		{name: "empty chunked body", body: "", contentLength: -1},
		{name: "json body", body: `{"text":"hi"}`, contentLength: -1, wantText: "hi"},
		{name: "malformed json", body: `{"text":`, contentLength: -1, wantErr: true},
		{name: "validation failure", body: `{"text":"too long"}`, contentLength: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rq := require.New(t)

			r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(tt.body))
			r.ContentLength = tt.contentLength

			var dest message

			err := req.ReadOptional(r, &dest)
			if tt.wantErr {
				rq.True(failure.IsInvalidArgumentError(err))
				return
			}

			rq.NoError(err)

			if tt.wantText == "" {
				rq.Nil(dest.Text)
			} else {
				rq.Equal(tt.wantText, *dest.Text)
			}
		})
	}
}

func TestRead_EmptyBodyIsInvalid(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))

	err := req.Read(r, &message{})
	require.True(t, failure.IsInvalidArgumentError(err))
}
