package middlewarex

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"git.appkode.ru/pub/go/failure"

	"card_market/pkg/contextx"
	"card_market/pkg/errcodes"
	"card_market/pkg/httpx/reply"
	"card_market/pkg/logx"
)

type tokenVerifier interface {
	Verify(token string) (string, error)
}

// Auth requires a valid bearer token and stores its subject as the caller's
// user id in the request context.
func Auth(verifier tokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				reply.Error(ctx, w, failure.NewUnauthorizedError(
					"missing bearer token",
					failure.WithCode(errcodes.AccessTokenInvalid),
					failure.WithDescription("Authorization header with a bearer token is required"),
				))

				return
			}

			subject, err := verifier.Verify(token)
			if err != nil {
				reply.Error(ctx, w, failure.NewUnauthorizedError(
					err.Error(),
					failure.WithCode(errcodes.AccessTokenInvalid),
					failure.WithDescription("Invalid access token"),
				))

				return
			}

			ctx = withUser(ctx, contextx.UserID(subject))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func withUser(ctx context.Context, userID contextx.UserID) context.Context {
	ctx = contextx.WithUserID(ctx, userID)

	return contextx.WithLogger(ctx, logger(ctx).With(slog.String(logx.FieldUserID, userID.String())))
}
