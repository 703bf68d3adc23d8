package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"liveroom-server/internal/types"
)

type contextKey string

const userKey contextKey = "user"

func WithUser(ctx context.Context, user types.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser returns the authenticated user placed in the context by
// authMiddleware.
func CurrentUser(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(userKey).(types.User)
	return user, ok
}

func (s *LiveRoomApp) errorHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				var panicError error
				switch e := err.(type) {
				case error:
					panicError = e
				default:
					panicError = fmt.Errorf("%v", e)
				}
				s.log.Printf("panic: %v", panicError)
				errResp := NewInternalServerError(panicError)
				w.Header().Set("Connection", "close")
				s.writeJson(w, errResp.StatusCode, errResp)
				return
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// requestLogger tags each request with a short id and logs it after serving.
func (s *LiveRoomApp) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqId, err := s.generateRequestId()
		if err != nil {
			s.log.Printf("generate request id: %v", err)
		} else {
			w.Header().Set("X-Request-Id", reqId)
		}

		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Printf("%s %s %s %s", r.Method, r.URL.Path, reqId, time.Since(start))
	})
}

// extractBearerToken pulls the opaque token out of the Authorization header.
func extractBearerToken(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", fmt.Errorf("missing authorization header")
	}

	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return "", fmt.Errorf("malformed authorization header")
	}

	return token, nil
}

// authMiddleware resolves the bearer token to a user row. Tokens are opaque:
// the store lookup is the whole validation.
func (s *LiveRoomApp) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r)
		if err != nil {
			errResp := NewUnauthorizedError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		dbUser, err := s.db.GetUserByToken(token)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				s.log.Printf("get user by token: %v", err)
			}
			errResp := NewUnauthorizedError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		ctx := WithUser(r.Context(), types.User{
			Id:           dbUser.Id,
			Name:         dbUser.Name,
			LeaderCardId: dbUser.LeaderCardId,
		})
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")

		next(w, r.WithContext(ctx))
	}
}
