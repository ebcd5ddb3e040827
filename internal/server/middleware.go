package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lealre/cinematch-backend/internal/api"
	"github.com/lealre/cinematch-backend/internal/auth"
	"github.com/lealre/cinematch-backend/internal/logx"
	"github.com/lealre/cinematch-backend/internal/mongodb"
)

const RequestIdHeader = "X-Request-Id"

////////////////////////////////////////////////////////////////////////////
//  LOGGER MIDDLEWARE
////////////////////////////////////////////////////////////////////////////

// responseRecorder wraps http.ResponseWriter to capture status code
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rr *responseRecorder) WriteHeader(statusCode int) {
	rr.statusCode = statusCode
	rr.ResponseWriter.WriteHeader(statusCode)
}

// Unwrap lets http.ResponseController reach the underlying writer, which the
// event stream needs to flush.
func (rr *responseRecorder) Unwrap() http.ResponseWriter {
	return rr.ResponseWriter
}

/*
RequestIdMiddleware gives each request an id, taken from the X-Request-Id header
when the client sends one, echoes it in the response and stores a logger
carrying request_id, method and path in the context.
- Logs when it receives a request
- Logs when it returns the response, with the duration and status code

Handlers can retrieve the logger using logx.FromContext(r.Context()).
*/
func RequestIdMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get(RequestIdHeader)
		if requestId == "" || len(requestId) > 64 {
			requestId = uuid.NewString()
		}
		startTime := time.Now()

		logger := logx.FromContext(r.Context()).WithFields(logrus.Fields{
			"request_id": requestId,
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		logger.Debug("request received")

		r = r.WithContext(logx.WithLogger(r.Context(), logger))

		w.Header().Set(RequestIdHeader, requestId)
		recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(recorder, r)

		entry := logger.WithFields(logrus.Fields{
			"status":      recorder.statusCode,
			"duration_ms": time.Since(startTime).Milliseconds(),
		})
		switch {
		case recorder.statusCode >= http.StatusInternalServerError:
			entry.Error("request completed")
		case recorder.statusCode >= http.StatusBadRequest:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
	})
}

////////////////////////////////////////////////////////////////////////////
//  AUTHENTICATION MIDDLEWARE
////////////////////////////////////////////////////////////////////////////

type UserLookup interface {
	GetUserById(ctx context.Context, id string) (mongodb.UserDb, error)
}

func AuthMiddleware(tokenSecret string, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			// Skip authentication for public endpoints
			if api.PublicPaths[r.Method+" "+r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, err := auth.GetBearerToken(r.Header)
			if err != nil {
				api.RespondWithUnauthorized(w, err)
				return
			}

			userId, err := auth.ValidateJWT(tokenString, tokenSecret)
			if err != nil {
				api.RespondWithUnauthorized(w, err)
				return
			}

			userDb, err := users.GetUserById(r.Context(), userId)
			if err != nil && !errors.Is(err, mongodb.ErrRecordNotFound) {
				logx.FromContext(r.Context()).WithError(err).Error("could not load authenticated user")
				http.Error(w, "Unexpected error occurred", http.StatusInternalServerError)
				return
			}
			if err != nil || !userDb.IsActive {
				api.RespondWithUnauthorized(w, auth.ErrInactiveUser)
				return
			}

			ctx := auth.WithUser(r.Context(), userDb)
			ctx = logx.WithFields(ctx, logrus.Fields{"user_id": userDb.Id})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
