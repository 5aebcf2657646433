package common

import (
	"errors"
	"net/http"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// HttpError carries an explicit status code through a handler's error
// return. Plain errors map to 502.
type HttpError struct {
	Status int
	Err    error
}

func (e *HttpError) Error() string { return e.Err.Error() }
func (e *HttpError) Unwrap() error { return e.Err }

// JsonHandler wraps a handler with OPTIONS/CORS handling, session cookie
// resolution and a JSON encoder for the response body.
func JsonHandler(log *zap.Logger, fn func(w http.ResponseWriter, r *http.Request, sessionId int) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			RespondToOptions(w, r)
			return
		}
		sessionId := HandleSessionCookie(w, r)
		w.Header().Set("Content-Type", "application/json")

		body, err := fn(w, r, sessionId)
		if err != nil {
			status := http.StatusBadGateway
			var httpErr *HttpError
			if errors.As(err, &httpErr) {
				status = httpErr.Status
			}
			log.Warn("request failed", zap.String("path", r.URL.Path), zap.Error(err))
			WriteError(w, status, err)
			return
		}
		if body == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := sonic.ConfigDefault.NewEncoder(w).Encode(body); err != nil {
			log.Warn("failed to encode response", zap.String("path", r.URL.Path), zap.Error(err))
		}
	}
}

func WriteError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	sonic.ConfigDefault.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func RespondToOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Age", "0")
	w.WriteHeader(http.StatusAccepted)
}
