// internal/middleware/logging.go

package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

// statusRecorder captures the response status while staying hijackable for
// websocket upgrades.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// LogMiddleware is an HTTP middleware that logs incoming requests using Logrus.
// Logs the method, path, status, and duration of each request.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
				"remote":   r.RemoteAddr,
			}).Info("HTTP Request")
		})
	}
}

// LogWebSocketConnect logs an accepted game connection and returns the entry
// later passed to LogWebSocketDisconnect, so both lines share the conn id.
func LogWebSocketConnect(logger *logrus.Logger, r *http.Request, connID string) *logrus.Entry {
	entry := logger.WithFields(logrus.Fields{
		"conn":   connID,
		"remote": r.RemoteAddr,
	})
	entry.WithField("origin", r.Header.Get("Origin")).Info("Game connection opened")
	return entry
}

// LogWebSocketDisconnect logs the end of a game connection. room and player
// are the binding held at disconnect, empty if the client never joined.
// A close frame from the client is logged at info, anything else at warn.
func LogWebSocketDisconnect(entry *logrus.Entry, room, player string, err error) {
	fields := logrus.Fields{}
	if room != "" {
		fields["room"] = room
		fields["player"] = player
	}
	if err == nil {
		entry.WithFields(fields).Info("Game connection closed")
		return
	}
	if status := websocket.CloseStatus(err); status != -1 {
		fields["close_status"] = int(status)
		entry.WithFields(fields).Info("Game connection closed")
		return
	}
	entry.WithFields(fields).WithError(err).Warn("Game connection lost")
}
