package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMiddlewareRecordsStatus(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := LogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "HTTP Request", entry.Message)
	assert.Equal(t, http.StatusTeapot, entry.Data["status"])
	assert.Equal(t, "/healthz", entry.Data["path"])
}

func TestStatusRecorderHijackUnsupported(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	_, _, err := rec.Hijack()
	assert.Error(t, err)
}

func TestLogWebSocketLifecycle(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "http://localhost:3000")

	entry := LogWebSocketConnect(logger, r, "c-1")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Game connection opened", hook.LastEntry().Message)
	assert.Equal(t, "c-1", hook.LastEntry().Data["conn"])
	assert.Equal(t, "http://localhost:3000", hook.LastEntry().Data["origin"])

	LogWebSocketDisconnect(entry, "r1", "alice", nil)
	last := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, last.Level)
	assert.Equal(t, "c-1", last.Data["conn"])
	assert.Equal(t, "r1", last.Data["room"])
	assert.Equal(t, "alice", last.Data["player"])
	assert.NotContains(t, last.Data, "error")

	LogWebSocketDisconnect(entry, "", "", errors.New("boom"))
	last = hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, last.Level)
	assert.Equal(t, "Game connection lost", last.Message)
	assert.EqualError(t, last.Data["error"].(error), "boom")
	assert.NotContains(t, last.Data, "room")

	LogWebSocketDisconnect(entry, "", "", websocket.CloseError{Code: websocket.StatusPolicyViolation, Reason: "bye"})
	last = hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, last.Level)
	assert.Equal(t, int(websocket.StatusPolicyViolation), last.Data["close_status"])
}
