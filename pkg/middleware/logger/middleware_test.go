package logger

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joeydtaylor/steeze-dns/pkg/middleware/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewMiddleware(zap.New(core))
	AddBodyLogPaths("/dns/logged", " ")

	var seen string
	h := m.Middleware(auth.New(auth.Options{}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		seen = string(b)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hi"))
	}))

	for _, path := range []string{"/dns/logged", "/dns/quiet"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"remove":1}`))
		req.Header.Set("Content-Type", "application/json")
		req = req.WithContext(auth.WithUser(req.Context(), auth.User{Username: "alice"}))
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, `{"remove":1}`, seen, "body must reach the handler")
	}

	entries := logs.All()
	require.Len(t, entries, 2)
	first := entries[0].ContextMap()
	assert.Equal(t, "/dns/logged", first["uri"])
	assert.Equal(t, "alice", first["username"])
	assert.Equal(t, true, first["isAuthenticated"])
	assert.EqualValues(t, http.StatusTeapot, first["status"])
	assert.EqualValues(t, 2, first["responseSize"])
	assert.Equal(t, `{"remove":1}`, first["requestData"])

	_, logged := entries[1].ContextMap()["requestData"]
	assert.False(t, logged)
}

func TestShouldLogBody(t *testing.T) {
	AddBodyLogPaths("/x")
	get := httptest.NewRequest(http.MethodGet, "/x", nil)
	assert.False(t, shouldLogBody(get, []byte("{}")))

	post := httptest.NewRequest(http.MethodPost, "/x", nil)
	assert.False(t, shouldLogBody(post, []byte("{}")), "no content type")
	post.Header.Set("Content-Type", "application/json; charset=utf-8")
	assert.True(t, shouldLogBody(post, []byte("{}")))
	assert.False(t, shouldLogBody(post, nil))
	assert.False(t, shouldLogBody(post, make([]byte, 1<<16+1)))
}

func TestNewLogWritesUnderLogDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOG_DIR", dir)
	l := NewLog("test.log")
	l.Info("hello")
	_ = l.Sync()
	assert.FileExists(t, dir+"/test.log")
}
