package config

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger())
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.InfoLevel, entry.Level)
	assert.Equal(t, http.StatusTeapot, entry.Data["status"])
	assert.Equal(t, "/ok", entry.Data["path"])
	assert.NotEmpty(t, entry.Data["request_id"])

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, log.ErrorLevel, hook.LastEntry().Level)
}

func TestLogging(t *testing.T) {
	out, level := log.StandardLogger().Out, log.GetLevel()
	defer func() {
		log.SetOutput(out)
		log.SetLevel(level)
	}()

	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, Logging(dir, "match_service_1", "debug"))
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	log.Debug("hello from test")
	data, err := os.ReadFile(filepath.Join(dir, "match_service_1.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")

	assert.Error(t, Logging(dir, "x", "chatty"))
}

func TestNewInstanceID(t *testing.T) {
	a, b := NewInstanceID(), NewInstanceID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
