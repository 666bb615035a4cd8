package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)

	return rec.Code, string(body)
}

func TestServerHandler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.js"), []byte("const keywordData = [];"), 0o600))

	srv := NewServer(0, dir, nil, nil)
	h := srv.Handler()

	code, body := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body)

	code, _ = get(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, code)

	code, body = get(t, h, "/data.js")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "keywordData")

	code, body = get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "go_goroutines")
}

func TestServerReadinessFailure(t *testing.T) {
	srv := NewServer(0, "", func(context.Context) error { return errors.New("missing") }, nil)

	code, body := get(t, srv.Handler(), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body, "missing")

	code, _ = get(t, srv.Handler(), "/index.html")
	assert.Equal(t, http.StatusNotFound, code)
}
