package api

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/amterp/forts/internal/catalog"
	"github.com/amterp/forts/internal/service"
	"github.com/amterp/forts/internal/store"
	"github.com/amterp/forts/testutil"
)

func TestServer_DevModeReloadsTemplates(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir, cleanup := testutil.TempDir(t)
	defer cleanup()
	entries, err := fs.ReadDir(EmbeddedTemplates(), ".")
	require.NoError(t, err)
	for _, e := range entries {
		data, err := fs.ReadFile(EmbeddedTemplates(), e.Name())
		require.NoError(t, err)
		testutil.WriteFile(t, dir, e.Name(), string(data))
	}

	st := store.NewMemoryFortStore()
	svc := service.NewFortService(st, catalog.NewSnapshotCache(st, time.Hour, nil), nil)
	policy := NewImagePolicy(nil)
	views, err := NewViews(TemplatesFS(dir), TemplateFuncs(policy), nil)
	require.NoError(t, err)

	srv := NewServer(NewHandler(svc, views, policy, nil), ServerOptions{Dev: true, TemplateDir: dir}, nil, nil)
	require.NotNil(t, srv.watcher)
	require.NoError(t, srv.watcher.Start())

	get := func() string {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/castles", nil))
		return w.Body.String()
	}
	assert.Contains(t, get(), "/dev/reload", "dev pages carry the reload script")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "not_found.html"),
		[]byte(`{{define "content"}}Lost in the Sahyadris{{end}}`), 0o644))

	assert.Eventually(t, func() bool {
		return strings.Contains(get(), "Lost in the Sahyadris")
	}, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
}

func TestServer_ProductionHasNoReloadRoute(t *testing.T) {
	api := setupTestAPI(t)

	body := api.request(http.MethodGet, "/forts", nil).Body.String()
	assert.NotContains(t, body, "/dev/reload")

	w := api.request(http.MethodGet, "/dev/reload", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
