package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/locvowork/dropdown_export/internal/config"
	"github.com/locvowork/dropdown_export/internal/handler"
	"github.com/locvowork/dropdown_export/internal/service"
	"github.com/stretchr/testify/require"
)

func loadConfig(t *testing.T, env map[string]string) {
	t.Helper()
	for k, v := range env {
		t.Setenv(k, v)
	}
	require.NoError(t, config.LoadEnvConfig())
}

func TestOpenStaticDictionary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.yaml")
	require.NoError(t, os.WriteFile(path, []byte("status:\n  - value: Open\n"), 0o644))
	loadConfig(t, map[string]string{"DICTIONARY_FILE": path})

	dict, closeDict, err := OpenDictionaryStore(context.Background(), config.DictionarySourceStatic)
	require.NoError(t, err)
	defer closeDict()

	options, err := dict.Options(context.Background(), "status")
	require.NoError(t, err)
	require.Equal(t, []string{"Open"}, options)
}

func TestOpenUnknownDictionary(t *testing.T) {
	loadConfig(t, nil)
	_, _, err := OpenDictionaryStore(context.Background(), "redis")
	require.Error(t, err)
}

func TestDropdownOptions(t *testing.T) {
	loadConfig(t, map[string]string{"DROPDOWN_MAX_ROWS": "50"})
	require.Len(t, DropdownOptions(), 3)
}

func TestRoutes(t *testing.T) {
	loadConfig(t, map[string]string{"TEMPLATE_DIR": t.TempDir()})
	app := NewApp()
	svc := service.NewTemplateService(nil, config.DefaultEnvConfig.TEMPLATE_DIR, 1, DropdownOptions()...)
	app.RegisterMiddlewares()
	app.RegisterRoutes(handler.NewTemplateHandler(svc))

	for target, want := range map[string]int{
		"/healthz":        http.StatusOK,
		"/templates":      http.StatusOK,
		"/templates/nope": http.StatusNotFound,
	} {
		rec := httptest.NewRecorder()
		app.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, want, rec.Code, target)
	}
}

func TestCloseRunsClosersOnce(t *testing.T) {
	app := NewApp()
	var calls []string
	app.addCloser(func() error {
		calls = append(calls, "dictionary")
		return nil
	})
	app.addCloser(func() error {
		calls = append(calls, "broken")
		return errors.New("already closed")
	})

	app.Close()
	app.Close()
	require.Equal(t, []string{"dictionary", "broken"}, calls)
}
