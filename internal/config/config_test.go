package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadEnvConfigWithoutDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DROPDOWN_MAX_ROWS", "250")
	t.Setenv("DICTIONARY_SOURCE", "Elastic")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90")
	t.Setenv("LOG_DEBUG", "true")

	require.NoError(t, LoadEnvConfig())
	require.Equal(t, 250, DefaultEnvConfig.DROPDOWN_MAX_ROWS)
	require.Equal(t, 100, DefaultEnvConfig.DROPDOWN_MAX_CASCADE_ROWS)
	require.Equal(t, DictionarySourceElastic, DefaultEnvConfig.DICTIONARY_SOURCE)
	require.Equal(t, 90*time.Second, DefaultEnvConfig.DB_CONN_MAX_LIFETIME)
	require.True(t, DefaultEnvConfig.LOG_DEBUG)
	require.Equal(t, "8080", DefaultEnvConfig.APP_PORT)
}

func TestLoadEnvConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(".env", []byte("TEMPLATE_DIR=/srv/templates\nDROPDOWN_INLINE_LIMIT=5\n"), 0o600))
	// godotenv does not override variables that are already set.
	t.Setenv("TEMPLATE_DIR", "")
	t.Setenv("DROPDOWN_INLINE_LIMIT", "")
	os.Unsetenv("TEMPLATE_DIR")
	os.Unsetenv("DROPDOWN_INLINE_LIMIT")

	require.NoError(t, LoadEnvConfig())
	require.Equal(t, "/srv/templates", DefaultEnvConfig.TEMPLATE_DIR)
	require.Equal(t, 5, DefaultEnvConfig.DROPDOWN_INLINE_LIMIT)
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("CFG_TEST_INT", "not-a-number")
	t.Setenv("CFG_TEST_BOOL", "maybe")
	require.Equal(t, 7, getEnvInt("CFG_TEST_INT", 7))
	require.False(t, getEnvBool("CFG_TEST_BOOL", false))
	require.Equal(t, time.Minute, getEnvDuration("CFG_TEST_MISSING", time.Minute))
}
