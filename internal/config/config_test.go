package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks out every DVNT_ variable the loader reads so host
// environment leakage cannot affect assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DVNT_BASE_URL", "DVNT_AUTH_URL", "DVNT_TOKEN_URL",
		"DVNT_CLIENT_ID", "DVNT_CLIENT_SECRET", "DVNT_REDIRECT_PORT",
		"DVNT_SCOPE", "DVNT_MATURE_CONTENT", "DVNT_PAGE_SIZE", "DVNT_FORMAT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeGlobalConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfgDir := filepath.Join(dir, "dvnt")
	require.NoError(t, os.MkdirAll(cfgDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte(content), 0o600))
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(FlagOverrides{})
	require.NoError(t, err)

	assert.Equal(t, "https://www.deviantart.com/api/v1/oauth2", cfg.BaseURL)
	assert.Equal(t, "https://www.deviantart.com/oauth2/authorize", cfg.AuthURL)
	assert.Equal(t, "https://www.deviantart.com/oauth2/token", cfg.TokenURL)
	assert.Equal(t, 24, cfg.PageSize)
	assert.False(t, cfg.MatureContent)
	assert.Equal(t, "auto", cfg.Format)
	assert.Contains(t, cfg.Scope, "browse")
}

func TestGlobalFileLayer(t *testing.T) {
	clearEnv(t)
	writeGlobalConfig(t, `{
		"client_id": "12345",
		"mature_content": true,
		"page_size": 50,
		"format": "json"
	}`)

	cfg, err := Load(FlagOverrides{})
	require.NoError(t, err)

	assert.Equal(t, "12345", cfg.ClientID)
	assert.True(t, cfg.MatureContent)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "global", cfg.Sources["client_id"])
}

func TestMalformedFileIsSkipped(t *testing.T) {
	clearEnv(t)
	writeGlobalConfig(t, `{not json`)

	cfg, err := Load(FlagOverrides{})
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.PageSize)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	writeGlobalConfig(t, `{"client_id": "from-file", "page_size": 10}`)
	t.Setenv("DVNT_CLIENT_ID", "from-env")
	t.Setenv("DVNT_PAGE_SIZE", "30")
	t.Setenv("DVNT_MATURE_CONTENT", "true")

	cfg, err := Load(FlagOverrides{})
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.ClientID)
	assert.Equal(t, 30, cfg.PageSize)
	assert.True(t, cfg.MatureContent)
	assert.Equal(t, "env", cfg.Sources["client_id"])
}

func TestFlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DVNT_CLIENT_ID", "from-env")
	t.Setenv("DVNT_MATURE_CONTENT", "true")

	off := false
	cfg, err := Load(FlagOverrides{
		ClientID: "from-flag",
		Mature:   &off,
		PageSize: 12,
		Format:   "yaml",
	})
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.ClientID)
	assert.False(t, cfg.MatureContent)
	assert.Equal(t, 12, cfg.PageSize)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, "flag", cfg.Sources["client_id"])
	assert.Equal(t, "flag", cfg.Sources["mature_content"])
}

func TestPageSizeValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := Load(FlagOverrides{PageSize: 500})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page_size")
}

func TestEnvBoolParsing(t *testing.T) {
	for v, want := range map[string]bool{"true": true, "1": true, "false": false, "0": false, "TRUE": true} {
		got, ok := parseEnvBool(v)
		assert.True(t, ok, v)
		assert.Equal(t, want, got, v)
	}
	_, ok := parseEnvBool("maybe")
	assert.False(t, ok)
}

func TestRedirectURI(t *testing.T) {
	cfg := Default()
	cfg.RedirectPort = 9000
	assert.Equal(t, "http://127.0.0.1:9000/callback", cfg.RedirectURI())
}

func TestSaveMergesExisting(t *testing.T) {
	clearEnv(t)
	writeGlobalConfig(t, `{"client_id": "keep-me", "page_size": 10}`)

	require.NoError(t, Save(map[string]any{"format": "json", "page_size": nil}))

	cfg, err := Load(FlagOverrides{})
	require.NoError(t, err)
	assert.Equal(t, "keep-me", cfg.ClientID)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 24, cfg.PageSize) // deleted key falls back to default
}

func TestSaveCreatesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	require.NoError(t, Save(map[string]any{"client_id": "fresh"}))

	cfg, err := Load(FlagOverrides{})
	require.NoError(t, err)
	assert.Equal(t, "fresh", cfg.ClientID)
}

func TestNormalizeBaseURL(t *testing.T) {
	assert.Equal(t, "https://x.test", NormalizeBaseURL("https://x.test/"))
	assert.Equal(t, "https://x.test", NormalizeBaseURL("https://x.test"))
}
