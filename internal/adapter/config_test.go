package adapter

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFrom_Defaults(t *testing.T) {
	cfg, err := LoadConfigFrom(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, DefaultServerURL, cfg.Server.URL)
	require.Equal(t, 20, cfg.Catalog.PageSize)
	require.Equal(t, 10*time.Second, cfg.Catalog.ReaperInterval)
	require.Equal(t, 30*time.Second, cfg.Catalog.StaleAfter)
	require.Equal(t, "android", cfg.Location.Platform)
	require.False(t, cfg.Location.HasLocation())
	require.False(t, cfg.IsConfigured())
}

func TestLoadConfigFrom_File(t *testing.T) {
	dir := t.TempDir()
	yaml := `server:
  url: http://localhost:5000
  token: abc
catalog:
  page_size: 12
  reaper_interval: 5s
location:
  platform: ios
  latitude: 25.79
  longitude: -80.13
metrics:
  listen: 127.0.0.1:9091
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)

	require.Equal(t, "http://localhost:5000", cfg.Server.URL)
	require.True(t, cfg.IsConfigured())
	require.Equal(t, 12, cfg.Catalog.PageSize)
	require.Equal(t, 5*time.Second, cfg.Catalog.ReaperInterval)
	require.Equal(t, 30*time.Second, cfg.Catalog.StaleAfter)
	require.Equal(t, "ios", cfg.Location.Platform)
	require.True(t, cfg.Location.HasLocation())
	require.Equal(t, "127.0.0.1:9091", cfg.Metrics.Listen)
}

func TestLoadConfigFrom_EnvOverrides(t *testing.T) {
	t.Setenv("JEWGO_SERVER_TOKEN", "from-env")
	t.Setenv("JEWGO_CATALOG_PAGE_SIZE", "7")

	cfg, err := LoadConfigFrom(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Server.Token)
	require.Equal(t, 7, cfg.Catalog.PageSize)
}

func TestLoadConfigFrom_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0644))

	_, err := LoadConfigFrom(dir)
	require.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	cfg := DefaultConfig()
	cfg.Server.URL = "http://example.test"
	cfg.Catalog.StaleAfter = 45 * time.Second
	cfg.Catalog.PersistCache = true
	cfg.UI.StartCategory = "shul"
	cfg.Browser.Args = []string{"--new-window"}
	require.NoError(t, SaveConfigTo(dir, cfg))

	require.NoError(t, SaveTokenTo(dir, "tok", "user@example.com"))

	got, err := LoadConfigFrom(dir)
	require.NoError(t, err)
	require.Equal(t, "http://example.test", got.Server.URL)
	require.Equal(t, "tok", got.Server.Token)
	require.Equal(t, "user@example.com", got.Server.Email)
	require.Equal(t, 45*time.Second, got.Catalog.StaleAfter)
	require.True(t, got.Catalog.PersistCache)
	require.Equal(t, "shul", got.UI.StartCategory)
	require.Equal(t, []string{"--new-window"}, got.Browser.Args)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")
	logger.Info("dropped")
	logger.Warn("kept", "category", "mikvah")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "kept", line["msg"])
	require.Equal(t, "jewgo", line["app"])
	require.Equal(t, "mikvah", line["category"])

	require.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	require.Equal(t, slog.LevelInfo, parseLogLevel("bogus"))
}

func TestSetupLogger(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "jewgo.log")
	logger, closer, err := SetupLogger(&LoggingConfig{File: path, Level: "INFO"})
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"hello"`)
}
