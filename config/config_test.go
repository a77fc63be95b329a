package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateConfigHome(t *testing.T) {
	t.Helper()
	origConfig := xdg.ConfigHome
	xdg.ConfigHome = t.TempDir()
	t.Cleanup(func() { xdg.ConfigHome = origConfig })
	t.Setenv("FICHAS_CONFIG", "")
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsMatchDefaultDisplay(t *testing.T) {
	isolateConfigHome(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultDisplay(), &cfg.Display)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "fichas", cfg.Mongo.Database)
	assert.Equal(t, 10*time.Second, cfg.Mongo.Timeout)
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	isolateConfigHome(t)
	path := writeYAML(t, t.TempDir(), `
display:
  default_group: "Principal"
  unknown_user: "Desconhecido"
  textarea_threshold: 40
  required_fields: ["titulo"]
log:
  level: debug
`)
	t.Setenv("FICHAS_UNKNOWN_USER", "Anônimo")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Principal", cfg.Display.DefaultGroup)
	assert.Equal(t, "Anônimo", cfg.Display.UnknownUser, "env wins over yaml")
	assert.Equal(t, 40, cfg.Display.TextareaThreshold)
	assert.Equal(t, []string{"titulo"}, cfg.Display.RequiredFields)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, DefaultYesLabel, cfg.Display.YesLabel)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	isolateConfigHome(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("FICHAS_CONFIG", filepath.Join(t.TempDir(), "also-missing.yaml"))
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoad_XDGDefaultFileIsRead(t *testing.T) {
	isolateConfigHome(t)
	dir := filepath.Join(xdg.ConfigHome, AppName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeYAML(t, dir, "display:\n  yes_label: \"Yes\"\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Yes", cfg.Display.YesLabel)
}

func TestValidate(t *testing.T) {
	isolateConfigHome(t)
	cfg, err := Load("")
	require.NoError(t, err)

	bad := *cfg
	bad.Display.DateLayout = ""
	bad.Display.TextareaThreshold = 0
	bad.Display.TimeZone = "Not/AZone"
	bad.Log.Level = "loud"
	bad.Log.Format = "xml"

	err = bad.Validate()
	require.Error(t, err)
	for _, want := range []string{"date_layout", "textarea_threshold", "time_zone", "log.level", "log.format"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestDisplayConfig_Helpers(t *testing.T) {
	d := DefaultDisplay()
	assert.True(t, d.IsRequired("nome"))
	assert.True(t, d.IsRequired("name"))
	assert.False(t, d.IsRequired("Nome"))

	assert.Equal(t, time.Local, d.Location())
	d.TimeZone = "UTC"
	assert.Equal(t, "UTC", d.Location().String())
	d.TimeZone = "Bogus/Zone"
	assert.Equal(t, time.Local, d.Location())

	var nilDisplay *DisplayConfig
	assert.Equal(t, time.Local, nilDisplay.Location())
}

func TestStorageConfig_DatabasePath(t *testing.T) {
	assert.Equal(t, "/tmp/x.db", StorageConfig{Path: "/tmp/x.db"}.DatabasePath())
	assert.Equal(t, filepath.Join(xdg.DataHome, "fichas", "fichas.db"), StorageConfig{}.DatabasePath())
}
