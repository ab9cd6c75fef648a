package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromWritesTemplateOnFirstRun(t *testing.T) {
	home := t.TempDir()

	cfg, err := LoadFrom(home)
	require.NoError(t, err)

	assert.Equal(t, home, cfg.Home)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, filepath.Join(home, "tick.db"), cfg.Storage.Path)
	assert.Equal(t, "09:00", cfg.Rules.LateAfter)
	assert.Equal(t, DefaultClientID, cfg.Directory.ClientID)

	_, err = os.Stat(filepath.Join(home, "config.json"))
	require.NoError(t, err, "template should be written on first run")

	// The written template must itself parse back to the same settings.
	again, err := LoadFrom(home)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadFromPartialFile(t *testing.T) {
	home := t.TempDir()
	content := `// partial config
{
  // only override a few things
  "timezone": "UTC",
  "rules": { "late_after": "08:30" },
  "storage": { "driver": "sqlite" }
}
`
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.json"), []byte(content), 0o600))

	cfg, err := LoadFrom(home)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "08:30", cfg.Rules.LateAfter)
	assert.Equal(t, "17:00", cfg.Rules.EarlyBefore)
	assert.Equal(t, 720, cfg.Rules.SevereMinutes)

	rules, err := cfg.ClassifierRules()
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour+30*time.Minute, rules.LateAfter)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("TICK_STORAGE_DRIVER", "sqlite")
	t.Setenv("TICK_SEVERE_MINUTES", "800")
	t.Setenv("TICK_ALLOWED_ORIGINS", "http://a,http://b")

	cfg, err := LoadFrom(home)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, 800, cfg.Rules.SevereMinutes)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.Server.AllowedOrigins)
}

func TestLoadFromDotEnvInHome(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, ".env"), []byte("TICK_WATCH_INTERVAL=90s\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("TICK_WATCH_INTERVAL") })

	cfg, err := LoadFrom(home)
	require.NoError(t, err)
	d, err := cfg.WatchInterval()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)
}

func TestLoadFromInvalid(t *testing.T) {
	tests := map[string]string{
		"bad json":     `{"timezone": `,
		"bad driver":   `{"storage": {"driver": "postgres"}}`,
		"bad timezone": `{"timezone": "Mars/Olympus"}`,
		"bad rules":    `{"rules": {"excessive_minutes": 800, "severe_minutes": 700}}`,
		"bad clock":    `{"rules": {"late_after": "nine"}}`,
		"bad interval": `{"watch": {"interval": "soon"}}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			home := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(home, "config.json"), []byte(content), 0o600))
			_, err := LoadFrom(home)
			assert.Error(t, err)
		})
	}
}

func TestStripLineComments(t *testing.T) {
	in := []byte("// header\n{\n  // field\n  \"a\": \"http://x\"\n}\n")
	got := string(stripLineComments(in))
	assert.NotContains(t, got, "header")
	assert.NotContains(t, got, "field")
	assert.Contains(t, got, `"a": "http://x"`)
}
