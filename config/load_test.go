package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromReaderDefaults(t *testing.T) {
	c, err := FromReader(strings.NewReader("[Portal]\nUrl = \"https://gis.example.com/portal\"\n"), DefaultClient())
	require.NoError(t, err)

	cfg, ok := c.(*Client)
	require.True(t, ok)
	require.Equal(t, "https://gis.example.com/portal", cfg.Portal.Url)
	require.Equal(t, 32, cfg.Cache.CacheCapacity)
	require.True(t, cfg.Cache.EnableCache)
}

func TestFromReaderEnvOverride(t *testing.T) {
	t.Setenv("INSIGHTS_PORTAL_TOKEN", "tok-from-env")

	c, err := FromReader(strings.NewReader(""), DefaultClient())
	require.NoError(t, err)

	cfg := c.(*Client)
	require.Equal(t, "tok-from-env", cfg.Portal.Token)
}

func TestConfigComment(t *testing.T) {
	out, err := ConfigComment(DefaultClient())
	require.NoError(t, err)

	s := string(out)
	require.Contains(t, s, "[Portal]")
	require.Contains(t, s, "#EnableCache = true")
	require.NotContains(t, s, "#[Cache]")
}
