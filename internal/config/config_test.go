package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("IMAGE_BATCH_SIZE", "")
	t.Setenv("IMAGE_READ_TIMEOUT", "")
	t.Setenv("IMAGE_DENYLIST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.ImageBatchSize)
	assert.Equal(t, 10*time.Second, cfg.ImageConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.ImageReadTimeout)
	assert.Contains(t, cfg.ImageDenylist, "placeholder")
	assert.Equal(t, "catalog-imports", cfg.ImportTopic)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("IMAGE_BATCH_SIZE", "3")
	t.Setenv("IMAGE_READ_TIMEOUT", "45")
	t.Setenv("IMAGE_CONNECT_TIMEOUT", "2s")
	t.Setenv("IMAGE_DENYLIST", " spacer , ,banner")
	t.Setenv("PICKUP_LOCATION", "Back door")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.ImageBatchSize)
	assert.Equal(t, 45*time.Second, cfg.ImageReadTimeout)
	assert.Equal(t, 2*time.Second, cfg.ImageConnectTimeout)
	assert.Equal(t, []string{"spacer", "banner"}, cfg.ImageDenylist)
	assert.Equal(t, "Back door", cfg.Settings.PickupLocation)
}

func TestGetEnvAsIntIgnoresGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "five")
	assert.Equal(t, 7, getEnvAsInt("SOME_INT", 7))
}
