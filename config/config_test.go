package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollInterval(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Duration
	}{
		{"empty defaults", "", time.Minute},
		{"hhmmss", "00:05:00", 5 * time.Minute},
		{"hhmmss hours", "01:30:00", 90 * time.Minute},
		{"hhmmss zero defaults", "00:00:00", time.Minute},
		{"go duration", "45s", 45 * time.Second},
		{"go duration composite", "2m30s", 150 * time.Second},
		{"plain seconds", "120", 2 * time.Minute},
		{"negative defaults", "-30s", time.Minute},
		{"garbage defaults", "soon", time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AccountConfig{UpdateInterval: tt.raw}
			assert.Equal(t, tt.want, cfg.PollInterval())
		})
	}
}

func TestUID(t *testing.T) {
	cfg := AccountConfig{Phone: "13800000000", PhoneIAC: "86"}
	assert.Equal(t, "86-13800000000", cfg.UID())
}

func TestOverride(t *testing.T) {
	cfg := AccountConfig{
		Devices: []DeviceOverride{
			{Mac: "AA:BB", EmptyWeight: 2.5},
			{Mac: "CC:DD", MaxLitterSamples: 12},
		},
	}

	ov := cfg.Override("CC:DD")
	require.NotNil(t, ov)
	assert.Equal(t, 12, ov.MaxLitterSamples)

	assert.Nil(t, cfg.Override("EE:FF"))
	assert.Nil(t, cfg.Override(""))
}

func TestLoadConfig(t *testing.T) {
	raw := `
system:
  workdir: /tmp/catbridge-test
logger:
  mode: production
accounts:
  - phone: "13800000000"
    password: secret
    region: china
    update_interval: "00:02:00"
    device_ids: ["d1", "d2"]
    devices:
      - mac: "AA:BB"
        empty_weight: 3.0
`
	path := filepath.Join(t.TempDir(), "catbridge.yml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/catbridge-test", cfg.System.Workdir)
	assert.Equal(t, "Asia/Shanghai", cfg.System.Location)
	assert.Equal(t, "production", cfg.Logger.Mode)
	assert.Equal(t, "/tmp/catbridge-test/catbridge.log", cfg.Logger.Filename)

	require.Len(t, cfg.Accounts, 1)
	acct := cfg.Accounts[0]
	assert.Equal(t, "86", acct.PhoneIAC)
	assert.Equal(t, "en_GB", acct.Language)
	assert.Equal(t, 2*time.Minute, acct.PollInterval())
	assert.Equal(t, []string{"d1", "d2"}, acct.DeviceIDs)
	require.NotNil(t, acct.Override("AA:BB"))
	assert.Equal(t, 3.0, acct.Override("AA:BB").EmptyWeight)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/catbridge.yml")
	assert.Error(t, err)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("accounts: {not: [valid"), 0o600))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
