package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "ctrl+shift+f12", cfg.Hotkey.Capture)
	assert.Equal(t, "tesseract", cfg.OCR.Binary)
	assert.Equal(t, "eng", cfg.OCR.Language)
	assert.True(t, cfg.OCR.Optimize)
	assert.Equal(t, 10, cfg.Suggest.MaxResults)
	assert.True(t, cfg.Suggest.PrefixFirst)

	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[hotkey]
capture = "alt+f1"

[ocr]
language = "deu"
optimize = false

[suggest]
max_results = 25
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "alt+f1", cfg.Hotkey.Capture)
	assert.Equal(t, "deu", cfg.OCR.Language)
	assert.False(t, cfg.OCR.Optimize)
	assert.Equal(t, 25, cfg.Suggest.MaxResults)

	// untouched sections keep their defaults
	assert.Equal(t, "ctrl+alt+f12", cfg.Hotkey.Suggest)
	assert.Equal(t, "tesseract", cfg.OCR.Binary)
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	// valid TOML syntax, but max_results has the wrong type: the strict
	// decode fails and recovery salvages the sections that still fit
	path := writeConfig(t, `
[ocr]
language = "fra"

[suggest]
max_results = "lots"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err, "malformed config falls back, never errors")

	assert.Equal(t, "fra", cfg.OCR.Language, "intact keys are salvaged")
	assert.Equal(t, 10, cfg.Suggest.MaxResults, "broken keys keep defaults")
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Suggest.MaxResults, cfg.Suggest.MaxResults)
}

func TestInitConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "tesseract", cfg.OCR.Binary)
	assert.FileExists(t, path)
}

func TestValidateRejectsBadHotkey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hotkey.Capture = "ctrl+bogus+f12"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Hotkey.Suggest = "ctrl+shift+"
	assert.Error(t, cfg.Validate())
}

func TestValidateClampsLimits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Suggest.MaxResults = 0
	cfg.OCR.MaxOutputFiles = -5

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.Suggest.MaxResults)
	assert.Equal(t, 10, cfg.OCR.MaxOutputFiles)
}

func TestParseHotkey(t *testing.T) {
	testCases := []struct {
		input     string
		modifiers []string
		key       string
		wantErr   bool
	}{
		{"ctrl+shift+f12", []string{"ctrl", "shift"}, "f12", false},
		{"Ctrl+Alt+Space", []string{"ctrl", "alt"}, "space", false},
		{"f5", nil, "f5", false},
		{"", nil, "", true},
		{"bogus+x", nil, "", true},
		{"ctrl+shift", nil, "", true},
		{"ctrl++x", nil, "", true},
	}

	for _, tc := range testCases {
		hk, err := ParseHotkey(tc.input)
		if tc.wantErr {
			assert.Error(t, err, "ParseHotkey(%q)", tc.input)
			continue
		}
		require.NoError(t, err, "ParseHotkey(%q)", tc.input)
		assert.Equal(t, tc.modifiers, hk.Modifiers, "ParseHotkey(%q)", tc.input)
		assert.Equal(t, tc.key, hk.Key, "ParseHotkey(%q)", tc.input)
	}
}

func TestHotkeyString(t *testing.T) {
	hk, err := ParseHotkey("CTRL+Shift+F12")
	require.NoError(t, err)
	assert.Equal(t, "ctrl+shift+f12", hk.String())
}
