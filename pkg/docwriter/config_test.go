package docwriter

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.DefaultFont != "Calibri" {
		t.Errorf("DefaultConfig DefaultFont = %s, want Calibri", config.DefaultFont)
	}
	if config.CodeFont != "Courier New" {
		t.Errorf("DefaultConfig CodeFont = %s, want Courier New", config.CodeFont)
	}
	if config.CodeSizePt != 9 {
		t.Errorf("DefaultConfig CodeSizePt = %v, want 9", config.CodeSizePt)
	}
	if config.TableStyle != "Table Grid" {
		t.Errorf("DefaultConfig TableStyle = %s, want Table Grid", config.TableStyle)
	}
	if config.LogLevel != "info" {
		t.Errorf("DefaultConfig LogLevel = %s, want info", config.LogLevel)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid: %v", err)
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		check   func(t *testing.T, config *Config)
	}{
		{
			name:    "fonts",
			envVars: map[string]string{"DOCWRITER_DEFAULT_FONT": "Arial", "DOCWRITER_CODE_FONT": "Consolas"},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, "Arial", config.DefaultFont)
				assert.Equal(t, "Consolas", config.CodeFont)
			},
		},
		{
			name:    "sizes",
			envVars: map[string]string{"DOCWRITER_DEFAULT_SIZE": "12.5", "DOCWRITER_CODE_SIZE": "8"},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, 12.5, config.DefaultSizePt)
				assert.Equal(t, 8.0, config.CodeSizePt)
			},
		},
		{
			name:    "invalid size keeps default",
			envVars: map[string]string{"DOCWRITER_DEFAULT_SIZE": "large"},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, 11.0, config.DefaultSizePt)
			},
		},
		{
			name:    "page size is lowercased",
			envVars: map[string]string{"DOCWRITER_PAGE_SIZE": "A4"},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, PageSizeA4, config.PageSize)
			},
		},
		{
			name: "misc",
			envVars: map[string]string{
				"DOCWRITER_TABLE_STYLE":       "Light Grid",
				"DOCWRITER_LANGUAGE":          "fr-FR",
				"DOCWRITER_MAX_HEADING_LEVEL": "3",
				"DOCWRITER_CREATOR":           "ci",
				"DOCWRITER_LOG_LEVEL":         "DEBUG",
			},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, "Light Grid", config.TableStyle)
				assert.Equal(t, "fr-FR", config.Language)
				assert.Equal(t, 3, config.MaxHeadingLevel)
				assert.Equal(t, "ci", config.Creator)
				assert.Equal(t, "debug", config.LogLevel)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			tt.check(t, ConfigFromEnvironment())
		})
	}
}

func TestNewConfigWithDefaults(t *testing.T) {
	assert.Equal(t, DefaultConfig(), NewConfigWithDefaults(nil))

	overrides := &Config{TableStyle: "Plain", MaxHeadingLevel: 4}
	config := NewConfigWithDefaults(overrides)
	assert.Equal(t, "Plain", config.TableStyle)
	assert.Equal(t, 4, config.MaxHeadingLevel)
	assert.Equal(t, "Calibri", config.DefaultFont)
	assert.Equal(t, "en-US", config.Language)

	config.TableStyle = "Changed"
	assert.Equal(t, "Plain", overrides.TableStyle, "overrides must be copied")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero default size", func(c *Config) { c.DefaultSizePt = 0 }, true},
		{"negative code size", func(c *Config) { c.CodeSizePt = -1 }, true},
		{"NaN default size", func(c *Config) { c.DefaultSizePt = math.NaN() }, true},
		{"infinite code size", func(c *Config) { c.CodeSizePt = math.Inf(1) }, true},
		{"default size below half point", func(c *Config) { c.DefaultSizePt = 0.1 }, true},
		{"smallest default size", func(c *Config) { c.DefaultSizePt = 0.5 }, false},
		{"heading level zero", func(c *Config) { c.MaxHeadingLevel = 0 }, true},
		{"heading level ten", func(c *Config) { c.MaxHeadingLevel = 10 }, true},
		{"bad language", func(c *Config) { c.Language = "not a tag!" }, true},
		{"a4", func(c *Config) { c.PageSize = PageSizeA4 }, false},
		{"bad page size", func(c *Config) { c.PageSize = "tabloid" }, true},
		{"log off", func(c *Config) { c.LogLevel = "off" }, false},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLanguageTag(t *testing.T) {
	assert.Equal(t, "en-GB", (&Config{Language: "en-gb"}).LanguageTag())
	assert.Equal(t, "en-US", (&Config{Language: "??"}).LanguageTag())
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DOCWRITER_TEST_CREATOR=from-dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("DOCWRITER_TEST_CREATOR") })

	require.NoError(t, LoadEnvFiles("", filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-dotenv", os.Getenv("DOCWRITER_TEST_CREATOR"))

	t.Setenv("DOCWRITER_TEST_KEEP", "original")
	keep := filepath.Join(dir, "keep.env")
	require.NoError(t, os.WriteFile(keep, []byte("DOCWRITER_TEST_KEEP=overridden\n"), 0o644))
	require.NoError(t, LoadEnvFiles(keep))
	assert.Equal(t, "original", os.Getenv("DOCWRITER_TEST_KEEP"))
}
