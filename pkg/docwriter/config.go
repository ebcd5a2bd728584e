package docwriter

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Page sizes understood by serializers that paginate.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
)

// Config contains the defaults applied while building and serializing documents
type Config struct {
	// DefaultFont is the body font used when a run names none.
	DefaultFont string
	// DefaultSizePt is the body font size in points.
	DefaultSizePt float64
	// CodeFont and CodeSizePt style runs created by AddCodeBlock.
	CodeFont   string
	CodeSizePt float64
	// TableStyle is the style name given to new tables.
	TableStyle string
	// Language is a BCP 47 tag written into the document metadata.
	Language string
	// MaxHeadingLevel is the deepest heading level AddHeading accepts (0 is the title).
	MaxHeadingLevel int
	// PageSize is "letter" or "a4".
	PageSize string
	// Creator is recorded as the producing application.
	Creator string
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultFont:     "Calibri",
		DefaultSizePt:   11,
		CodeFont:        "Courier New",
		CodeSizePt:      9,
		TableStyle:      "Table Grid",
		Language:        "en-US",
		MaxHeadingLevel: 9,
		PageSize:        PageSizeLetter,
		Creator:         "go-docwriter",
		LogLevel:        "info",
	}
}

// LoadEnvFiles loads KEY=VALUE pairs from the given .env files into the
// process environment. Missing files are skipped and variables that are
// already set are left alone.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return NewDocumentError("stat", p, err)
		}
		if err := godotenv.Load(p); err != nil {
			return NewDocumentError("loading env file", p, err)
		}
	}
	return nil
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	// DOCWRITER_DEFAULT_FONT
	if val := os.Getenv("DOCWRITER_DEFAULT_FONT"); val != "" {
		config.DefaultFont = val
	}

	// DOCWRITER_DEFAULT_SIZE
	if val := os.Getenv("DOCWRITER_DEFAULT_SIZE"); val != "" {
		if size, err := strconv.ParseFloat(val, 64); err == nil {
			config.DefaultSizePt = size
		}
	}

	// DOCWRITER_CODE_FONT
	if val := os.Getenv("DOCWRITER_CODE_FONT"); val != "" {
		config.CodeFont = val
	}

	// DOCWRITER_CODE_SIZE
	if val := os.Getenv("DOCWRITER_CODE_SIZE"); val != "" {
		if size, err := strconv.ParseFloat(val, 64); err == nil {
			config.CodeSizePt = size
		}
	}

	// DOCWRITER_TABLE_STYLE
	if val := os.Getenv("DOCWRITER_TABLE_STYLE"); val != "" {
		config.TableStyle = val
	}

	// DOCWRITER_LANGUAGE
	if val := os.Getenv("DOCWRITER_LANGUAGE"); val != "" {
		config.Language = val
	}

	// DOCWRITER_MAX_HEADING_LEVEL
	if val := os.Getenv("DOCWRITER_MAX_HEADING_LEVEL"); val != "" {
		if level, err := strconv.Atoi(val); err == nil {
			config.MaxHeadingLevel = level
		}
	}

	// DOCWRITER_PAGE_SIZE
	if val := os.Getenv("DOCWRITER_PAGE_SIZE"); val != "" {
		config.PageSize = strings.ToLower(val)
	}

	// DOCWRITER_CREATOR
	if val := os.Getenv("DOCWRITER_CREATOR"); val != "" {
		config.Creator = val
	}

	// DOCWRITER_LOG_LEVEL
	if val := os.Getenv("DOCWRITER_LOG_LEVEL"); val != "" {
		config.LogLevel = strings.ToLower(val)
	}

	return config
}

// NewConfigWithDefaults creates a new configuration with defaults applied to unset fields
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()

	if overrides == nil {
		return defaults
	}

	// Create a copy of the overrides
	config := *overrides

	if config.DefaultFont == "" {
		config.DefaultFont = defaults.DefaultFont
	}
	if config.DefaultSizePt == 0 {
		config.DefaultSizePt = defaults.DefaultSizePt
	}
	if config.CodeFont == "" {
		config.CodeFont = defaults.CodeFont
	}
	if config.CodeSizePt == 0 {
		config.CodeSizePt = defaults.CodeSizePt
	}
	if config.TableStyle == "" {
		config.TableStyle = defaults.TableStyle
	}
	if config.Language == "" {
		config.Language = defaults.Language
	}
	if config.MaxHeadingLevel == 0 {
		config.MaxHeadingLevel = defaults.MaxHeadingLevel
	}
	if config.PageSize == "" {
		config.PageSize = defaults.PageSize
	}
	if config.Creator == "" {
		config.Creator = defaults.Creator
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}

	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !ValidFontSize(c.DefaultSizePt) {
		return fmt.Errorf("default font size must be between 0.25 and %d points, got %g", MaxFontSizePt, c.DefaultSizePt)
	}

	if !ValidFontSize(c.CodeSizePt) {
		return fmt.Errorf("code font size must be between 0.25 and %d points, got %g", MaxFontSizePt, c.CodeSizePt)
	}

	if c.MaxHeadingLevel < 1 || c.MaxHeadingLevel > 9 {
		return fmt.Errorf("max heading level must be between 1 and 9, got %d", c.MaxHeadingLevel)
	}

	if _, err := language.Parse(c.Language); err != nil {
		return fmt.Errorf("invalid language %q: %w", c.Language, err)
	}

	if c.PageSize != PageSizeLetter && c.PageSize != PageSizeA4 {
		return errors.New("invalid page size: " + c.PageSize)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	return nil
}

// LanguageTag returns the canonical BCP 47 form of Language, falling back to
// "en-US" when it does not parse.
func (c *Config) LanguageTag() string {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return "en-US"
	}
	return tag.String()
}
