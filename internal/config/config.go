package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/banshee-data/specid/internal/specobj"
)

// Defaults applied by the Get* accessors when a field is unset.
const (
	DefaultDatabasePath   = "specid.db"
	DefaultDetectorDigits = 0
	DefaultObjType        = "unknown"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config holds the settings shared by the specid commands. Nil fields take
// their defaults, so partial files are safe.
type Config struct {
	// Enumeration
	RefRowFraction *float64 `json:"ref_row_fraction,omitempty" toml:"ref_row_fraction,omitempty"`
	ObjType        *string  `json:"objtype,omitempty" toml:"objtype,omitempty"`

	// Matching
	ObjTolerance  *int `json:"obj_tolerance,omitempty" toml:"obj_tolerance,omitempty"`
	SlitTolerance *int `json:"slit_tolerance,omitempty" toml:"slit_tolerance,omitempty"`

	// Naming: 0 writes D1, 2 writes D01.
	DetectorDigits *int `json:"detector_digits,omitempty" toml:"detector_digits,omitempty"`

	// Storage
	DatabasePath *string `json:"database_path,omitempty" toml:"database_path,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyConfig returns a Config with all fields unset.
func EmptyConfig() *Config {
	return &Config{}
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() *Config {
	return &Config{
		RefRowFraction: ptrFloat64(specobj.DefaultRefRowFraction),
		ObjType:        ptrString(DefaultObjType),
		ObjTolerance:   ptrInt(specobj.DefaultObjTolerance),
		SlitTolerance:  ptrInt(specobj.DefaultSlitTolerance),
		DetectorDigits: ptrInt(DefaultDetectorDigits),
		DatabasePath:   ptrString(DefaultDatabasePath),
	}
}

// LoadConfig loads a Config from a .json or .toml file no larger than 1MB.
func LoadConfig(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".toml" {
		return nil, fmt.Errorf("config file must have .json or .toml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyConfig()
	switch ext {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config TOML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.RefRowFraction != nil {
		if *c.RefRowFraction < 0 || *c.RefRowFraction >= 1 {
			return fmt.Errorf("ref_row_fraction must be in [0, 1), got %f", *c.RefRowFraction)
		}
	}
	if c.ObjTolerance != nil && *c.ObjTolerance < 0 {
		return fmt.Errorf("obj_tolerance must be non-negative, got %d", *c.ObjTolerance)
	}
	if c.SlitTolerance != nil && *c.SlitTolerance < 0 {
		return fmt.Errorf("slit_tolerance must be non-negative, got %d", *c.SlitTolerance)
	}
	if c.DetectorDigits != nil && *c.DetectorDigits != 0 && *c.DetectorDigits != 2 {
		return fmt.Errorf("detector_digits must be 0 or 2, got %d", *c.DetectorDigits)
	}
	if c.ObjType != nil {
		if _, err := specobj.ParseObjType(*c.ObjType); err != nil {
			return fmt.Errorf("invalid objtype: %w", err)
		}
	}
	if c.DatabasePath != nil && *c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	return nil
}

// GetRefRowFraction returns the ref_row_fraction value or the default.
func (c *Config) GetRefRowFraction() float64 {
	if c.RefRowFraction == nil {
		return specobj.DefaultRefRowFraction
	}
	return *c.RefRowFraction
}

// GetObjTolerance returns the obj_tolerance value or the default.
func (c *Config) GetObjTolerance() int {
	if c.ObjTolerance == nil {
		return specobj.DefaultObjTolerance
	}
	return *c.ObjTolerance
}

// GetSlitTolerance returns the slit_tolerance value or the default.
func (c *Config) GetSlitTolerance() int {
	if c.SlitTolerance == nil {
		return specobj.DefaultSlitTolerance
	}
	return *c.SlitTolerance
}

// GetDetectorDigits returns the detector_digits value or the default.
func (c *Config) GetDetectorDigits() int {
	if c.DetectorDigits == nil {
		return DefaultDetectorDigits
	}
	return *c.DetectorDigits
}

// GetObjType returns the parsed objtype, falling back to unknown.
func (c *Config) GetObjType() specobj.ObjType {
	if c.ObjType == nil {
		return specobj.ObjTypeUnknown
	}
	t, err := specobj.ParseObjType(*c.ObjType)
	if err != nil {
		return specobj.ObjTypeUnknown
	}
	return t
}

// GetDatabasePath returns the database_path value or the default.
func (c *Config) GetDatabasePath() string {
	if c.DatabasePath == nil || *c.DatabasePath == "" {
		return DefaultDatabasePath
	}
	return *c.DatabasePath
}

// Tolerance returns the matching tolerances.
func (c *Config) Tolerance() specobj.Tolerance {
	return specobj.Tolerance{Obj: c.GetObjTolerance(), Slit: c.GetSlitTolerance()}
}

// DetectorFormat returns the detector formatter for object names.
func (c *Config) DetectorFormat() specobj.DetectorFormat {
	if c.GetDetectorDigits() == 2 {
		return specobj.DetTwoDigit
	}
	return specobj.DetNumber
}

// EnumeratorConfig returns the enumeration settings.
func (c *Config) EnumeratorConfig() specobj.EnumeratorConfig {
	return specobj.EnumeratorConfig{RefRowFraction: c.GetRefRowFraction()}
}
