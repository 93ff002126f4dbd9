// Package sqlgen is the root of the SQL repository code generator: it ties
// together the dialect registry, template/expression/binding/shape
// pipelines, the predefined shape library, and the synthesizer behind a
// single Config entry point (spec.md §6 Configuration).
package sqlgen

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/sqlgen/dialect"
)

// Config carries the generation-time options a host supplies, either
// programmatically or via a YAML file (§6).
type Config struct {
	// Dialect selects the target database (§6 "dialect").
	Dialect dialect.Tag `yaml:"dialect"`
	// TableOverrides maps interface name -> table name, for interfaces that
	// don't derive their table from the entity (§6 "table-name override").
	TableOverrides map[string]string `yaml:"table_overrides"`
	// MaxBatchSize is copied into the Options of BatchInsertAndGetIds/
	// BatchDeleteByIds and of host batch methods that leave it unset (§6
	// "max-batch-size", default 100). Generated batch methods write all
	// rows in one statement; they do not split the rows by this value.
	MaxBatchSize int `yaml:"max_batch_size"`
	// ReturnInsertedID is the default for methods that don't declare
	// [ReturnInsertedId] explicitly (§6 "return-inserted-id").
	ReturnInsertedID bool `yaml:"return_inserted_id"`
	// LimitPresets overrides/extends the named preset table consulted by
	// {{limit:name}} (§6 "limit presets", §3 Presets).
	LimitPresets map[string]int `yaml:"limit_presets"`
}

// DefaultConfig returns a Config with the documented defaults applied.
func DefaultConfig() *Config {
	return &Config{
		MaxBatchSize: 100,
	}
}

// Presets materializes the configured limit presets over the built-in
// defaults, so a host only needs to specify overrides.
func (c *Config) Presets() *dialect.Presets {
	p := dialect.DefaultPresets()
	for name, n := range c.LimitPresets {
		p.Set(name, n)
	}
	return p
}

// TableFor resolves the table name for an interface, honoring an explicit
// override before falling back to fallback (typically the entity's table).
func (c *Config) TableFor(interfaceName, fallback string) string {
	if t, ok := c.TableOverrides[interfaceName]; ok && t != "" {
		return t
	}
	return fallback
}

// LoadConfig reads a YAML config file and layers it over DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sqlgen: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("sqlgen: parsing config %s: %w", path, err)
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 100
	}
	return cfg, nil
}
