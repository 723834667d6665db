package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/viper"

	"codeberg.org/snonux/foodsync/internal/dispatch"
	"codeberg.org/snonux/foodsync/internal/logger"
	"codeberg.org/snonux/foodsync/internal/publish"
	"codeberg.org/snonux/foodsync/internal/source"
	"codeberg.org/snonux/foodsync/internal/translation"
)

// EnvPrefix is prepended to environment variable names.
const EnvPrefix = "FOODSYNC"

// Config holds all configuration for the application.
type Config struct {
	// Source locates the nutrition snapshot.
	Source source.Config `mapstructure:"source"`
	// Database holds the JSON output and backup paths.
	Database DatabaseConfig `mapstructure:"database"`
	// Translation selects and tunes the translation provider.
	Translation translation.Config `mapstructure:"translation"`
	// Export holds optional secondary outputs.
	Export ExportConfig `mapstructure:"export"`
	// Storage holds object storage publish settings.
	Storage publish.Config `mapstructure:"storage"`
	// Dispatch names the GitHub repository to trigger.
	Dispatch dispatch.Config `mapstructure:"dispatch"`
	// Server holds configuration for the HTTP server.
	Server ServerConfig `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`

	// DryRun computes the new database without writing anything.
	DryRun bool `mapstructure:"dry_run" default:"false"`
}

// DatabaseConfig holds the persisted food database paths.
type DatabaseConfig struct {
	Output string `mapstructure:"output" default:"Sedentary_Lifestyle_Management/food_database.json"`
	Backup string `mapstructure:"backup" default:"Sedentary_Lifestyle_Management/food_database.backup.json"`
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	// Port is the port where the server will listen.
	Port int `mapstructure:"port" default:"8080"`
	// APIKey, when set, must be sent as X-API-Key on /api routes.
	APIKey string `mapstructure:"api_key" default:""`
}

// ExportConfig holds optional secondary outputs.
type ExportConfig struct {
	// SQLite is a database file mirroring the JSON output. Empty disables it.
	SQLite string `mapstructure:"sqlite" default:""`
}

// Load registers defaults on v, enables environment lookup and unmarshals
// the merged configuration.
func Load(v *viper.Viper) (*Config, error) {
	Bind(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Bind sets the tag defaults on v and maps FOODSYNC_SECTION_KEY variables
// to section.key.
func Bind(v *viper.Viper) {
	bindValues(v, Config{}, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Validate checks settings that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.Source.Path == "" && c.Source.URL == "" {
		return fmt.Errorf("source: either path or url is required")
	}
	if c.Source.SkipRows < 0 {
		return fmt.Errorf("source: skip_rows must not be negative")
	}
	if c.Source.NameColumn == "" || c.Source.CalorieColumn == "" {
		return fmt.Errorf("source: name_column and calorie_column are required")
	}
	if c.Database.Output == "" {
		return fmt.Errorf("database: output path is required")
	}
	if c.Database.Backup == c.Database.Output {
		return fmt.Errorf("database: backup path must differ from output path")
	}
	switch c.Translation.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("translation: unknown provider %q", c.Translation.Provider)
	}
	if c.Translation.Delay < 0 {
		return fmt.Errorf("translation: delay must not be negative")
	}
	return nil
}

// bindValues walks the struct and sets a viper default for every
// mapstructure key. Keys without a default tag are registered with the
// empty string so AutomaticEnv can still find them.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		v.SetDefault(key, field.Tag.Get("default"))
	}
}
