package cli

import (
	"time"

	"codeberg.org/snonux/foodsync/internal/source"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	DryRun     bool
	ListModels bool
	LogLevel   string
	LogFormat  string

	// Source flags
	SourcePath    string
	SourceURL     string
	SkipRows      int
	NameColumn    string
	CalorieColumn string

	// Database flags
	Output string
	Backup string
	SQLite string

	// Translation flags
	Provider string
	Model    string
	Delay    time.Duration

	// Serve flags
	Port int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		LogLevel:      "info",
		LogFormat:     "console",
		SourcePath:    source.DefaultPath,
		SkipRows:      1,
		NameColumn:    source.DefaultNameColumn,
		CalorieColumn: source.DefaultCalorieColumn,
		Output:        "Sedentary_Lifestyle_Management/food_database.json",
		Backup:        "Sedentary_Lifestyle_Management/food_database.backup.json",
		Provider:      "openai",
		Delay:         500 * time.Millisecond,
		Port:          8080,
	}
}
