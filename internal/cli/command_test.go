package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestCreateRootCommand(t *testing.T) {
	resetViper(t)

	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	// Test basic command properties
	if cmd.Use != "foodsync" {
		t.Errorf("Expected Use to be 'foodsync', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "Food database sync") {
		t.Errorf("Expected Short description to contain 'Food database sync'")
	}

	if !cmd.SilenceUsage || !cmd.SilenceErrors {
		t.Error("Expected usage and errors to be silenced")
	}

	// Test that flags are set up
	persistent := []string{
		"config", "log-level", "log-format", "source", "source-url", "skip-rows",
		"name-column", "calorie-column", "output", "backup", "sqlite",
		"provider", "model", "delay",
	}
	local := []string{"dry-run", "list-models"}

	for _, name := range persistent {
		t.Run("persistent_"+name, func(t *testing.T) {
			if cmd.PersistentFlags().Lookup(name) == nil {
				t.Errorf("Expected persistent flag %s to exist", name)
			}
		})
	}
	for _, name := range local {
		t.Run("local_"+name, func(t *testing.T) {
			var flag *pflag.Flag = cmd.Flags().Lookup(name)
			if flag == nil {
				t.Errorf("Expected flag %s to exist", name)
			}
		})
	}
}

func TestSetupFlags_Defaults(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{}
	setupFlags(cmd, NewFlags())

	tests := []struct {
		flag string
		want string
	}{
		{"output", "Sedentary_Lifestyle_Management/food_database.json"},
		{"backup", "Sedentary_Lifestyle_Management/food_database.backup.json"},
		{"skip-rows", "1"},
		{"name-column", "樣品名稱"},
		{"calorie-column", "熱量(kcal)"},
		{"provider", "openai"},
		{"delay", "500ms"},
	}

	for _, tt := range tests {
		f := cmd.PersistentFlags().Lookup(tt.flag)
		if f == nil {
			t.Fatalf("%s flag not found", tt.flag)
		}
		if f.DefValue != tt.want {
			t.Errorf("Expected default %s to be %s, got %s", tt.flag, tt.want, f.DefValue)
		}
	}
}

func TestBindFlagsToViper(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{}
	setupFlags(cmd, NewFlags())

	cmd.PersistentFlags().Set("output", "/test/foods.json")
	cmd.PersistentFlags().Set("provider", "gemini")
	cmd.PersistentFlags().Set("delay", "2s")
	cmd.Flags().Set("dry-run", "true")

	if viper.GetString("database.output") != "/test/foods.json" {
		t.Errorf("Expected database.output to be /test/foods.json, got %s", viper.GetString("database.output"))
	}
	if viper.GetString("translation.provider") != "gemini" {
		t.Errorf("Expected translation.provider to be gemini, got %s", viper.GetString("translation.provider"))
	}
	if viper.GetDuration("translation.delay") != 2*time.Second {
		t.Errorf("Expected translation.delay to be 2s, got %v", viper.GetDuration("translation.delay"))
	}
	if !viper.GetBool("dry_run") {
		t.Error("Expected dry_run to be true")
	}
}

func TestCreateServeCommand(t *testing.T) {
	resetViper(t)

	flags := NewFlags()
	cmd := CreateServeCommand(flags)
	if cmd.Use != "serve" {
		t.Errorf("Expected Use to be 'serve', got %s", cmd.Use)
	}

	cmd.Flags().Set("port", "9090")
	if flags.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", flags.Port)
	}
	if viper.GetInt("server.port") != 9090 {
		t.Errorf("Expected server.port 9090, got %d", viper.GetInt("server.port"))
	}
}

func TestCreateDispatchCommand(t *testing.T) {
	cmd := CreateDispatchCommand()
	if cmd.Use != "dispatch" {
		t.Errorf("Expected Use to be 'dispatch', got %s", cmd.Use)
	}
}

func TestInitConfig(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
	}{
		{
			name: "with config file",
			setupFunc: func(t *testing.T) string {
				cfgPath := filepath.Join(t.TempDir(), "test-config.yaml")
				content := `translation:
  provider: gemini
database:
  output: /test/foods.json`
				if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
		},
		{
			name:      "without config file",
			setupFunc: func(t *testing.T) string { return "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)

			cfgPath := tt.setupFunc(t)
			InitConfig(cfgPath)

			if cfgPath != "" && viper.GetString("translation.provider") != "gemini" {
				t.Errorf("Expected provider from config file, got %s", viper.GetString("translation.provider"))
			}

			// Test environment variable prefix and nested key mapping
			t.Setenv("FOODSYNC_SOURCE_URL", "https://example.com/foods.csv")
			if viper.GetString("source.url") != "https://example.com/foods.csv" {
				t.Error("Environment variable not properly loaded")
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	resetViper(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("MY_GITHUB_TOKEN", "gh-test")

	cmd := CreateRootCommand(NewFlags())
	cmd.PersistentFlags().Set("skip-rows", "3")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Source.SkipRows != 3 {
		t.Errorf("Expected skip rows 3, got %d", cfg.Source.SkipRows)
	}
	if cfg.Translation.Delay != 500*time.Millisecond {
		t.Errorf("Expected delay 500ms, got %v", cfg.Translation.Delay)
	}
	if cfg.Translation.OpenAIKey != "sk-test" {
		t.Errorf("Expected OpenAI key from environment, got %q", cfg.Translation.OpenAIKey)
	}
	if cfg.Dispatch.Token != "gh-test" {
		t.Errorf("Expected token from MY_GITHUB_TOKEN, got %q", cfg.Dispatch.Token)
	}
}

func TestGetOpenAIKey(t *testing.T) {
	tests := []struct {
		name      string
		envKey    string
		configKey string
		expected  string
	}{
		{"from environment", "env-test-key", "config-test-key", "env-test-key"},
		{"from config when no env", "", "config-test-key", "config-test-key"},
		{"empty when neither set", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			t.Setenv("OPENAI_API_KEY", tt.envKey)

			if tt.configKey != "" {
				viper.Set("translation.openai_key", tt.configKey)
			}

			if got := GetOpenAIKey(); got != tt.expected {
				t.Errorf("GetOpenAIKey() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetGeminiKey(t *testing.T) {
	resetViper(t)
	t.Setenv("GEMINI_API_KEY", "")
	viper.Set("translation.gemini_key", "from-config")

	if got := GetGeminiKey(); got != "from-config" {
		t.Errorf("GetGeminiKey() = %v, want from-config", got)
	}

	t.Setenv("GEMINI_API_KEY", "from-env")
	if got := GetGeminiKey(); got != "from-env" {
		t.Errorf("GetGeminiKey() = %v, want from-env", got)
	}
}

func TestGetGitHubToken(t *testing.T) {
	tests := []struct {
		name     string
		github   string
		my       string
		config   string
		expected string
	}{
		{"GITHUB_TOKEN wins", "a", "b", "c", "a"},
		{"MY_GITHUB_TOKEN fallback", "", "b", "c", "b"},
		{"config fallback", "", "", "c", "c"},
		{"none", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			t.Setenv("GITHUB_TOKEN", tt.github)
			t.Setenv("MY_GITHUB_TOKEN", tt.my)
			if tt.config != "" {
				viper.Set("dispatch.token", tt.config)
			}

			if got := GetGitHubToken(); got != tt.expected {
				t.Errorf("GetGitHubToken() = %v, want %v", got, tt.expected)
			}
		})
	}
}
