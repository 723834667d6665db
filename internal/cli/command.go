package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/foodsync/internal"
	"codeberg.org/snonux/foodsync/internal/config"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "foodsync",
		Short: "Food database sync",
		Long: `foodsync refreshes a JSON food database from a nutrition CSV export.

Names already in the database keep their English translation; only new
names, or entries without an English name, are sent to the translation
service. The previous database is kept as a single backup file.

Examples:
  foodsync                                   # Sync using defaults and .foodsync.yaml
  foodsync --source foods.csv --dry-run      # Show what would change
  foodsync --provider gemini --sqlite db.sqlite
  foodsync dispatch                          # Trigger the GitHub update workflow
  foodsync serve --port 8080                 # Serve /api/trigger and /api/sync`,
		Args:          cobra.NoArgs,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

// CreateServeCommand creates the serve subcommand. RunE is set by the caller.
func CreateServeCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP trigger server",
		Long: `serve starts an HTTP server with the following routes:

  /api/trigger  send the GitHub repository_dispatch that runs the update workflow
  /api/sync     run a sync in this process
  /healthz      liveness
  /metrics      Prometheus metrics`,
		Args: cobra.NoArgs,
	}

	cmd.Flags().IntVar(&flags.Port, "port", flags.Port, "Port to listen on")
	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

// CreateDispatchCommand creates the dispatch subcommand. RunE is set by the
// caller.
func CreateDispatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch",
		Short: "Trigger the GitHub update workflow",
		Long: `dispatch sends a repository_dispatch event (default type trigger_update)
to the configured repository. The token is read from GITHUB_TOKEN or
MY_GITHUB_TOKEN.`,
		Args: cobra.NoArgs,
	}
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.foodsync.yaml)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: console or json")

	// Source flags
	cmd.PersistentFlags().StringVarP(&flags.SourcePath, "source", "s", flags.SourcePath, "Nutrition CSV file")
	cmd.PersistentFlags().StringVar(&flags.SourceURL, "source-url", "", "Fetch the nutrition CSV from this URL instead of a file")
	cmd.PersistentFlags().IntVar(&flags.SkipRows, "skip-rows", flags.SkipRows, "Rows to skip before the header row")
	cmd.PersistentFlags().StringVar(&flags.NameColumn, "name-column", flags.NameColumn, "Header of the food name column")
	cmd.PersistentFlags().StringVar(&flags.CalorieColumn, "calorie-column", flags.CalorieColumn, "Header of the calorie column")

	// Database flags
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", flags.Output, "JSON database file")
	cmd.PersistentFlags().StringVar(&flags.Backup, "backup", flags.Backup, "Backup of the previous JSON database")
	cmd.PersistentFlags().StringVar(&flags.SQLite, "sqlite", "", "Also write the database to this SQLite file")

	// Translation flags
	cmd.PersistentFlags().StringVar(&flags.Provider, "provider", flags.Provider, "Translation provider: openai or gemini")
	cmd.PersistentFlags().StringVar(&flags.Model, "model", "", "Translation model (provider default when empty)")
	cmd.PersistentFlags().DurationVar(&flags.Delay, "delay", flags.Delay, "Pause before each translation call")

	// Local flags
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Compute and report changes without writing files")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available OpenAI models for the current API key")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", cmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("source.path", cmd.PersistentFlags().Lookup("source"))
	viper.BindPFlag("source.url", cmd.PersistentFlags().Lookup("source-url"))
	viper.BindPFlag("source.skip_rows", cmd.PersistentFlags().Lookup("skip-rows"))
	viper.BindPFlag("source.name_column", cmd.PersistentFlags().Lookup("name-column"))
	viper.BindPFlag("source.calorie_column", cmd.PersistentFlags().Lookup("calorie-column"))
	viper.BindPFlag("database.output", cmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("database.backup", cmd.PersistentFlags().Lookup("backup"))
	viper.BindPFlag("export.sqlite", cmd.PersistentFlags().Lookup("sqlite"))
	viper.BindPFlag("translation.provider", cmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag("translation.model", cmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("translation.delay", cmd.PersistentFlags().Lookup("delay"))
	viper.BindPFlag("dry_run", cmd.Flags().Lookup("dry-run"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	// A .env file is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".foodsync" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".foodsync")
	}

	// Environment variables
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// LoadConfig decodes the global viper state and fills in credentials from
// the environment.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	cfg.Translation.OpenAIKey = GetOpenAIKey()
	cfg.Translation.GeminiKey = GetGeminiKey()
	cfg.Dispatch.Token = GetGitHubToken()

	return cfg, nil
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("translation.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("translation.gemini_key")
}

// GetGitHubToken retrieves the token used for workflow dispatches.
// MY_GITHUB_TOKEN is what the hosted trigger function used.
func GetGitHubToken() string {
	for _, name := range []string{"GITHUB_TOKEN", "MY_GITHUB_TOKEN"} {
		if tok := os.Getenv(name); tok != "" {
			return tok
		}
	}
	return viper.GetString("dispatch.token")
}
