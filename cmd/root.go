package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/matchmaker/internal/matching"
	"github.com/spigell/matchmaker/internal/snapshot"
)

const (
	app       = "matchmaker"
	envPrefix = "MATCHMAKER"
)

type Config struct {
	Roster   string          `mapstructure:"roster"`
	State    *StateConfig    `mapstructure:"state"`
	Matching *MatchingConfig `mapstructure:"matching"`
	AI       *AIConfig       `mapstructure:"ai"`
}

type StateConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type MatchingConfig struct {
	MaxResults          int     `mapstructure:"max-results"`
	ChatCount           int     `mapstructure:"chat-count"`
	MinimumScore        float64 `mapstructure:"minimum-score"`
	MinimumCompleteness float64 `mapstructure:"minimum-completeness"`
	ExcludeSwiped       bool    `mapstructure:"exclude-swiped"`
	ExcludeFile         string  `mapstructure:"exclude-file"`
}

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
	Tone         string `mapstructure:"tone"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "matchmaker is a cli for finding, swiping and chatting with compatible people",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is matchmaker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("roster", "", "yaml or json file with users (default is the built-in sample users)")
	rootCmd.PersistentFlags().String("state-driver", "", "where swipes are kept between runs: none, file or bolt")
	rootCmd.PersistentFlags().String("state-path", "", "path of the state file")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("roster", rootCmd.PersistentFlags().Lookup("roster"))
	viper.BindPFlag("state.driver", rootCmd.PersistentFlags().Lookup("state-driver"))
	viper.BindPFlag("state.path", rootCmd.PersistentFlags().Lookup("state-path"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("roster", "")
	viper.SetDefault("state.driver", snapshot.DriverNone)
	viper.SetDefault("state.path", "")
	viper.SetDefault("matching.max-results", matching.DefaultMaxResults)
	viper.SetDefault("matching.chat-count", matching.DefaultChatCount)
	viper.SetDefault("matching.minimum-score", 0)
	viper.SetDefault("matching.minimum-completeness", 0)
	viper.SetDefault("matching.exclude-swiped", true)
	viper.SetDefault("matching.exclude-file", "")
	viper.SetDefault("ai.enabled", false)
	viper.SetDefault("ai.gemini.api-key", "")
	viper.SetDefault("ai.gemini.api-key-file", "")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
	viper.SetDefault("ai.gemini.tone", "")
}

func initConfig() {
	// A .env file is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Without an explicit --config the file is optional.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	if config.State == nil {
		config.State = &StateConfig{}
	}
	if config.Matching == nil {
		config.Matching = &MatchingConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	return config, nil
}
