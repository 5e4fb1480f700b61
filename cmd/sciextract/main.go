// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the sciextract CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/sciextract/internal/extract"
	"github.com/pdiddy/sciextract/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built in PersistentPreRunE from the --verbose flag.
var logger = zap.NewNop()

// rootCmd is the base command for the sciextract CLI.
var rootCmd = &cobra.Command{
	Use:   "sciextract",
	Short: "Turn free-form scientific answers into structured records",
	Long: `sciextract reads free-form scientific answer text and extracts a
structured record: a summary, display equations, a closing insight, an
optional chart dataset, and thought-experiment details when the text
describes one.

Single answers are handled by extract; directories of answers by batch.
Extracted records can be indexed and searched with the store subcommands.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(viper.GetBool("verbose"))
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger = l
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./sciextract.yaml or ~/.config/sciextract/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log extraction diagnostics to stderr")
	rootCmd.PersistentFlags().String("store-dir", "store", "base directory for the response store (contains extracted/, index/)")
	rootCmd.PersistentFlags().String("vocabulary", "", "YAML file overriding the keyword vocabulary")

	bindFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	bindFlag("store.store_dir", rootCmd.PersistentFlags().Lookup("store-dir"))
	bindFlag("extraction.vocabulary_file", rootCmd.PersistentFlags().Lookup("vocabulary"))

	viper.SetDefault("fetch.timeout", 30*time.Second)
	viper.SetDefault("fetch.max_retries", 5)
	viper.SetDefault("fetch.secrets_dir", ".secrets")
	viper.SetDefault("store.max_results", 20)
	viper.SetDefault("batch.responses_dir", "responses")
	viper.SetDefault("batch.workers", 4)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("sciextract")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "sciextract"))
		}
	}

	viper.SetEnvPrefix("SCIEXTRACT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlag ties a config key to a flag. An explicit flag overrides the
// environment, which overrides the config file.
func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag for %s: %v", key, err))
	}
}

// newLogger returns a console logger on stderr. Without verbose only
// warnings and errors are shown.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

// pipelineConfig assembles stage configuration from flags, environment,
// and the config file.
func pipelineConfig() types.PipelineConfig {
	storeDir := viper.GetString("store.store_dir")
	return types.PipelineConfig{
		Extraction: types.ExtractionConfig{
			VocabularyFile: viper.GetString("extraction.vocabulary_file"),
			TypeHint:       types.ContentType(viper.GetString("extraction.type_hint")),
		},
		Batch: types.BatchConfig{
			ResponsesDir: viper.GetString("batch.responses_dir"),
			StoreDir:     storeDir,
			TypeHint:     types.ContentType(viper.GetString("batch.type_hint")),
			Workers:      viper.GetInt("batch.workers"),
		},
		Store: types.StoreConfig{
			StoreDir:   storeDir,
			MaxResults: viper.GetInt("store.max_results"),
		},
		Fetch: types.FetchConfig{
			Timeout:      viper.GetDuration("fetch.timeout"),
			UserAgent:    viper.GetString("fetch.user_agent"),
			MaxBodyBytes: viper.GetInt64("fetch.max_body_bytes"),
			MaxRetries:   viper.GetInt("fetch.max_retries"),
			SecretsDir:   viper.GetString("fetch.secrets_dir"),
		},
	}
}

// newExtractor builds an Extractor from the configured vocabulary file, or
// the built-in vocabulary when none is set.
func newExtractor(cfg types.ExtractionConfig) (*extract.Extractor, error) {
	vocab := extract.DefaultVocabulary()
	if cfg.VocabularyFile != "" {
		v, err := extract.LoadVocabulary(cfg.VocabularyFile)
		if err != nil {
			return nil, err
		}
		vocab = v
	}
	return extract.New(vocab, logger), nil
}

func main() {
	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
