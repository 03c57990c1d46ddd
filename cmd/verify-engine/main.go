// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the verify-engine CLI. Each
// pipeline surface is a subcommand: verify checks a text against an
// ontology, ontology manages the rule documents, and record inspects
// the audit trail.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aare-ai/verify-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the verify-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "verify-engine",
	Short: "Formal compliance verification for generated text",
	Long: `verify-engine checks text against rule ontologies: it extracts typed
variables from the text, substitutes them into each constraint's formula,
decides every constraint, and emits a deterministic verification
certificate. Verifications are recorded in a local audit store.

Rule ontologies live in a local document store as versioned YAML or JSON
files. Use the ontology subcommands to validate and publish them, and the
record subcommands to query and prune the audit trail.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./verify-engine.yaml or ~/.config/verify-engine/config.yaml)")
	rootCmd.PersistentFlags().String("ontology-dir", "ontologies", "root directory of the ontology document store")
	rootCmd.PersistentFlags().String("audit-db", "audit/verifications.db", "SQLite file for verification records")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")

	viper.BindPFlag("store.dir", rootCmd.PersistentFlags().Lookup("ontology-dir"))
	viper.BindPFlag("audit.path", rootCmd.PersistentFlags().Lookup("audit-db"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("verify-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "verify-engine"))
		}
	}

	viper.SetEnvPrefix("VERIFY_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	level := slog.LevelInfo
	if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// pipelineConfig assembles the pipeline configuration from viper, which
// merges config file, VERIFY_ENGINE_* environment, and bound flags.
func pipelineConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		Store: types.StoreConfig{
			Dir:     viper.GetString("store.dir"),
			Timeout: viper.GetDuration("store.timeout"),
		},
		Decision: types.DecisionConfig{
			Budget: viper.GetDuration("decision.budget"),
		},
		Audit: types.AuditConfig{
			Path:      viper.GetString("audit.path"),
			Retention: viper.GetDuration("audit.retention"),
			Timeout:   viper.GetDuration("audit.timeout"),
		},
	}
	if cfg.Store.Timeout <= 0 {
		cfg.Store.Timeout = types.DefaultStoreTimeout
	}
	if cfg.Decision.Budget <= 0 {
		cfg.Decision.Budget = types.DefaultDecisionBudget
	}
	if cfg.Audit.Retention <= 0 {
		cfg.Audit.Retention = types.DefaultAuditRetention
	}
	if cfg.Audit.Timeout <= 0 {
		cfg.Audit.Timeout = types.DefaultAuditTimeout
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
