// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/aare-ai/verify-engine/internal/audit"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Inspect the verification audit trail (get, stats, cleanup)",
	Long: `Record queries the local audit store. Every verification writes one
record keyed by verification id; records expire after the configured
retention window and are removed by cleanup.`,
}

// --- get subcommand ---

var recordGetCmd = &cobra.Command{
	Use:   "get <verification-id>",
	Short: "Show one verification record",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordGet,
}

func runRecordGet(cmd *cobra.Command, args []string) error {
	store, err := audit.NewStore(pipelineConfig().Audit)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

// --- stats subcommand ---

var recordStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize verification activity over a window",
	RunE:  runRecordStats,
}

func runRecordStats(cmd *cobra.Command, args []string) error {
	window, _ := cmd.Flags().GetDuration("window")

	store, err := audit.NewStore(pipelineConfig().Audit)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.WindowStats(context.Background(), time.Now().Add(-window))
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Fprintf(os.Stdout, "Verifications in the last %s\n", window)
	fmt.Fprintf(os.Stdout, "  total:    %d\n", stats.Total)
	fmt.Fprintf(os.Stdout, "  verified: %d\n", stats.Verified)
	fmt.Fprintf(os.Stdout, "  failed:   %d\n", stats.Failed)
	fmt.Fprintf(os.Stdout, "  avg time: %.1f ms\n", stats.AvgExecutionMS)
	names := make([]string, 0, len(stats.ByOntology))
	for name := range stats.ByOntology {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stdout, "  %s: %d\n", name, stats.ByOntology[name])
	}
	return nil
}

// --- cleanup subcommand ---

var recordCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired verification records",
	RunE:  runRecordCleanup,
}

func runRecordCleanup(cmd *cobra.Command, args []string) error {
	store, err := audit.NewStore(pipelineConfig().Audit)
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.Sweep(context.Background(), time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Removed %d expired record(s)\n", removed)
	return nil
}

func init() {
	recordStatsCmd.Flags().Duration("window", 24*time.Hour, "look-back window for stats")
	recordStatsCmd.Flags().Bool("json", false, "print stats as JSON")

	recordCmd.AddCommand(recordGetCmd)
	recordCmd.AddCommand(recordStatsCmd)
	recordCmd.AddCommand(recordCleanupCmd)
	rootCmd.AddCommand(recordCmd)
}
