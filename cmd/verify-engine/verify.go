// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aare-ai/verify-engine/internal/audit"
	"github.com/aare-ai/verify-engine/internal/ontology"
	"github.com/aare-ai/verify-engine/internal/verify"
	"github.com/aare-ai/verify-engine/pkg/types"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [file]",
	Short: "Verify a text against a rule ontology",
	Long: `Verify reads text from a file (or stdin with "-" or no argument),
checks it against the named ontology, and prints the verification result.

The exit code reflects the decision: 0 when the text satisfies every
constraint, 1 on a pipeline error, 2 when any constraint is violated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringP("ontology", "o", "", "ontology name to check against (required)")
	verifyCmd.Flags().String("ontology-version", "", "ontology version (default: latest)")
	verifyCmd.Flags().Bool("json", false, "print the full result as JSON")
	verifyCmd.Flags().Bool("no-audit", false, "skip writing the audit record")
	verifyCmd.MarkFlagRequired("ontology")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	result, err := doVerify(cmd, args)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printResult(os.Stdout, result)
	}

	if !result.Verified {
		// Distinguish "text failed verification" from pipeline errors.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		os.Exit(2)
	}
	return nil
}

// doVerify runs the pipeline; its defers release the audit store
// before the caller decides the exit code.
func doVerify(cmd *cobra.Command, args []string) (*types.VerificationResult, error) {
	name, _ := cmd.Flags().GetString("ontology")
	ontVersion, _ := cmd.Flags().GetString("ontology-version")
	noAudit, _ := cmd.Flags().GetBool("no-audit")

	text, err := readInput(args)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("input text is empty")
	}

	cfg := pipelineConfig()
	store := ontology.NewDirStore(cfg.Store)

	var sink verify.Sink
	if !noAudit {
		auditStore, err := audit.NewStore(cfg.Audit)
		if err != nil {
			return nil, fmt.Errorf("opening audit store: %w", err)
		}
		defer auditStore.Close()
		sink = auditStore
	}

	verifier := verify.New(store, sink, cfg, slog.Default())
	return verifier.Verify(context.Background(), text, name, ontVersion)
}

func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading input file: %w", err)
	}
	return string(data), nil
}

func printResult(w io.Writer, result *types.VerificationResult) {
	status := "VERIFIED"
	if !result.Verified {
		status = "VIOLATIONS FOUND"
	}
	fmt.Fprintf(w, "%s  (%s v%s, %d constraints, %d ms)\n",
		status, result.Ontology.Name, result.Ontology.Version,
		result.Ontology.ConstraintsChecked, result.ExecutionTimeMS)

	for _, v := range result.Violations {
		fmt.Fprintf(w, "  [%s] %s: %s\n", v.Category, v.ConstraintID, v.ErrorMessage)
		if v.Citation != "" {
			fmt.Fprintf(w, "      citation: %s\n", v.Citation)
		}
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}

	fmt.Fprintf(w, "  certificate: %s\n", result.CertificateDigest)
	fmt.Fprintf(w, "  verification: %s\n", result.VerificationID)
}
