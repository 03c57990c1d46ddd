// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aare-ai/verify-engine/internal/ontology"
)

var ontologyCmd = &cobra.Command{
	Use:   "ontology",
	Short: "Manage rule ontologies (list, validate, put)",
	Long: `Ontology manages the local document store of rule ontologies. Use
subcommands to list stored ontologies, validate a document without
publishing it, or publish a new version.`,
}

// --- list subcommand ---

var ontologyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ontologies in the document store",
	RunE:  runOntologyList,
}

func runOntologyList(cmd *cobra.Command, args []string) error {
	store := ontology.NewDirStore(pipelineConfig().Store)

	infos, err := store.List(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	if len(infos) == 0 {
		fmt.Println("No ontologies found.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "%-30s  %-10s  %-12s  %s\n", "Name", "Version", "Constraints", "Description")
	for _, info := range infos {
		fmt.Fprintf(os.Stdout, "%-30s  %-10s  %-12d  %s\n",
			info.Name, info.Version, info.Constraints, info.Description)
	}
	return nil
}

// --- validate subcommand ---

var ontologyValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate an ontology document without publishing it",
	Long: `Validate parses and type-checks an ontology document: extraction rule
patterns, variable kind consistency, formula structure, and formula types.
It reports the first problem found, naming the offending constraint.`,
	Args: cobra.ExactArgs(1),
	RunE: runOntologyValidate,
}

func runOntologyValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading ontology document: %w", err)
	}

	ont, err := ontology.Parse(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "OK: %s v%s (%d extraction rules, %d constraints)\n",
		ont.Name, ont.Version, len(ont.Rules), len(ont.Constraints))
	return nil
}

// --- put subcommand ---

var ontologyPutCmd = &cobra.Command{
	Use:   "put <file>",
	Short: "Validate and publish an ontology document",
	Long: `Put validates an ontology document and writes it into the document
store under its declared name and version, updating the latest alias.`,
	Args: cobra.ExactArgs(1),
	RunE: runOntologyPut,
}

func runOntologyPut(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading ontology document: %w", err)
	}

	store := ontology.NewDirStore(pipelineConfig().Store)
	ont, err := store.Put(context.Background(), data)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Published %s v%s (%d constraints)\n",
		ont.Name, ont.Version, len(ont.Constraints))
	return nil
}

func init() {
	ontologyListCmd.Flags().Bool("json", false, "print the listing as JSON")

	ontologyCmd.AddCommand(ontologyListCmd)
	ontologyCmd.AddCommand(ontologyValidateCmd)
	ontologyCmd.AddCommand(ontologyPutCmd)
	rootCmd.AddCommand(ontologyCmd)
}
