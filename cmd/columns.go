package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaoxunyuan/prjmeta/pkg/accession"
	"github.com/shaoxunyuan/prjmeta/pkg/fetch"
	"github.com/shaoxunyuan/prjmeta/pkg/table"
)

// columnsCmd previews the grouping signal of a project's metadata without
// consulting the oracle, so no credential is needed.
var columnsCmd = &cobra.Command{
	Use:   "columns <PRJNA-id>",
	Short: "Preview candidate grouping columns without calling the oracle",
	Long: `Columns fetches the run metadata table for a project and reports which
columns survive normalization and qualify as grouping candidates. Useful as
a dry run before spending an oracle call.

Examples:
  prjmeta columns PRJNA979185`,
	Args: cobra.ExactArgs(1),
	RunE: runColumns,
}

func runColumns(_ *cobra.Command, args []string) error {
	projectID := args[0]
	if !accession.IsBioProject(projectID) {
		return fmt.Errorf("invalid project accession %q (expected a BioProject ID like PRJNA979185)", projectID)
	}

	source := fetch.NewPysradbRunner()
	if err := source.Check(); err != nil {
		return err
	}

	full, err := source.Metadata(context.Background(), projectID)
	if err != nil {
		return fmt.Errorf("failed to fetch metadata for %s: %w", projectID, err)
	}

	stripped := table.StripDownloadColumns(full)
	clean := table.Deduplicate(stripped)
	candidates := table.SelectCandidates(stripped)

	fmt.Printf("%s: %d runs, %d columns (%d after normalization)\n",
		projectID, full.Rows(), full.Cols(), clean.Cols())

	fmt.Println("\nColumns:")

	for _, name := range stripped.Names() {
		level := "sample-level"
		if stripped.IsStudyLevel(name) {
			level = "study-level"
		}

		kept := ""
		if !clean.Has(name) {
			kept = ", dropped by deduplication"
		}

		fmt.Printf("  - %s: %d unique values (%s%s)\n", name, stripped.DistinctCount(name), level, kept)
	}

	if len(candidates) == 0 {
		fmt.Println("\nNo candidate grouping columns found.")
		return nil
	}

	fmt.Println("\nCandidate grouping columns:")

	for _, name := range candidates {
		values := stripped.DistinctValues(name, 6)
		fmt.Printf("  - %s: %v\n", name, values)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}
