package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shaoxunyuan/prjmeta/internal/pipeline"
	"github.com/shaoxunyuan/prjmeta/pkg/accession"
	"github.com/shaoxunyuan/prjmeta/pkg/fetch"
	"github.com/shaoxunyuan/prjmeta/pkg/oracle"
)

var (
	outdirFlag       string
	fetchTimeoutFlag int
	modelFlag        string
	apiURLFlag       string
)

func runParse(_ *cobra.Command, args []string) error {
	projectID := args[0]
	if !accession.IsBioProject(projectID) {
		return fmt.Errorf("invalid project accession %q (expected a BioProject ID like PRJNA979185)", projectID)
	}

	apiKey := viper.GetString("deepseek_api_key")
	if apiKey == "" {
		return fmt.Errorf("DEEPSEEK_API_KEY is not set; export your DeepSeek API key first")
	}

	oracleClient, err := oracle.NewClient(oracle.Config{
		APIKey:  apiKey,
		BaseURL: apiURL(),
		Model:   model(),
	})
	if err != nil {
		return err
	}

	entrez := newEntrezClient()
	source := fetch.NewPysradbRunner()

	p := pipeline.New(
		pipeline.Config{Outdir: outdirFlag, Quiet: quiet, Verbose: verbose},
		pipeline.Deps{
			Registry:   entrez,
			Literature: entrez,
			Source:     source,
			Oracle:     oracleClient,
		},
	)

	result, err := p.Run(context.Background(), projectID)
	if err != nil {
		return fmt.Errorf("failed to process %s: %w", projectID, err)
	}

	if !quiet {
		fmt.Printf("Workbook: %s\n", result.WorkbookPath)
		fmt.Printf("Prompt:   %s\n", result.PromptPath)

		if !result.Grouped {
			fmt.Println("No grouping rules were applied; group columns are empty.")
		}
	}

	return nil
}

func newEntrezClient() *fetch.EntrezClient {
	timeout := time.Duration(fetchTimeoutFlag) * time.Second

	if key := viper.GetString("ncbi_api_key"); key != "" {
		return fetch.NewEntrezClient(timeout, fetch.WithAPIKey(key))
	}

	return fetch.NewEntrezClient(timeout)
}

func apiURL() string {
	if apiURLFlag != "" {
		return apiURLFlag
	}

	return viper.GetString("api_url")
}

func model() string {
	if modelFlag != "" {
		return modelFlag
	}

	return viper.GetString("model")
}

func init() {
	rootCmd.Flags().StringVar(&outdirFlag, "outdir", ".", "output directory for the workbook and prompt")
	rootCmd.Flags().IntVar(&fetchTimeoutFlag, "timeout", 30, "timeout in seconds for NCBI requests")
	rootCmd.Flags().StringVar(&modelFlag, "model", "", "oracle chat model (default deepseek-chat)")
	rootCmd.Flags().StringVar(&apiURLFlag, "api-url", "", "oracle API base URL (default DeepSeek)")
}
