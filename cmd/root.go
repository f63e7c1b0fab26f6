// Package cmd provides the command-line interface for the prjmeta tool.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	quiet   bool
	verbose bool
)

// rootCmd runs the full pipeline for one project accession.
var rootCmd = &cobra.Command{
	Use:   "prjmeta <PRJNA-id>",
	Short: "Summarize a sequencing project's metadata and sample grouping into a workbook",
	Long: `Prjmeta gathers metadata for a public sequencing project (BioProject,
GEO, PubMed, and the SRA run table via pysradb), asks a DeepSeek-compatible
model for the study's disease classification and per-sample grouping rules,
applies those rules deterministically, and writes a multi-sheet .xlsx
workbook together with the exact prompt that was sent.

Requires the DEEPSEEK_API_KEY environment variable and the pysradb tool.

Examples:
  prjmeta PRJNA979185
  prjmeta PRJNA515702 --outdir ./results`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.prjmeta.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "quiet output (suppress progress messages)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (per-column reports)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".prjmeta" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".prjmeta")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil && !quiet {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
