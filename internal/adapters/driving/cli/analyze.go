package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [item-id]",
	Short: "Analyse opposition for a single item",
	Long: `Runs discovery for one reference item and summarises how far the
catalog leans away from it: the contra items plus mean distance and
mean angle across them.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&discoverMethod, "method", "m", "", "opposition method: pairwise or centroid")
	analyzeCmd.Flags().IntVarP(&discoverSampleSize, "sample-size", "s", 0, "candidate pool target size")
	analyzeCmd.Flags().IntVarP(&discoverLimit, "limit", "n", 0, "maximum number of results")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := initDiscovery(); err != nil {
		return err
	}

	opts, err := discoveryOptions()
	if err != nil {
		return err
	}

	analysis, err := discoveryService.Analyze(context.Background(), args[0], opts)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		return outputJSON(cmd, analysis)
	}

	title := analysis.Reference.Title
	if title == "" {
		title = analysis.Reference.ID
	}
	cmd.Printf("Reference: %s\n", title)
	cmd.Printf("Contra items: %d\n", len(analysis.Results))
	if len(analysis.Results) > 0 {
		cmd.Printf("Mean distance: %.3f\n", analysis.MeanDistance)
		cmd.Printf("Mean angle: %.1f°\n", analysis.MeanAngle)
	}
	cmd.Println()

	return outputResults(cmd, analysis.Results)
}
