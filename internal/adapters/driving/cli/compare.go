package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var compareJSON bool

var compareCmd = &cobra.Command{
	Use:   "compare [item-id] [item-id]",
	Short: "Compare two items head to head",
	Long: `Computes the full set of metrics between two items: cosine
similarity and distance, angular separation, Euclidean distance, and a
coarse relationship label.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	if err := initDiscovery(); err != nil {
		return err
	}

	comparison, err := discoveryService.Compare(context.Background(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	if compareJSON {
		return outputJSON(cmd, comparison)
	}

	cmd.Printf("Comparing %s and %s\n", args[0], args[1])
	cmd.Println()
	cmd.Printf("  Cosine similarity:  %.4f\n", comparison.Similarity)
	cmd.Printf("  Cosine distance:    %.4f\n", comparison.Distance)
	cmd.Printf("  Angle:              %.1f°\n", comparison.Angle)
	cmd.Printf("  Euclidean distance: %.4f\n", comparison.Euclidean)
	cmd.Printf("  Relationship:       %s\n", comparison.Relationship)

	return nil
}
