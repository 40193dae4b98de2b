package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show engine statistics",
	Long:  `Reports the active embedding model, vector dimensions, configured thresholds and cache activity.`,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output stats as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := initDiscovery(); err != nil {
		return err
	}

	stats, err := discoveryService.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to collect stats: %w", err)
	}

	if statsJSON {
		return outputJSON(cmd, stats)
	}

	cmd.Println("Engine Statistics")
	cmd.Println("=================")
	cmd.Printf("  Embedding model: %s\n", stats.EmbeddingModel)
	cmd.Printf("  Dimensions: %d\n", stats.Dimensions)
	cmd.Printf("  Min distance threshold: %.2f\n", stats.MinDistance)
	cmd.Printf("  Min angle threshold: %.1f°\n", stats.MinAngle)
	cmd.Printf("  Embeddings resolved this session: %d\n", stats.CachedEmbeddings)

	return nil
}
