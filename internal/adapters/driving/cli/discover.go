package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
)

var (
	discoverMethod      string
	discoverStrategy    string
	discoverSampleSize  int
	discoverMinDistance float64
	discoverMinAngle    float64
	discoverLimit       int
	discoverNoCache     bool
	discoverJSON        bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover [item-id...]",
	Short: "Find items opposed to a reference set",
	Long: `Samples a candidate pool, embeds it, and returns the items most
diametrically opposed to the given reference items.

Pairwise opposition requires a candidate to be far from every reference;
centroid opposition measures against the mean of the reference vectors.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().StringVarP(&discoverMethod, "method", "m", "", "opposition method: pairwise or centroid")
	discoverCmd.Flags().StringVar(&discoverStrategy, "strategy", "", "sampling strategy: prefix, category or hybrid")
	discoverCmd.Flags().IntVarP(&discoverSampleSize, "sample-size", "s", 0, "candidate pool target size")
	discoverCmd.Flags().Float64Var(&discoverMinDistance, "min-distance", -1, "minimum cosine distance threshold [0, 2]")
	discoverCmd.Flags().Float64Var(&discoverMinAngle, "min-angle", -1, "minimum angle threshold in degrees [0, 180]")
	discoverCmd.Flags().IntVarP(&discoverLimit, "limit", "n", 0, "maximum number of results")
	discoverCmd.Flags().BoolVar(&discoverNoCache, "no-cache", false, "bypass the candidate pool cache")
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(discoverCmd)
}

// discoveryOptions folds command flags over the configured defaults.
// Unset flags keep the defaults from settings.
func discoveryOptions() (domain.DiscoveryOptions, error) {
	settings, err := settingsService.Get()
	if err != nil {
		return domain.DiscoveryOptions{}, fmt.Errorf("load settings: %w", err)
	}
	opts := settings.Discovery

	if discoverMethod != "" {
		opts.Method = domain.Method(discoverMethod)
	}
	if discoverStrategy != "" {
		opts.Strategy = domain.SamplingStrategy(discoverStrategy)
	}
	if discoverSampleSize > 0 {
		opts.SampleSize = discoverSampleSize
	}
	if discoverMinDistance >= 0 {
		opts.MinDistance = discoverMinDistance
	}
	if discoverMinAngle >= 0 {
		opts.MinAngle = discoverMinAngle
	}
	if discoverLimit > 0 {
		opts.Limit = discoverLimit
	}
	if discoverNoCache {
		opts.UseCache = false
	}

	return opts, opts.Validate()
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if err := initDiscovery(); err != nil {
		return err
	}

	opts, err := discoveryOptions()
	if err != nil {
		return err
	}

	results, err := discoveryService.Discover(context.Background(), args, opts)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if discoverJSON {
		return outputJSON(cmd, results)
	}
	return outputResults(cmd, results)
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResults(cmd *cobra.Command, results []domain.RankedResult) error {
	if len(results) == 0 {
		cmd.Println("No contra items found. Try lowering --min-angle or raising --sample-size.")
		return nil
	}

	cmd.Println("Contra items:")
	cmd.Println()
	for i := range results {
		title := results[i].Item.Title
		if title == "" {
			title = results[i].Item.ID
		}

		cmd.Printf("  [%d] %s\n", i+1, title)
		cmd.Printf("      angle: %.1f°  distance: %.3f  (%s)\n",
			results[i].Score.Angle, results[i].Score.Distance,
			domain.ClassifyAngle(results[i].Score.Angle))
		if results[i].Item.ChannelTitle != "" {
			cmd.Printf("      channel: %s\n", results[i].Item.ChannelTitle)
		}
		cmd.Println()
	}

	return nil
}
