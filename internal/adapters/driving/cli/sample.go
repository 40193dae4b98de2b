package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
)

var (
	sampleSize     int
	sampleStrategy string
	sampleNoCache  bool
	sampleJSON     bool
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Acquire a candidate pool without scoring it",
	Long: `Runs the sampler on its own and prints the resulting pool with its
provenance. Useful for checking catalog coverage and sampler tuning
before spending embedding calls.`,
	RunE: runSample,
}

func init() {
	sampleCmd.Flags().IntVarP(&sampleSize, "size", "s", 0, "pool target size")
	sampleCmd.Flags().StringVar(&sampleStrategy, "strategy", "", "sampling strategy: prefix, category or hybrid")
	sampleCmd.Flags().BoolVar(&sampleNoCache, "no-cache", false, "bypass the candidate pool cache")
	sampleCmd.Flags().BoolVar(&sampleJSON, "json", false, "output the pool as JSON")
	rootCmd.AddCommand(sampleCmd)
}

func runSample(cmd *cobra.Command, _ []string) error {
	if err := initDiscovery(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	size := settings.Discovery.SampleSize
	if sampleSize > 0 {
		size = sampleSize
	}
	strategy := settings.Discovery.Strategy
	if sampleStrategy != "" {
		strategy = domain.SamplingStrategy(sampleStrategy)
		if !strategy.IsValid() {
			return fmt.Errorf("%w: unknown sampling strategy %q", domain.ErrInvalidInput, sampleStrategy)
		}
	}

	pool, err := poolManager.AcquirePool(context.Background(), size, strategy, !sampleNoCache)
	if err != nil {
		return fmt.Errorf("sampling failed: %w", err)
	}

	if sampleJSON {
		return outputJSON(cmd, pool)
	}

	p := pool.Provenance
	cmd.Printf("Pool %s\n", p.PoolID)
	cmd.Printf("  Strategy: %s\n", p.Strategy)
	cmd.Printf("  Size: %d / %d requested\n", p.ActualSize, p.RequestedSize)
	cmd.Printf("  Attempts: %d\n", p.Attempts)
	cmd.Printf("  Sampled at: %s\n", p.SampledAt.Format("2006-01-02 15:04:05"))
	if p.UnderSized {
		cmd.Println("  Note: pool is under-sized; the identifier space may be sparse here.")
	}
	cmd.Println()

	for i := range pool.Items {
		title := pool.Items[i].Title
		if title == "" {
			title = "(no title)"
		}
		cmd.Printf("  %s  %s\n", pool.Items[i].ID, title)
	}

	return nil
}
