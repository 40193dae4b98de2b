// Package cli implements the command-line driving adapter.
//
// Commands talk to the core exclusively through the driving ports;
// wiring of driven adapters happens in wire.go at command startup.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/contra-labs/contrafeed-cli/internal/core/ports/driving"
	"github.com/contra-labs/contrafeed-cli/internal/logger"
)

// version is injected by Execute.
var version = "dev"

// Services used by the commands. settingsService is wired for every
// command; discoveryService and poolManager are wired on demand because
// they need a reachable embedding provider.
var (
	settingsService  driving.SettingsService
	discoveryService driving.DiscoveryService
	poolManager      driving.PoolManager
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "contrafeed",
	Short: "Find content diametrically opposed to what you already like",
	Long: `Contrafeed inverts the recommender: instead of surfacing more of the
same, it finds items whose embeddings point the opposite way from a
reference set, ranked by angular opposition.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return initSettings()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// Execute runs the root command.
func Execute(v string) error {
	version = v
	return rootCmd.Execute()
}
