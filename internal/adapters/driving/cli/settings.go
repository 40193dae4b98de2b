package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding provider, item catalog, sampler and
discovery defaults.

Use subcommands to configure specific settings.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the provider that turns item text into vectors.`,
	RunE:  runSettingsEmbedding,
}

var settingsCatalogWatch bool

var settingsCatalogCmd = &cobra.Command{
	Use:   "catalog [path]",
	Short: "Configure the item catalog",
	Long:  `Point the engine at a JSON item catalog file.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsCatalog,
}

func init() {
	settingsCatalogCmd.Flags().BoolVar(&settingsCatalogWatch, "watch", false, "reload the catalog when the file changes")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsCatalogCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !settings.Embedding.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Catalog]")
	if settings.Catalog.Path != "" {
		cmd.Printf("  Path: %s\n", settings.Catalog.Path)
		cmd.Printf("  Watch: %v\n", settings.Catalog.Watch)
	} else {
		cmd.Println("  Path: (not set)")
	}
	cmd.Println()

	cmd.Println("[Sampler]")
	cmd.Printf("  Prefix length: %d\n", settings.Sampler.PrefixLength)
	cmd.Printf("  Max attempts: %d\n", settings.Sampler.MaxAttempts)
	cmd.Printf("  Max in flight: %d\n", settings.Sampler.MaxInFlight)
	cmd.Printf("  Categories: %s\n", strings.Join(settings.Sampler.Categories, ", "))
	cmd.Printf("  Pool TTL: %s\n", settings.Sampler.PoolTTL)
	cmd.Println()

	cmd.Println("[Discovery]")
	cmd.Printf("  Method: %s\n", settings.Discovery.Method.Description())
	cmd.Printf("  Strategy: %s\n", settings.Discovery.Strategy)
	cmd.Printf("  Sample size: %d\n", settings.Discovery.SampleSize)
	cmd.Printf("  Min distance: %.2f\n", settings.Discovery.MinDistance)
	cmd.Printf("  Min angle: %.1f°\n", settings.Discovery.MinAngle)
	cmd.Printf("  Limit: %d\n", settings.Discovery.Limit)
	cmd.Printf("  Use cache: %v\n", settings.Discovery.UseCache)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'contrafeed settings embedding' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaultModel := domain.DefaultEmbeddingModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", selectedProvider.Description(), model)
	return nil
}

func runSettingsCatalog(cmd *cobra.Command, args []string) error {
	path := args[0]

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("catalog file not accessible: %w", err)
	}

	if err := settingsService.SetCatalogPath(path, settingsCatalogWatch); err != nil {
		return fmt.Errorf("failed to set catalog path: %w", err)
	}

	cmd.Printf("Catalog set to: %s\n", path)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
