package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/contra-labs/contrafeed-cli/internal/adapters/driven/ai"
	"github.com/contra-labs/contrafeed-cli/internal/adapters/driven/catalog"
	catalogfile "github.com/contra-labs/contrafeed-cli/internal/adapters/driven/catalog/file"
	configfile "github.com/contra-labs/contrafeed-cli/internal/adapters/driven/config/file"
	"github.com/contra-labs/contrafeed-cli/internal/adapters/driven/storage/sqlite"
	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
	"github.com/contra-labs/contrafeed-cli/internal/core/ports/driven"
	"github.com/contra-labs/contrafeed-cli/internal/core/services"
	"github.com/contra-labs/contrafeed-cli/internal/logger"
)

// closers collects driven adapters to tear down after the command runs.
var closers []io.Closer

// initSettings wires the config store and settings service. Called for
// every command; the heavier discovery stack is wired only on demand.
func initSettings() error {
	if settingsService != nil {
		return nil
	}

	store, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}

	settingsService = services.NewSettingsService(store, ai.NewConfigValidator())
	return nil
}

// initDiscovery wires the full discovery stack: catalog, embedding
// provider, cache, pool manager and orchestrator.
func initDiscovery() error {
	if discoveryService != nil {
		return nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if settings.Catalog.Path == "" {
		return errors.New("no item catalog configured. Run 'contrafeed settings catalog <path>' first")
	}
	cat, err := catalogfile.Open(settings.Catalog.Path)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	if settings.Catalog.Watch {
		if err := cat.Watch(); err != nil {
			logger.Warn("Catalog watch disabled: %v", err)
		}
	}
	closers = append(closers, cat)

	if !settings.Embedding.IsConfigured() {
		return errors.New("no embedding provider configured. Run 'contrafeed settings embedding' first")
	}
	embedder, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return err
	}
	closers = append(closers, embedder)

	cache, err := sqlite.NewStore("")
	if err != nil {
		// Discovery works without a cache, just slower and costlier.
		logger.Warn("Cache unavailable, continuing without: %v", err)
		cache = nil
	} else {
		closers = append(closers, cache)
	}

	var cacheStore driven.CacheStore
	if cache != nil {
		cacheStore = cache
	}

	lookup := catalog.NewRateLimitedSearcher(cat)
	pm := services.NewPoolManager(lookup, cat, cacheStore, settings.Sampler)
	resolver := services.NewEmbeddingResolver(embedder, cacheStore, domain.DefaultEmbeddingTTL)

	poolManager = pm
	discoveryService = services.NewDiscoveryOrchestrator(cat, pm, resolver, settings.Discovery)
	return nil
}

// Shutdown closes all wired adapters. Called from main after Execute.
func Shutdown() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			logger.Warn("Close failed: %v", err)
		}
	}
	closers = nil
}
