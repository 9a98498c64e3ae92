package metrics

import (
	"log"
	"sync"

	"github.com/ca-srg/websearch/internal/types"
)

var (
	globalStore *Store
	initOnce    sync.Once
	initErr     error
)

// Init initializes the global metrics store at the default location.
// It is safe to call multiple times; subsequent calls are no-ops.
func Init() error {
	initOnce.Do(func() {
		globalStore, initErr = NewStore()
		if initErr != nil {
			log.Printf("metrics: failed to initialize store: %v", initErr)
		}
	})
	return initErr
}

// InitWithPath initializes the global metrics store at a custom database
// path. Subsequent Init calls are no-ops.
func InitWithPath(dbPath string) error {
	initOnce.Do(func() {
		globalStore, initErr = NewStoreWithPath(dbPath)
		if initErr != nil {
			log.Printf("metrics: failed to initialize store: %v", initErr)
		}
	})
	return initErr
}

// RecordSearch increments the search count for the given provider.
// If the store is not initialized, this is a no-op (logs a warning).
func RecordSearch(provider types.ProviderType) {
	if globalStore == nil {
		// Attempt lazy initialization
		if err := Init(); err != nil {
			log.Printf("metrics: cannot record search, store not initialized: %v", err)
			return
		}
	}

	if err := globalStore.Increment(string(provider)); err != nil {
		log.Printf("metrics: failed to record search for %s: %v", provider, err)
	}
}

// GetStats returns the cumulative search counts for all providers.
// Returns nil if the store is not initialized.
func GetStats() map[string]int64 {
	if globalStore == nil {
		return nil
	}

	stats, err := globalStore.GetAllTotals()
	if err != nil {
		log.Printf("metrics: failed to get stats: %v", err)
		return nil
	}

	return stats
}
