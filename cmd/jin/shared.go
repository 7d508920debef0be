package main

import "github.com/jinvcs/jin/internal/jin/config"

// loadStoreConfig loads the store-level config.toml, defaulting
// when the store has not been initialized yet.
func loadStoreConfig() (*config.Config, error) {
	return config.Load(store.Root)
}
