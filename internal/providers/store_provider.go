package providers

import (
	"fmt"
	"scoutd/internal/docstore"
	"scoutd/internal/structures"
)

// NewStoreProvider opens the document store selected by store.driver. The
// returned cleanup closes it.
func NewStoreProvider(conf *structures.Config, logger Logger) (docstore.Store, func(), error) {
	var store docstore.Store
	switch conf.Store.Driver {
	case "sqlite":
		s, err := docstore.OpenSQLite(conf.Store.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store %s: %w", conf.Store.SQLitePath, err)
		}
		logger.Infof(TypeApp, "Using sqlite document store at %s", conf.Store.SQLitePath)
		store = s
	case "memory", "":
		logger.Infof(TypeApp, "Using in-memory document store")
		store = docstore.NewMemoryStore()
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", conf.Store.Driver)
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Errorf(TypeApp, "Closing store: %s", err)
		}
	}
	return store, cleanup, nil
}
