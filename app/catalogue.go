package app

import (
	"fmt"

	"github.com/coldenflo/ICeducation/config"
	"github.com/coldenflo/ICeducation/database"
	"github.com/coldenflo/ICeducation/services"
	"github.com/coldenflo/ICeducation/utils/auth"
	"go.uber.org/zap"
)

// Catalogue bundles the persistence layer with the store built on it
type Catalogue struct {
	KV    database.KeyValue
	Seed  database.SeedData
	Store *services.CatalogueStore
}

// Close releases the backend
func (c *Catalogue) Close() error {
	return c.KV.Close()
}

// OpenCatalogue connects the configured backend and builds the store over
// the bundled seed. It does not initialize the stored state.
func OpenCatalogue(env *config.Environment, logger *zap.Logger) (*Catalogue, error) {
	seed, err := database.LoadSeed()
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}

	var opts []services.CatalogueOption
	password := env.ADMIN_PASSWORD
	if env.HASH_SEEDED_PASSWORDS {
		password, err = auth.HashPassword(env.ADMIN_PASSWORD)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		opts = append(opts, services.WithHashedCredentials())
	}
	seed = seed.WithAdmin(env.ADMIN_USERNAME, password)

	kv, err := database.Open(env)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", env.STORE_BACKEND, err)
	}
	logger.Info("catalogue backend ready", zap.String("backend", env.STORE_BACKEND))

	return &Catalogue{
		KV:    kv,
		Seed:  seed,
		Store: services.NewCatalogueStore(kv, seed, logger, opts...),
	}, nil
}
