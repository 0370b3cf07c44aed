package database

import (
	"fmt"

	"github.com/coldenflo/ICeducation/config"
	"github.com/coldenflo/ICeducation/services/digitalocean"
	"github.com/coldenflo/ICeducation/utils/cache"
)

// Backend names accepted in STORE_BACKEND
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendSpaces   = "spaces"
)

// Open builds the KeyValue selected by env.STORE_BACKEND. GORM backends are
// migrated before they are returned.
func Open(env *config.Environment) (KeyValue, error) {
	switch env.STORE_BACKEND {
	case BackendMemory:
		return NewMemoryStore(), nil

	case BackendSQLite, "":
		store, err := OpenSQLite(env.SQLITE_PATH, gormConfig(env.GO_ENV))
		if err != nil {
			return nil, err
		}
		if err := store.Init(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return store, nil

	case BackendPostgres:
		store, err := OpenPostgres(env, gormConfig(env.GO_ENV))
		if err != nil {
			return nil, err
		}
		if err := store.Init(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return store, nil

	case BackendRedis:
		c, err := cache.NewRedisCache(env.REDIS_URL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return NewRedisStore(c), nil

	case BackendSpaces:
		client, err := digitalocean.NewSpacesClient(digitalocean.SpacesConfig{
			AccessKey: env.DO_SPACES_ACCESS_KEY,
			SecretKey: env.DO_SPACES_SECRET_KEY,
			Bucket:    env.DO_SPACES_BUCKET,
			Region:    env.DO_SPACES_REGION,
			Endpoint:  env.DO_SPACES_ENDPOINT,
		})
		if err != nil {
			return nil, err
		}
		return NewSpacesStore(client, env.DO_SPACES_PREFIX), nil
	}

	return nil, fmt.Errorf("unknown STORE_BACKEND %q", env.STORE_BACKEND)
}
