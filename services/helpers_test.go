package services

import (
	"path/filepath"
	"testing"

	"github.com/coldenflo/ICeducation/database"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteKV(t *testing.T) *database.GORMStore {
	t.Helper()

	store, err := database.OpenSQLite(filepath.Join(t.TempDir(), "catalogue.db"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, store.Init())
	t.Cleanup(func() { _ = store.Close() })
	return store
}
