package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coldenflo/ICeducation/config"
	"github.com/coldenflo/ICeducation/model"
	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GORMStore is a KeyValue over a single kv_entries table. It backs both the
// embedded SQLite default and a shared PostgreSQL deployment.
type GORMStore struct {
	db *gorm.DB
}

func gormConfig(goEnv string) *gorm.Config {
	gormLogger := logger.Default.LogMode(logger.Warn)
	if goEnv == "production" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}
	return &gorm.Config{Logger: gormLogger}
}

// OpenSQLite opens (creating if needed) the SQLite file at path
func OpenSQLite(path string, cfg *gorm.Config) (*GORMStore, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		// lets catalogctl write while the server holds the file
		dsn += "?_pragma=busy_timeout(5000)"
	}

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY inside the process
	sqlDB.SetMaxOpenConns(1)

	return &GORMStore{db: db}, nil
}

// OpenPostgres connects using the DB_* settings
func OpenPostgres(env *config.Environment, cfg *gorm.Config) (*GORMStore, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		env.DB_HOST,
		env.DB_USER_NAME,
		env.DB_PASSWORD,
		env.DB_NAME,
		env.DB_PORT,
		env.DB_SSL_MODE,
	)

	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &GORMStore{db: db}, nil
}

// NewGORMStore wraps an already opened connection
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

// Init creates or updates the kv_entries table
func (s *GORMStore) Init() error {
	return s.db.AutoMigrate(&model.KVEntry{})
}

func (s *GORMStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry model.KVEntry
	err := s.db.WithContext(ctx).Where(`"key" = ?`, key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(entry.Value), nil
}

func (s *GORMStore) Set(ctx context.Context, key string, value []byte) error {
	entry := model.KVEntry{
		Key:       key,
		Value:     datatypes.JSON(value),
		UpdatedAt: time.Now().UTC(),
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *GORMStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where(`"key" = ?`, key).Delete(&model.KVEntry{}).Error
}

func (s *GORMStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).
		Model(&model.KVEntry{}).
		Where(`"key" LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").
		Pluck("key", &keys).Error
	return keys, err
}

func (s *GORMStore) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GORMStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB exposes the connection for migrations and tests
func (s *GORMStore) GetDB() *gorm.DB {
	return s.db
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
