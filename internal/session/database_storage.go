package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DatabaseBackend persists session keys in a SQL table using GORM.
type DatabaseBackend struct {
	db          *gorm.DB
	driverLabel string
}

type sessionEntryRecord struct {
	Namespace     string `gorm:"column:namespace;primaryKey"`
	EntryKey      string `gorm:"column:entry_key;primaryKey"`
	Value         string `gorm:"column:value;not null"`
	UpdatedAtUnix int64  `gorm:"column:updated_at_unix;not null"`
}

func (sessionEntryRecord) TableName() string {
	return "session_entries"
}

// NewDatabaseBackend opens databaseURL (postgres:// or sqlite://) and migrates the table.
func NewDatabaseBackend(ctx context.Context, databaseURL string) (*DatabaseBackend, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("session_store.open: %w", errEmptyDatabaseURL)
	}
	dialector, driverLabel, err := openDialector(databaseURL)
	if err != nil {
		return nil, err
	}
	gormDB, openErr := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if openErr != nil {
		return nil, fmt.Errorf("session_store.open.%s: %w", driverLabel, openErr)
	}
	if migrateErr := gormDB.WithContext(ctx).AutoMigrate(&sessionEntryRecord{}); migrateErr != nil {
		return nil, fmt.Errorf("session_store.migrate.%s: %w", driverLabel, migrateErr)
	}
	return &DatabaseBackend{
		db:          gormDB,
		driverLabel: driverLabel,
	}, nil
}

// Driver exposes the selected database driver label.
func (backend *DatabaseBackend) Driver() string {
	return backend.driverLabel
}

// Close releases the underlying connection pool.
func (backend *DatabaseBackend) Close() error {
	sqlDB, err := backend.db.DB()
	if err != nil {
		return fmt.Errorf("session_store.close.%s: %w", backend.driverLabel, err)
	}
	return sqlDB.Close()
}

// Scope returns the storage for namespace.
func (backend *DatabaseBackend) Scope(namespace string) Storage {
	return &databaseStorage{backend: backend, namespace: namespace}
}

type databaseStorage struct {
	backend   *DatabaseBackend
	namespace string
}

func (storage *databaseStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var record sessionEntryRecord
	err := storage.backend.db.WithContext(ctx).
		Where("namespace = ? AND entry_key = ?", storage.namespace, key).
		Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("session_store.get.%s: %w", storage.backend.driverLabel, err)
	}
	return record.Value, true, nil
}

func (storage *databaseStorage) Set(ctx context.Context, key string, value string) error {
	record := sessionEntryRecord{
		Namespace:     storage.namespace,
		EntryKey:      key,
		Value:         value,
		UpdatedAtUnix: time.Now().UTC().Unix(),
	}
	err := storage.backend.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at_unix"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("session_store.set.%s: %w", storage.backend.driverLabel, err)
	}
	return nil
}

func (storage *databaseStorage) Delete(ctx context.Context, key string) error {
	err := storage.backend.db.WithContext(ctx).
		Where("namespace = ? AND entry_key = ?", storage.namespace, key).
		Delete(&sessionEntryRecord{}).Error
	if err != nil {
		return fmt.Errorf("session_store.delete.%s: %w", storage.backend.driverLabel, err)
	}
	return nil
}
