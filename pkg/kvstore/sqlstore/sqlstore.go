package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/laptop_store/pkg/kvstore"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Slot 一個 key 一列, value 存整包 JSON
type Slot struct {
	Name      string    `gorm:"primaryKey;type:varchar(128)"`
	Value     string    `gorm:"not null;type:text"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Slot) TableName() string {
	return "storage_slots"
}

type SQLStore struct {
	db *gorm.DB
}

var _ kvstore.Store = (*SQLStore)(nil)

// NewSQLStore 會自動 migrate storage_slots
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&Slot{}); err != nil {
		return nil, fmt.Errorf("migrate storage slots: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func PostgresDSN(dbname, host, port, user, pas string) string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=disable", user, pas, host, port, dbname)
}

func OpenPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
}

// OpenSQLite path 可以是 ":memory:" 或 "file::memory:?cache=shared"
// sqlite 同時只能有一個 writer, 連線數固定為 1
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return kvstore.NewStoreError(kvstore.StoreErrorConnection, "", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return kvstore.NewStoreError(kvstore.StoreErrorConnection, "", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	var slot Slot
	err := s.db.WithContext(ctx).Where("name = ?", key).First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", kvstore.ErrKeyNotFound
	}
	if err != nil {
		return "", kvstore.NewStoreError(kvstore.StoreErrorUnknown, key, err)
	}
	return slot.Value, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value string) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&Slot{Name: key, Value: value, UpdatedAt: time.Now()}).Error
	if err != nil {
		return kvstore.NewStoreError(kvstore.StoreErrorUnknown, key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("name = ?", key).Delete(&Slot{}).Error
	if err != nil {
		return kvstore.NewStoreError(kvstore.StoreErrorUnknown, key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
