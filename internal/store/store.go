// Package store is the persistence accessor shared by every handler. One
// Store wraps the process-wide *gorm.DB.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"airdemo/internal/config"
	"airdemo/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("conflict")
	ErrSlugTaken = fmt.Errorf("%w: slug already in use", ErrConflict)
)

// ErrDuplicateID means a submitted collection repeats a row id.
var ErrDuplicateID = errors.New("duplicate row id")

// ErrStale means a conditional update matched no row.
var ErrStale = errors.New("row changed concurrently")

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) DB() *gorm.DB { return s.db }

// Open connects with the configured driver.
func Open(cfg config.DatabaseConfig, lg *zap.SugaredLogger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.IsSQLite() {
		dialector = sqlite.Open(cfg.URL)
	} else {
		dialector = postgres.Open(cfg.URL)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	if cfg.IsSQLite() {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite serialises writers anyway.
		sqlDB.SetMaxOpenConns(1)
	}
	lg.Infow("database connected", "driver", cfg.Driver)
	return db, nil
}

func AllModels() []interface{} {
	return []interface{}{
		&models.Permission{}, &models.Role{}, &models.User{}, &models.Session{},
		&models.Demo{}, &models.DemoStep{}, &models.DemoTableData{},
		&models.DemoFlowNode{}, &models.DemoFlowEdge{}, &models.DemoPanelConfig{},
		&models.EfficiencyTool{}, &models.AdminInvite{}, &models.AITask{},
	}
}

func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// Transaction runs fn against a Store bound to one transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) with(ctx context.Context) *gorm.DB { return s.db.WithContext(ctx) }

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func conflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

func now() time.Time { return time.Now().UTC() }
