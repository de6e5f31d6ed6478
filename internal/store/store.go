package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/agriassist-cli/internal/utils"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound reports a farm profile that does not exist.
var ErrNotFound = errors.New("farm profile not found")

// Store persists farm profiles and advisory logs.
type Store struct {
	db *gorm.DB
}

// Open connects to the database and migrates the schema. driver is sqlite or
// postgres; for sqlite the DSN is a file path (parent dirs are created) or an
// in-memory DSN.
func Open(driver, dsn string, logger *slog.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite", "":
		if !strings.HasPrefix(dsn, "file:") && !strings.Contains(dsn, ":memory:") {
			if err := utils.EnsureDir(filepath.Dir(dsn)); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	gl := gormlogger.Discard
	if logger != nil {
		gl = newGormLogger(logger, time.Second)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gl})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if err := db.AutoMigrate(&FarmProfile{}, &AdvisoryLog{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// CreateFarm inserts p and fills its ID.
func (s *Store) CreateFarm(ctx context.Context, p *FarmProfile) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create farm profile: %w", err)
	}
	return nil
}

// ListFarms returns all farm profiles ordered by id.
func (s *Store) ListFarms(ctx context.Context) ([]FarmProfile, error) {
	var out []FarmProfile
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list farm profiles: %w", err)
	}
	return out, nil
}

// GetFarm returns the profile with id or ErrNotFound.
func (s *Store) GetFarm(ctx context.Context, id uint) (*FarmProfile, error) {
	return getFarm(s.db.WithContext(ctx), id)
}

func getFarm(db *gorm.DB, id uint) (*FarmProfile, error) {
	var p FarmProfile
	if err := db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get farm profile %d: %w", id, err)
	}
	return &p, nil
}

// AddAdvisories stores messages under category for farmID in one transaction.
func (s *Store) AddAdvisories(ctx context.Context, farmID uint, category string, messages []string) ([]AdvisoryLog, error) {
	if !ValidCategory(category) {
		return nil, fmt.Errorf("unknown advisory category %q", category)
	}
	if len(messages) == 0 {
		return nil, nil
	}
	logs := make([]AdvisoryLog, len(messages))
	for i, m := range messages {
		logs[i] = AdvisoryLog{FarmID: farmID, AdvisoryType: category, Message: m}
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getFarm(tx, farmID); err != nil {
			return err
		}
		return tx.Create(&logs).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("store %s advisories: %w", category, err)
	}
	return logs, nil
}

// ListAdvisories returns the advisories of farmID, oldest first. An empty
// category returns all of them.
func (s *Store) ListAdvisories(ctx context.Context, farmID uint, category string) ([]AdvisoryLog, error) {
	db := s.db.WithContext(ctx)
	if _, err := getFarm(db, farmID); err != nil {
		return nil, err
	}
	q := db.Where("farm_id = ?", farmID)
	if category != "" {
		q = q.Where("advisory_type = ?", category)
	}
	var out []AdvisoryLog
	if err := q.Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list advisories: %w", err)
	}
	return out, nil
}
