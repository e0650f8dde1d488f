package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/authfront-dev/authfront/internal/models"
)

// SQLiteStore implements CookieStore on a local SQLite file, for hosts
// without a usable OS keyring (CI runners, containers)
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLiteStore opens (and migrates) the cookie database at path. The file
// holds session cookies in clear, so it is kept readable by the owner only.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create cookie store directory: %w", err)
		}
	}

	// Create the file with owner-only permissions before the driver does
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie store: %w", err)
	}
	f.Close()
	if err := os.Chmod(path, 0600); err != nil {
		return nil, fmt.Errorf("failed to restrict cookie store permissions: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie store: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := db.Exec("PRAGMA busy_timeout=5000").Error; err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to configure cookie store: %w", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to migrate cookie store: %w", err)
	}

	return store, nil
}

// SaveCookies replaces every cookie stored for origin
func (s *SQLiteStore) SaveCookies(origin string, cookies []Cookie) error {
	rows := make([]models.StoredCookie, 0, len(cookies))
	for _, c := range cookies {
		path := c.Path
		if path == "" {
			path = "/"
		}
		rows = append(rows, models.StoredCookie{
			Origin:   origin,
			Name:     c.Name,
			Value:    c.Value,
			Path:     path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("origin = ?", origin).Delete(&models.StoredCookie{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadCookies returns the unexpired cookies stored for origin
func (s *SQLiteStore) LoadCookies(origin string) ([]Cookie, error) {
	rows, err := models.FindByOrigin(s.db, origin)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	now := time.Now()
	cookies := make([]Cookie, 0, len(rows))
	for _, row := range rows {
		if row.Expired(now) {
			continue
		}
		cookies = append(cookies, Cookie{
			Name:     row.Name,
			Value:    row.Value,
			Path:     row.Path,
			Domain:   row.Domain,
			Expires:  row.Expires,
			Secure:   row.Secure,
			HttpOnly: row.HttpOnly,
		})
	}
	return cookies, nil
}

// DeleteCookies removes every cookie stored for origin
func (s *SQLiteStore) DeleteCookies(origin string) error {
	if err := s.db.Where("origin = ?", origin).Delete(&models.StoredCookie{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
