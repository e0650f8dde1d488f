package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// StoredCookie is one backend cookie persisted between CLI runs.
// Rows are scoped by Origin (scheme://host[:port] of the backend).
type StoredCookie struct {
	BaseModel
	Origin   string     `json:"origin" gorm:"type:varchar(255);not null;index:idx_stored_cookies_key,unique"`
	Name     string     `json:"name" gorm:"type:varchar(255);not null;index:idx_stored_cookies_key,unique"`
	Value    string     `json:"-" gorm:"type:text;not null"`
	Path     string     `json:"path" gorm:"type:varchar(255);not null;default:'/';index:idx_stored_cookies_key,unique"`
	Domain   string     `json:"domain" gorm:"type:varchar(255)"`
	Expires  *time.Time `json:"expires"`
	Secure   bool       `json:"secure" gorm:"not null;default:false"`
	HttpOnly bool       `json:"http_only" gorm:"not null;default:false"`
}

// Expired reports whether the cookie carried an expiry that has passed
func (c *StoredCookie) Expired(now time.Time) bool {
	return c.Expires != nil && !c.Expires.After(now)
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&StoredCookie{},
	}

	return db.AutoMigrate(models...)
}

// FindByOrigin returns every cookie stored for origin, ordered by name
func FindByOrigin(db *gorm.DB, origin string) ([]StoredCookie, error) {
	var cookies []StoredCookie
	err := db.Where("origin = ?", origin).Order("name ASC").Find(&cookies).Error
	return cookies, err
}
