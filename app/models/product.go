package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PlaceholderImage replaces the blob reference of archived products so the
// original object can be removed from the bucket.
const PlaceholderImage = "placeholder"

type Product struct {
	ID          string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"price"`
	Image       string          `gorm:"size:255" json:"image"`
	CategoryID  string          `gorm:"size:36;index" json:"category_id"`
	Category    Category        `gorm:"foreignKey:CategoryID" json:"category"`
	IsRemoved   bool            `gorm:"not null;default:false;index" json:"is_removed"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}
