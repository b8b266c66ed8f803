package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Favourites is the per-user favourites record, created together with the
// user. Products are attached through a join table, no duplicates, no order.
type Favourites struct {
	ID       string    `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	UserID   string    `gorm:"size:36;not null;uniqueIndex" json:"user_id"`
	Products []Product `gorm:"many2many:favourite_products;" json:"products"`
}

func (f *Favourites) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return
}
