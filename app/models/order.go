package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	OrderStatusIncomplete = "INCOMPLETE"
	OrderStatusPending    = "PENDING"
	OrderStatusComplete   = "COMPLETE"
	OrderStatusCanceled   = "CANCELED"
)

// OrderStatusTerminal reports whether no transition may leave the status.
func OrderStatusTerminal(status string) bool {
	return status == OrderStatusComplete || status == OrderStatusCanceled
}

type Order struct {
	ID     string `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	UserID string `gorm:"size:36;not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`
	Status string `gorm:"size:20;not null;default:'INCOMPLETE';index" json:"status"`

	// ActiveOwner holds the owning user id while the order is INCOMPLETE and
	// is cleared on every transition out of it. The unique index makes the
	// one-cart-per-user rule a database constraint, so concurrent
	// get-or-create requests cannot produce two carts.
	ActiveOwner *string `gorm:"size:36;uniqueIndex" json:"-"`

	Total        decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0" json:"total"`
	PostOfficeID *uint           `gorm:"index" json:"post_office_id,omitempty"`
	PostOffice   *PostOffice     `gorm:"foreignKey:PostOfficeID" json:"post_office,omitempty"`

	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return
}
