package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

const (
	AuthFlowBasic  = "BASIC"
	AuthFlowGoogle = "GOOGLE"
	AuthFlowAuto   = "AUTO"
)

type User struct {
	ID          string  `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Name        string  `gorm:"size:100;not null" json:"name"`
	Email       *string `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	Phone       *string `gorm:"size:20;uniqueIndex" json:"phone,omitempty"`
	Password    *string `gorm:"size:255" json:"-"`
	Role        string  `gorm:"size:20;not null;default:'USER'" json:"role"`
	AuthMethods []AuthMethod
	Favourites  *Favourites
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	DeletedAt   gorm.DeletedAt
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasFlow reports whether the user registered through the given auth method.
func (u *User) HasFlow(name string) bool {
	for _, m := range u.AuthMethods {
		if m.Name == name {
			return true
		}
	}
	return false
}

// AutoOnly reports whether the user was auto-created during guest checkout
// and never claimed the account via a real auth flow.
func (u *User) AutoOnly() bool {
	if len(u.AuthMethods) == 0 {
		return false
	}
	for _, m := range u.AuthMethods {
		if m.Name != AuthFlowAuto {
			return false
		}
	}
	return true
}

type AuthMethod struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID string `gorm:"size:36;not null;index" json:"-"`
	Name   string `gorm:"size:20;not null" json:"name"`
}
