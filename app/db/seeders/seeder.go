package seeders

import (
	"fmt"
	"log"

	"github.com/ostapdev/go-shop/app/configs"
	"github.com/ostapdev/go-shop/app/db/fakers"
	"github.com/ostapdev/go-shop/app/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	seedCategories        = 3
	seedProductsPerBucket = 5
)

// DBSeed fills a fresh database with the admin account and a small fake
// catalog. Re-running it is safe: the admin is looked up first and faked
// rows just accumulate.
func DBSeed(db *gorm.DB, env configs.ENV) error {
	if err := seedAdmin(db, env); err != nil {
		return err
	}

	for i := 0; i < seedCategories; i++ {
		category := fakers.CategoryFaker()
		if err := db.Create(category).Error; err != nil {
			return fmt.Errorf("failed to seed category: %w", err)
		}
		for j := 0; j < seedProductsPerBucket; j++ {
			if err := db.Create(fakers.ProductFaker(category)).Error; err != nil {
				return fmt.Errorf("failed to seed product: %w", err)
			}
		}
	}
	return nil
}

func seedAdmin(db *gorm.DB, env configs.ENV) error {
	if env.AdminEmail == "" || env.AdminPassword == "" {
		log.Println("Seeder: ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var existing models.User
	err := db.First(&existing, "email = ?", env.AdminEmail).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(env.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	hashed := string(hash)
	email := env.AdminEmail

	admin := models.User{
		Name:     "Administrator",
		Email:    &email,
		Password: &hashed,
		Role:     models.RoleAdmin,
		AuthMethods: []models.AuthMethod{
			{Name: models.AuthFlowBasic},
		},
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		return tx.Create(&models.Favourites{UserID: admin.ID}).Error
	})
}
