package migrations

import (
	"github.com/ostapdev/go-shop/app/models"
	"github.com/ostapdev/go-shop/app/utils/slug"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.AuthMethod{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Favourites{},
		&models.Comment{},
		&models.Region{},
		&models.Settlement{},
		&models.PostOffice{},
	); err != nil {
		return err
	}

	return ensureDefaultCategory(db)
}

// ensureDefaultCategory creates the protected bucket category that deleted
// categories hand their products to.
func ensureDefaultCategory(db *gorm.DB) error {
	defaultCategory := models.Category{
		Name:      models.DefaultCategoryName,
		Slug:      slug.Make(models.DefaultCategoryName),
		Immutable: true,
	}
	return db.Where(models.Category{Name: models.DefaultCategoryName}).
		FirstOrCreate(&defaultCategory).Error
}
