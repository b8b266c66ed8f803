package fakers

import (
	"math/rand"

	"github.com/go-faker/faker/v4"
	"github.com/ostapdev/go-shop/app/models"
	"github.com/ostapdev/go-shop/app/utils/slug"
	"github.com/shopspring/decimal"
)

func CategoryFaker() *models.Category {
	name := faker.Word() + " " + faker.Word()
	return &models.Category{
		Name:  name,
		Slug:  slug.Make(name),
		Image: models.PlaceholderImage,
	}
}

func ProductFaker(category *models.Category) *models.Product {
	return &models.Product{
		Title:       faker.Sentence(),
		Description: faker.Paragraph(),
		Price:       decimal.NewFromInt(int64(rand.Intn(9900) + 100)).Div(decimal.NewFromInt(10)),
		Image:       models.PlaceholderImage,
		CategoryID:  category.ID,
	}
}
