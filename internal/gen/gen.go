// Package gen produces fake catalog data for seeding.
package gen

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"demo/shop/internal/model"
)

func SeedOnce() { gofakeit.Seed(time.Now().UnixNano()) }

func FakeProduct() model.Product {
	return model.Product{
		Title:       gofakeit.ProductName(),
		Description: gofakeit.ProductDescription(),
		Price:       decimal.NewFromFloat(gofakeit.Price(1, 200)).Round(2),
	}
}

func FakeProducts(n int) []model.Product {
	out := make([]model.Product, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, FakeProduct())
	}
	return out
}

func FakeUsername() string { return gofakeit.Username() }

// FakeOrderDate returns a recent date in the store's YYYY-MM-DD form.
func FakeOrderDate() string {
	d := gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now())
	return d.Format(time.DateOnly)
}

func FakeQuantity() int { return gofakeit.Number(1, 3) }
