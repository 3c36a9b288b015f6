package store

import (
	"context"

	"demo/shop/internal/model"
)

//go:generate mockgen -source=repository.go -destination=storemock/mock_repository.go -package=storemock

// Repository is the persistence surface used by the service layer.
// Lookups return (zero, false, nil) when the row is absent; constraint
// violations come back already classified as domain errors.
type Repository interface {
	CreateUser(ctx context.Context, username, passwordHash string) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, bool, error)

	CreateProduct(ctx context.Context, p model.Product) (model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (model.Product, bool, error)

	CreateOrder(ctx context.Context, date string, note *string, ownerID int64) (model.Order, error)
	GetOrder(ctx context.Context, id int64) (model.Order, bool, error)
	ListOrdersByOwner(ctx context.Context, ownerID int64) ([]model.Order, error)

	AddOrderLine(ctx context.Context, orderID, productID int64, quantity int) (model.OrderLine, error)
	ListOrderProducts(ctx context.Context, orderID int64) ([]model.OrderProduct, error)
	ListOrdersByOwnerAndProduct(ctx context.Context, ownerID, productID int64) ([]model.Order, error)
}
