package model

import "github.com/shopspring/decimal"

// User is an account record. PasswordHash never leaves the process.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// Order belongs to exactly one user; ownership never changes.
type Order struct {
	ID     int64   `json:"id"`
	Date   string  `json:"date"` // YYYY-MM-DD
	Note   *string `json:"note"`
	UserID int64   `json:"user_id"`
}

// OrderLine links an order and a product. The (OrderID, ProductID)
// pair is the identity; adding the same product again updates the
// quantity instead of creating a second row.
type OrderLine struct {
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// OrderProduct is the joined view of a line and its product.
type OrderProduct struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}
