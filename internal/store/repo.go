package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"demo/shop/internal/model"
)

type Repo struct {
	Pool PgxIface
}

type PgxIface interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ Repository = (*Repo)(nil)

func New(pool PgxIface) *Repo { return &Repo{Pool: pool} }

// classify maps engine constraint failures onto the domain error
// taxonomy so callers never see vendor error codes.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "22P02": // invalid input syntax for type
		return fmt.Errorf("%w: %s", model.ErrMalformedInput, pgErr.Message)
	case "23505": // unique violation
		return fmt.Errorf("%w: %s", model.ErrDuplicate, pgErr.Detail)
	case "23503": // foreign key violation
		return fmt.Errorf("%w: %s", model.ErrInvalidReference, pgErr.Detail)
	}
	return err
}

func (r *Repo) CreateUser(ctx context.Context, username, passwordHash string) (model.User, error) {
	var u model.User
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO users (username, password)
		VALUES ($1, $2)
		RETURNING id, username
	`, username, passwordHash).Scan(&u.ID, &u.Username)
	if err != nil {
		return model.User{}, classify(err)
	}
	return u, nil
}

func (r *Repo) GetUserByUsername(ctx context.Context, username string) (model.User, bool, error) {
	var u model.User
	err := r.Pool.QueryRow(ctx, `
		SELECT id, username, password FROM users WHERE username=$1
	`, username).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, false, nil
		}
		return model.User{}, false, classify(err)
	}
	return u, true, nil
}

func (r *Repo) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO products (title, description, price)
		VALUES ($1, $2, $3)
		RETURNING id
	`, p.Title, p.Description, p.Price).Scan(&p.ID)
	if err != nil {
		return model.Product{}, classify(err)
	}
	return p, nil
}

func (r *Repo) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, title, description, price FROM products ORDER BY id
	`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Price); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetProduct(ctx context.Context, id int64) (model.Product, bool, error) {
	var p model.Product
	err := r.Pool.QueryRow(ctx, `
		SELECT id, title, description, price FROM products WHERE id=$1
	`, id).Scan(&p.ID, &p.Title, &p.Description, &p.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, false, nil
		}
		return model.Product{}, false, classify(err)
	}
	return p, true, nil
}

func (r *Repo) CreateOrder(ctx context.Context, date string, note *string, ownerID int64) (model.Order, error) {
	var o model.Order
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO orders (date, note, user_id)
		VALUES ($1::date, $2, $3)
		RETURNING id, date::text, note, user_id
	`, date, note, ownerID).Scan(&o.ID, &o.Date, &o.Note, &o.UserID)
	if err != nil {
		return model.Order{}, classify(err)
	}
	return o, nil
}

func (r *Repo) GetOrder(ctx context.Context, id int64) (model.Order, bool, error) {
	var o model.Order
	err := r.Pool.QueryRow(ctx, `
		SELECT id, date::text, note, user_id FROM orders WHERE id=$1
	`, id).Scan(&o.ID, &o.Date, &o.Note, &o.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, false, nil
		}
		return model.Order{}, false, classify(err)
	}
	return o, true, nil
}

func (r *Repo) ListOrdersByOwner(ctx context.Context, ownerID int64) ([]model.Order, error) {
	return r.queryOrders(ctx, `
		SELECT id, date::text, note, user_id FROM orders WHERE user_id=$1 ORDER BY id
	`, ownerID)
}

// AddOrderLine inserts the association or, when the (order, product)
// pair already exists, replaces its quantity. The statement is a single
// conditional write, so the referential check and the upsert are atomic.
func (r *Repo) AddOrderLine(ctx context.Context, orderID, productID int64, quantity int) (model.OrderLine, error) {
	var l model.OrderLine
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO orders_products (order_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
		RETURNING order_id, product_id, quantity
	`, orderID, productID, quantity).Scan(&l.OrderID, &l.ProductID, &l.Quantity)
	if err != nil {
		return model.OrderLine{}, classify(err)
	}
	return l, nil
}

func (r *Repo) ListOrderProducts(ctx context.Context, orderID int64) ([]model.OrderProduct, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT p.id, p.title, p.description, p.price, op.quantity
		FROM orders_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id=$1
		ORDER BY p.id
	`, orderID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []model.OrderProduct{}
	for rows.Next() {
		var op model.OrderProduct
		if err := rows.Scan(&op.ID, &op.Title, &op.Description, &op.Price, &op.Quantity); err != nil {
			return nil, err
		}
		out = append(out, op)
	}
	return out, rows.Err()
}

func (r *Repo) ListOrdersByOwnerAndProduct(ctx context.Context, ownerID, productID int64) ([]model.Order, error) {
	return r.queryOrders(ctx, `
		SELECT o.id, o.date::text, o.note, o.user_id
		FROM orders o
		JOIN orders_products op ON op.order_id = o.id
		WHERE o.user_id=$1 AND op.product_id=$2
		ORDER BY o.id
	`, ownerID, productID)
}

func (r *Repo) queryOrders(ctx context.Context, sql string, args ...any) ([]model.Order, error) {
	rows, err := r.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []model.Order{}
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.Date, &o.Note, &o.UserID); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
