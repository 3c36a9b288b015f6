package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"demo/shop/internal/events"
	"demo/shop/internal/model"
	"demo/shop/internal/store"
	"demo/shop/internal/validate"
)

// Service holds the business rules: credential handling, ownership
// enforcement, and the order/product association. It never sees HTTP
// status codes; every failure is a typed domain error.
type Service struct {
	repo store.Repository
	pub  *events.Publisher
}

func New(repo store.Repository, pub *events.Publisher) *Service {
	return &Service{repo: repo, pub: pub}
}

// Register creates an account. The plaintext password exists only long
// enough to be hashed.
func (s *Service) Register(ctx context.Context, username, password string) (model.User, error) {
	if err := validate.Credentials(username, password); err != nil {
		return model.User{}, model.Invalid(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.CreateUser(ctx, username, string(hash))
}

// Login verifies credentials. Unknown username and wrong password are
// deliberately indistinguishable.
func (s *Service) Login(ctx context.Context, username, password string) (model.User, error) {
	u, ok, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, model.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return model.User{}, model.ErrInvalidCredentials
	}
	u.PasswordHash = ""
	return u, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	p, ok, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	if !ok {
		return model.Product{}, fmt.Errorf("%w: product %d", model.ErrNotFound, id)
	}
	return p, nil
}

func (s *Service) PlaceOrder(ctx context.Context, callerID int64, date string, note *string) (model.Order, error) {
	if err := validate.NewOrder(date); err != nil {
		return model.Order{}, model.Invalid(err.Error())
	}

	o, err := s.repo.CreateOrder(ctx, date, note, callerID)
	if err != nil {
		return model.Order{}, err
	}
	s.pub.OrderCreated(ctx, o)
	return o, nil
}

func (s *Service) ListOrders(ctx context.Context, callerID int64) ([]model.Order, error) {
	return s.repo.ListOrdersByOwner(ctx, callerID)
}

// GetOrder checks existence before ownership: a nonexistent id is
// NotFound even for a caller who would not own it, and a foreign order
// is Forbidden.
func (s *Service) GetOrder(ctx context.Context, callerID, orderID int64) (model.Order, error) {
	return s.ownedOrder(ctx, callerID, orderID)
}

// AddProductToOrder attaches a product to a caller-owned order. A
// missing product is an invalid reference (client input), not a missing
// addressed resource; only the order id is addressed here.
func (s *Service) AddProductToOrder(ctx context.Context, callerID, orderID, productID int64, quantity int) (model.OrderLine, error) {
	if err := validate.OrderLine(productID, quantity); err != nil {
		return model.OrderLine{}, model.Invalid(err.Error())
	}

	if _, err := s.ownedOrder(ctx, callerID, orderID); err != nil {
		return model.OrderLine{}, err
	}

	_, ok, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return model.OrderLine{}, err
	}
	if !ok {
		return model.OrderLine{}, fmt.Errorf("%w: product %d", model.ErrInvalidReference, productID)
	}

	l, err := s.repo.AddOrderLine(ctx, orderID, productID, quantity)
	if err != nil {
		return model.OrderLine{}, err
	}
	s.pub.ProductAdded(ctx, l)
	return l, nil
}

func (s *Service) ListOrderProducts(ctx context.Context, callerID, orderID int64) ([]model.OrderProduct, error) {
	if _, err := s.ownedOrder(ctx, callerID, orderID); err != nil {
		return nil, err
	}
	return s.repo.ListOrderProducts(ctx, orderID)
}

// ListOrdersForProduct resolves the product before looking at the
// caller: product existence is not ownership-sensitive, so an absent
// product is NotFound even for anonymous callers, and only then does
// a missing identity become Unauthenticated.
func (s *Service) ListOrdersForProduct(ctx context.Context, callerID, productID int64) ([]model.Order, error) {
	_, ok, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: product %d", model.ErrNotFound, productID)
	}
	if callerID <= 0 {
		return nil, model.ErrUnauthenticated
	}
	return s.repo.ListOrdersByOwnerAndProduct(ctx, callerID, productID)
}

func (s *Service) ownedOrder(ctx context.Context, callerID, orderID int64) (model.Order, error) {
	o, ok, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	if !ok {
		return model.Order{}, fmt.Errorf("%w: order %d", model.ErrNotFound, orderID)
	}
	if o.UserID != callerID {
		return model.Order{}, model.ErrForbidden
	}
	return o, nil
}
