package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"demo/shop/internal/httpapi"
	"demo/shop/internal/model"
	"demo/shop/internal/service"
	"demo/shop/internal/store"
	"demo/shop/internal/token"
)

// fakeRepo is an in-memory store.Repository for surface-level tests.
type fakeRepo struct {
	mu       sync.Mutex
	users    map[int64]model.User
	products map[int64]model.Product
	orders   map[int64]model.Order
	lines    map[[2]int64]int
	nextID   int64
}

var _ store.Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    map[int64]model.User{},
		products: map[int64]model.Product{},
		orders:   map[int64]model.Order{},
		lines:    map[[2]int64]int{},
	}
}

func (f *fakeRepo) next() int64 { f.nextID++; return f.nextID }

func (f *fakeRepo) CreateUser(_ context.Context, username, passwordHash string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return model.User{}, fmt.Errorf("%w: username %q", model.ErrDuplicate, username)
		}
	}
	u := model.User{ID: f.next(), Username: username, PasswordHash: passwordHash}
	f.users[u.ID] = u
	return model.User{ID: u.ID, Username: u.Username}, nil
}

func (f *fakeRepo) GetUserByUsername(_ context.Context, username string) (model.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return u, true, nil
		}
	}
	return model.User{}, false, nil
}

func (f *fakeRepo) CreateProduct(_ context.Context, p model.Product) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.next()
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeRepo) ListProducts(_ context.Context) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Product{}
	for id := int64(1); id <= f.nextID; id++ {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetProduct(_ context.Context, id int64) (model.Product, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	return p, ok, nil
}

func (f *fakeRepo) CreateOrder(_ context.Context, date string, note *string, ownerID int64) (model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[ownerID]; !ok {
		return model.Order{}, fmt.Errorf("%w: user %d", model.ErrInvalidReference, ownerID)
	}
	o := model.Order{ID: f.next(), Date: date, Note: note, UserID: ownerID}
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeRepo) GetOrder(_ context.Context, id int64) (model.Order, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	return o, ok, nil
}

func (f *fakeRepo) ListOrdersByOwner(_ context.Context, ownerID int64) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Order{}
	for id := int64(1); id <= f.nextID; id++ {
		if o, ok := f.orders[id]; ok && o.UserID == ownerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeRepo) AddOrderLine(_ context.Context, orderID, productID int64, quantity int) (model.OrderLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[orderID]; !ok {
		return model.OrderLine{}, fmt.Errorf("%w: order %d", model.ErrInvalidReference, orderID)
	}
	if _, ok := f.products[productID]; !ok {
		return model.OrderLine{}, fmt.Errorf("%w: product %d", model.ErrInvalidReference, productID)
	}
	f.lines[[2]int64{orderID, productID}] = quantity
	return model.OrderLine{OrderID: orderID, ProductID: productID, Quantity: quantity}, nil
}

func (f *fakeRepo) ListOrderProducts(_ context.Context, orderID int64) ([]model.OrderProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.OrderProduct{}
	for id := int64(1); id <= f.nextID; id++ {
		if qty, ok := f.lines[[2]int64{orderID, id}]; ok {
			p := f.products[id]
			out = append(out, model.OrderProduct{
				ID: p.ID, Title: p.Title, Description: p.Description, Price: p.Price, Quantity: qty,
			})
		}
	}
	return out, nil
}

func (f *fakeRepo) ListOrdersByOwnerAndProduct(_ context.Context, ownerID, productID int64) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Order{}
	for id := int64(1); id <= f.nextID; id++ {
		o, ok := f.orders[id]
		if !ok || o.UserID != ownerID {
			continue
		}
		if _, ok := f.lines[[2]int64{o.ID, productID}]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func newTestAPI(t *testing.T) (http.Handler, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	svc := service.New(repo, nil)
	tokens := token.New([]byte("test-secret"), time.Hour)
	return httpapi.New(svc, tokens, zerolog.Nop()), repo
}

func do(t *testing.T, h http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func extractToken(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Regexp(t, `^[\w-]+\.[\w-]+\.[\w-]+$`, resp.Token)
	return resp.Token
}

func seedProducts(t *testing.T, repo *fakeRepo, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		_, err := repo.CreateProduct(context.Background(), model.Product{
			Title:       fmt.Sprintf("Product %d", i),
			Description: "test product",
			Price:       decimal.NewFromFloat(9.99),
		})
		require.NoError(t, err)
	}
}

func TestUserFlow(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := do(t, h, http.MethodPost, "/users/register", "", map[string]string{
		"username": "a", "password": "pw1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	extractToken(t, rec)

	rec = do(t, h, http.MethodPost, "/users/register", "", map[string]string{
		"username": "a", "password": "other",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/users/login", "", map[string]string{
		"username": "a", "password": "pw2",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/users/login", "", map[string]string{
		"username": "nobody", "password": "pw1",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/users/login", "", map[string]string{
		"username": "a", "password": "pw1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	extractToken(t, rec)
}

func TestOrderFlow(t *testing.T) {
	h, repo := newTestAPI(t)
	seedProducts(t, repo, 3)

	rec := do(t, h, http.MethodPost, "/users/register", "", map[string]string{
		"username": "a", "password": "pw1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	tok := extractToken(t, rec)

	// Guarded operations without a token.
	require.Equal(t, http.StatusUnauthorized,
		do(t, h, http.MethodPost, "/orders", "", map[string]string{"date": "2024-01-01"}).Code)
	require.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/orders", "", nil).Code)

	// Missing date.
	require.Equal(t, http.StatusBadRequest,
		do(t, h, http.MethodPost, "/orders", tok, map[string]string{}).Code)

	rec = do(t, h, http.MethodPost, "/orders", tok, map[string]string{"date": "2024-01-01"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var order model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	require.Equal(t, "2024-01-01", order.Date)

	// The order owner matches the identity bound into the token.
	tokenUserID, err := token.New([]byte("test-secret"), time.Hour).Verify(tok)
	require.NoError(t, err)
	require.Equal(t, tokenUserID, order.UserID)

	rec = do(t, h, http.MethodGet, "/orders", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	require.Equal(t, order.ID, orders[0].ID)

	// Add product 3 at quantity 2, then read it back.
	rec = do(t, h, http.MethodPost, fmt.Sprintf("/orders/%d/products", order.ID), tok,
		map[string]any{"productId": 3, "quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code)
	var line model.OrderLine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &line))
	require.Equal(t, model.OrderLine{OrderID: order.ID, ProductID: 3, Quantity: 2}, line)

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/orders/%d/products", order.ID), tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var contents []model.OrderProduct
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contents))
	require.Len(t, contents, 1)
	require.Equal(t, int64(3), contents[0].ID)
	require.Equal(t, 2, contents[0].Quantity)

	// Missing fields and bad references.
	require.Equal(t, http.StatusBadRequest,
		do(t, h, http.MethodPost, fmt.Sprintf("/orders/%d/products", order.ID), tok,
			map[string]any{"productId": 3}).Code)
	require.Equal(t, http.StatusBadRequest,
		do(t, h, http.MethodPost, fmt.Sprintf("/orders/%d/products", order.ID), tok,
			map[string]any{"productId": 999, "quantity": 1}).Code)
	require.Equal(t, http.StatusNotFound,
		do(t, h, http.MethodPost, fmt.Sprintf("/orders/%d/products", order.ID+999999), tok,
			map[string]any{"productId": 3, "quantity": 1}).Code)
}

func TestOrderOwnership(t *testing.T) {
	h, repo := newTestAPI(t)
	seedProducts(t, repo, 1)

	tokA := extractToken(t, do(t, h, http.MethodPost, "/users/register", "",
		map[string]string{"username": "a", "password": "pw1"}))
	tokB := extractToken(t, do(t, h, http.MethodPost, "/users/register", "",
		map[string]string{"username": "b", "password": "pw2"}))

	rec := do(t, h, http.MethodPost, "/orders", tokA, map[string]string{"date": "2024-01-01"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var order model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))

	// Owner sees it; the other user gets 403; a missing id gets 404.
	require.Equal(t, http.StatusOK,
		do(t, h, http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), tokA, nil).Code)
	require.Equal(t, http.StatusForbidden,
		do(t, h, http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), tokB, nil).Code)
	require.Equal(t, http.StatusNotFound,
		do(t, h, http.MethodGet, fmt.Sprintf("/orders/%d", order.ID+999999), tokB, nil).Code)

	// The other user's order list stays empty.
	rec = do(t, h, http.MethodGet, "/orders", tokB, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Empty(t, orders)
}

func TestProducts(t *testing.T) {
	h, repo := newTestAPI(t)
	seedProducts(t, repo, 2)

	rec := do(t, h, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var products []model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 2)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/products/1", "", nil).Code)
	require.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/products/999", "", nil).Code)
	require.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/products/abc", "", nil).Code)
}

func TestProductOrders(t *testing.T) {
	h, repo := newTestAPI(t)
	seedProducts(t, repo, 2)

	tokA := extractToken(t, do(t, h, http.MethodPost, "/users/register", "",
		map[string]string{"username": "a", "password": "pw1"}))
	tokB := extractToken(t, do(t, h, http.MethodPost, "/users/register", "",
		map[string]string{"username": "b", "password": "pw2"}))

	// Missing product wins over missing identity.
	require.Equal(t, http.StatusNotFound,
		do(t, h, http.MethodGet, "/products/999/orders", "", nil).Code)
	// Existing product, anonymous caller.
	require.Equal(t, http.StatusUnauthorized,
		do(t, h, http.MethodGet, "/products/1/orders", "", nil).Code)

	// Both users order product 1; each sees only their own order.
	for _, tok := range []string{tokA, tokB} {
		rec := do(t, h, http.MethodPost, "/orders", tok, map[string]string{"date": "2024-01-01"})
		require.Equal(t, http.StatusCreated, rec.Code)
		var order model.Order
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
		require.Equal(t, http.StatusCreated,
			do(t, h, http.MethodPost, fmt.Sprintf("/orders/%d/products", order.ID), tok,
				map[string]any{"productId": 1, "quantity": 1}).Code)
	}

	rec := do(t, h, http.MethodGet, "/products/1/orders", tokA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)

	// Product 2 was never ordered.
	rec = do(t, h, http.MethodGet, "/products/2/orders", tokA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Empty(t, orders)
}

func TestInvalidTokenIsUnauthorized(t *testing.T) {
	h, _ := newTestAPI(t)

	require.Equal(t, http.StatusUnauthorized,
		do(t, h, http.MethodGet, "/orders", "not-a-real-token", nil).Code)

	// A token signed with a different secret.
	foreign, err := token.New([]byte("other-secret"), time.Hour).Issue(1)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized,
		do(t, h, http.MethodGet, "/orders", foreign, nil).Code)
}
