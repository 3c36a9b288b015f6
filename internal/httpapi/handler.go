// Package httpapi exposes the REST surface and owns the mapping from
// domain errors to response codes. Nothing below this package knows
// about HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"demo/shop/internal/model"
	"demo/shop/internal/service"
	"demo/shop/internal/token"
)

type Handler struct {
	svc    *service.Service
	tokens *token.Service
	log    zerolog.Logger
}

// New returns the API router.
func New(svc *service.Service, tokens *token.Service, log zerolog.Logger) http.Handler {
	h := &Handler{svc: svc, tokens: tokens, log: log}

	r := chi.NewRouter()
	r.Use(h.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(h.withIdentity)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/{id}", h.getProduct)
		r.Get("/{id}/orders", h.listProductOrders)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(h.requireUser)
		r.Post("/", h.createOrder)
		r.Get("/", h.listOrders)
		r.Get("/{id}", h.getOrder)
		r.Post("/{id}/products", h.addProduct)
		r.Get("/{id}/products", h.listOrderProducts)
	})

	return r
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, model.Invalid("invalid JSON body"))
		return
	}

	u, err := h.svc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondToken(w, r, http.StatusCreated, u.ID)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, model.Invalid("invalid JSON body"))
		return
	}

	u, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondToken(w, r, http.StatusOK, u.ID)
}

func (h *Handler) respondToken(w http.ResponseWriter, r *http.Request, status int, userID int64) {
	signed, err := h.tokens.Issue(userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, status, map[string]string{"token": signed})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListProducts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) listProductOrders(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	// Identity stays optional here: the service resolves the product
	// before deciding whether authentication is required.
	orders, err := h.svc.ListOrdersForProduct(r.Context(), callerID(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

type createOrderRequest struct {
	Date string  `json:"date"`
	Note *string `json:"note"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, model.Invalid("invalid JSON body"))
		return
	}

	o, err := h.svc.PlaceOrder(r.Context(), callerID(r.Context()), req.Date, req.Note)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context(), callerID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	o, err := h.svc.GetOrder(r.Context(), callerID(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type addProductRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req addProductRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, model.Invalid("invalid JSON body"))
		return
	}

	line, err := h.svc.AddProductToOrder(r.Context(), callerID(r.Context()), id, req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

func (h *Handler) listOrderProducts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	products, err := h.svc.ListOrderProducts(r.Context(), callerID(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmtInvalidID(chi.URLParam(r, "id"))
	}
	return id, nil
}

func fmtInvalidID(raw string) error {
	return model.Invalid("invalid id " + strconv.Quote(raw))
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates the domain error taxonomy into response codes.
// Unclassified errors become an opaque 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case model.IsValidation(err),
		errors.Is(err, model.ErrDuplicate),
		errors.Is(err, model.ErrInvalidReference),
		errors.Is(err, model.ErrMalformedInput):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrUnauthenticated),
		errors.Is(err, model.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, model.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	default:
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
