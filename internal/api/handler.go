// Package api is the JSON boundary over the storefront core. No HTML and
// no cookie mechanics live here; sessions travel in the X-Session-ID
// header.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	cartdomain "github.com/bagelworks/storefront/internal/cart/domain"
	catalogapp "github.com/bagelworks/storefront/internal/catalog/application"
	catalogdomain "github.com/bagelworks/storefront/internal/catalog/domain"
	checkoutapp "github.com/bagelworks/storefront/internal/checkout/application"
	checkoutdomain "github.com/bagelworks/storefront/internal/checkout/domain"
	healthapp "github.com/bagelworks/storefront/internal/health/application"
	"github.com/bagelworks/storefront/internal/pricing"
	"github.com/bagelworks/storefront/pkg/tracing"
)

const SessionHeader = "X-Session-ID"

type Catalog interface {
	List(ctx context.Context) ([]catalogdomain.Product, error)
	Get(ctx context.Context, id int64) (catalogdomain.Product, error)
	Lookup(ctx context.Context, ids []int64) (map[int64]catalogdomain.Product, error)
}

type CartStore interface {
	Get(ctx context.Context, sessionID string) (cartdomain.Cart, error)
	Save(ctx context.Context, sessionID string, cart cartdomain.Cart) error
	Clear(ctx context.Context, sessionID string) error
}

type Checkout interface {
	PlaceOrder(ctx context.Context, cart cartdomain.Cart, authorized bool, headers map[string]string, traceparent string) (int64, error)
	OrderDetails(ctx context.Context, id int64) (checkoutdomain.Order, error)
}

type HealthChecker interface {
	Check(ctx context.Context) healthapp.Report
}

type CredentialVerifier interface {
	Verify(username, password string) bool
}

type SessionStore interface {
	Issue(ctx context.Context, username string) (string, error)
	Authenticated(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
}

type IdempotencyGuard interface {
	Key(scope, key string) string
	Seen(ctx context.Context, key string) (bool, error)
}

type VersionInfo struct {
	Application string `json:"application"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type Handler struct {
	log      *slog.Logger
	catalog  Catalog
	carts    CartStore
	checkout Checkout
	health   HealthChecker
	creds    CredentialVerifier
	sessions SessionStore
	idem     IdempotencyGuard
	version  VersionInfo
	tracer   trace.Tracer
}

func NewHandler(log *slog.Logger, catalog Catalog, carts CartStore, checkout Checkout, health HealthChecker, creds CredentialVerifier, sessions SessionStore, idem IdempotencyGuard, version VersionInfo) *Handler {
	return &Handler{
		log:      log,
		catalog:  catalog,
		carts:    carts,
		checkout: checkout,
		health:   health,
		creds:    creds,
		sessions: sessions,
		idem:     idem,
		version:  version,
		tracer:   otel.Tracer("storefront-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/products", h.listProducts)
	r.Get("/products/{productID}", h.productDetails)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Get("/cart", h.cartView)
	r.Post("/cart/add/{productID}", h.addToCart)
	r.Post("/cart/remove/{productID}", h.removeFromCart)
	r.Post("/checkout/place-order", h.placeOrder)
	r.Get("/orders/{orderID}", h.orderDetails)
	r.Get("/health", h.healthCheck)
	r.Get("/version", h.versionInfo)
	return r
}

// session returns the caller's session id, minting one for first-time
// callers. The id is always echoed back so clients can persist it.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) string {
	sid := r.Header.Get(SessionHeader)
	if sid == "" {
		sid = uuid.NewString()
	}
	w.Header().Set(SessionHeader, sid)
	return sid
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		h.storageError(w, "list products", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) productDetails(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	product, err := h.catalog.Get(r.Context(), id)
	if errors.Is(err, catalogapp.ErrProductNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	if err != nil {
		h.storageError(w, "load product", err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if !h.creds.Verify(req.Username, req.Password) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}
	sid, err := h.sessions.Issue(r.Context(), req.Username)
	if err != nil {
		h.storageError(w, "issue session", err)
		return
	}
	w.Header().Set(SessionHeader, sid)
	writeJSON(w, http.StatusOK, map[string]string{"session_id": sid})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if sid := r.Header.Get(SessionHeader); sid != "" {
		if err := h.sessions.Revoke(r.Context(), sid); err != nil {
			h.storageError(w, "revoke session", err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cartView(w http.ResponseWriter, r *http.Request) {
	sid := h.session(w, r)
	cart, err := h.carts.Get(r.Context(), sid)
	if err != nil {
		h.storageError(w, "load cart", err)
		return
	}

	entries := cart.Items()
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProductID)
	}
	products, err := h.catalog.Lookup(r.Context(), ids)
	if err != nil {
		h.storageError(w, "lookup products", err)
		return
	}

	lines, total := pricing.Price(entries, products)
	writeJSON(w, http.StatusOK, map[string]any{"items": lines, "total": total})
}

type addToCartReq struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	req := addToCartReq{Quantity: 1}
	if r.Body != nil {
		// Body is optional; a bare POST adds one unit.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	sid := h.session(w, r)
	cart, err := h.carts.Get(r.Context(), sid)
	if err != nil {
		h.storageError(w, "load cart", err)
		return
	}
	cart.Add(productID, req.Quantity)
	if err := h.carts.Save(r.Context(), sid, cart); err != nil {
		h.storageError(w, "save cart", err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	sid := h.session(w, r)
	cart, err := h.carts.Get(r.Context(), sid)
	if err != nil {
		h.storageError(w, "load cart", err)
		return
	}
	cart.Remove(productID)
	if err := h.carts.Save(r.Context(), sid, cart); err != nil {
		h.storageError(w, "save cart", err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PlaceOrder")
	defer span.End()

	if key := r.Header.Get("Idempotency-Key"); key != "" {
		seen, err := h.idem.Seen(ctx, h.idem.Key("place-order", key))
		if err != nil {
			h.storageError(w, "idempotency check", err)
			return
		}
		if seen {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "duplicate request"})
			return
		}
	}

	sid := h.session(w, r)
	authorized, err := h.sessions.Authenticated(ctx, sid)
	if err != nil {
		h.storageError(w, "session check", err)
		return
	}
	cart, err := h.carts.Get(ctx, sid)
	if err != nil {
		h.storageError(w, "load cart", err)
		return
	}

	traceparent := r.Header.Get(tracing.TraceparentHeader)
	if traceparent == "" {
		traceparent = tracing.Traceparent(ctx)
	}
	headers := map[string]string{"source": "storefront"}

	orderID, err := h.checkout.PlaceOrder(ctx, cart, authorized, headers, traceparent)
	if err != nil {
		h.checkoutError(w, err)
		return
	}

	// The cart belongs to the caller side of the checkout contract, so
	// clearing it here, after the commit, is our job. A failed clear
	// leaves a stale cart, never a broken order.
	if err := h.carts.Clear(ctx, sid); err != nil {
		h.log.Error("cart clear after checkout failed", "session", sid, "err", err)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"order_id": orderID,
		"status":   checkoutdomain.StatusPending,
	})
}

func (h *Handler) orderDetails(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	order, err := h.checkout.OrderDetails(r.Context(), id)
	if errors.Is(err, checkoutapp.ErrOrderNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	if err != nil {
		h.storageError(w, "load order", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// healthCheck maps the verifier's tri-state onto distinct status codes so
// deployment gates can tell "still migrating" from "totally broken".
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := h.health.Check(r.Context())

	code := http.StatusOK
	switch report.Status {
	case healthapp.StatusDegraded:
		code = http.StatusServiceUnavailable
	case healthapp.StatusUnhealthy:
		code = http.StatusInternalServerError
	}
	writeJSON(w, code, report)
}

func (h *Handler) versionInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.version)
}

func (h *Handler) checkoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkoutapp.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
	case errors.Is(err, checkoutapp.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cart is empty"})
	case errors.Is(err, checkoutapp.ErrInsufficientStock):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "insufficient stock"})
	default:
		// Storage detail stays in the logs; callers get a generic failure.
		h.log.Error("checkout failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "checkout failed"})
	}
}

func (h *Handler) storageError(w http.ResponseWriter, op string, err error) {
	h.log.Error(op+" failed", "err", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
