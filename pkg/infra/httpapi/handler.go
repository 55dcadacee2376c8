// Package httpapi exposes a canteen session over JSON HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sokoide/workshop/software/canteen/pkg/domain"
	"github.com/sokoide/workshop/software/canteen/pkg/infra/metrics"
	"github.com/sokoide/workshop/software/canteen/pkg/usecase"
)

// OrderSession is what the API drives; *usecase.Session implements it.
type OrderSession interface {
	AddItem(ctx context.Context, id domain.ItemID) error
	RemoveItem(ctx context.Context, id domain.ItemID) error
	Checkout(ctx context.Context) (domain.Order, error)
	Pay(ctx context.Context) (domain.Order, error)
	Cancel(ctx context.Context) (domain.Order, error)
	Cart() usecase.CartView
	Pending() (usecase.PendingView, bool)
	History(ctx context.Context) ([]domain.Order, error)
	Catalog(ctx context.Context) ([]domain.CatalogItem, error)
}

// BestsellerSource ranks menu items by units sold.
type BestsellerSource interface {
	Top(ctx context.Context, n int64) ([]domain.ItemSales, error)
}

type Handler struct {
	session     OrderSession
	bestsellers BestsellerSource
	logger      *zap.Logger
	metrics     *metrics.HTTPMetrics
}

func New(session OrderSession, logger *zap.Logger, m *metrics.HTTPMetrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{session: session, logger: logger, metrics: m}
}

// WithBestsellers enables GET /catalog/bestsellers.
func (h *Handler) WithBestsellers(b BestsellerSource) *Handler {
	h.bestsellers = b
	return h
}

type ErrorResponse struct {
	Error   string        `json:"error"`
	Message string        `json:"message,omitempty"`
	Order   *domain.Order `json:"order,omitempty"`
}

// Routes mounts the API. gatherer backs /metrics and may be nil.
func (h *Handler) Routes(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/catalog", h.GetCatalog)
	if h.bestsellers != nil {
		r.Get("/catalog/bestsellers", h.GetBestsellers)
	}
	r.Get("/cart", h.GetCart)
	r.Post("/cart/items/{id}", h.AddItem)
	r.Delete("/cart/items/{id}", h.RemoveItem)
	r.Post("/checkout", h.Checkout)
	r.Get("/order", h.GetPendingOrder)
	r.Post("/order/pay", h.Pay)
	r.Post("/order/cancel", h.Cancel)
	r.Get("/orders", h.ListOrders)
	r.Get("/health", h.HealthCheck)
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func statusFor(code string) int {
	switch code {
	case "NOT_FOUND", "NO_PENDING_ORDER":
		return http.StatusNotFound
	case "INSUFFICIENT_STOCK", "ORDER_ALREADY_PENDING":
		return http.StatusConflict
	case "EMPTY_CART":
		return http.StatusUnprocessableEntity
	case "ORDER_EXPIRED":
		return http.StatusGone
	case "INVALID_QUANTITY":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error, order *domain.Order) {
	code := domain.Code(err)
	status := statusFor(code)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
		code, msg = "INTERNAL", "internal error"
	}
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg, Order: order})
}

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	items, err := h.session.Catalog(r.Context())
	if err != nil {
		h.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) GetBestsellers(w http.ResponseWriter, r *http.Request) {
	n := int64(5)
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed < 1 {
			h.writeError(w, fmt.Errorf("%w: n=%q", domain.ErrInvalidQuantity, v), nil)
			return
		}
		n = parsed
	}
	top, err := h.bestsellers.Top(r.Context(), n)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Cart())
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	id := domain.ItemID(chi.URLParam(r, "id"))
	if err := h.session.AddItem(r.Context(), id); err != nil {
		h.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, h.session.Cart())
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := domain.ItemID(chi.URLParam(r, "id"))
	if err := h.session.RemoveItem(r.Context(), id); err != nil {
		h.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, h.session.Cart())
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	order, err := h.session.Checkout(r.Context())
	if err != nil {
		h.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) GetPendingOrder(w http.ResponseWriter, r *http.Request) {
	view, ok := h.session.Pending()
	if !ok {
		h.writeError(w, domain.ErrNoPendingOrder, nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.session.Pay)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.session.Cancel)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, act func(context.Context) (domain.Order, error)) {
	order, err := act(r.Context())
	if err != nil {
		var resolved *domain.Order
		if order.Status.IsTerminal() {
			resolved = &order
		}
		h.writeError(w, err, resolved)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.session.History(r.Context())
	if err != nil {
		h.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		if h.metrics != nil {
			h.metrics.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		}
		h.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
