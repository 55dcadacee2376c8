package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sokoide/workshop/software/canteen/pkg/domain"
)

// SessionDeps wires a Session to its collaborators. Publisher, Logger and
// Window are optional.
type SessionDeps struct {
	Catalog   domain.CatalogStore
	History   domain.OrderHistory
	Clock     domain.Clock
	Scheduler domain.Scheduler
	IDs       domain.IDGenerator
	Publisher domain.OrderEventPublisher
	Logger    *zap.Logger
	Window    time.Duration
}

// CartView is the cart as shown to the customer.
type CartView struct {
	Lines []domain.CartLine `json:"lines"`
	Total int64             `json:"total"`
}

// PendingView is the order awaiting payment with its countdown.
type PendingView struct {
	Order            domain.Order `json:"order"`
	RemainingSeconds int          `json:"remaining_seconds"`
}

// Session is one customer's cart plus at most one pending order. All
// mutations, including the expiry timer callback, are serialised by mu so
// each order is resolved exactly once.
type Session struct {
	catalog   domain.CatalogStore
	history   domain.OrderHistory
	clock     domain.Clock
	scheduler domain.Scheduler
	ids       domain.IDGenerator
	publisher domain.OrderEventPublisher
	logger    *zap.Logger
	window    time.Duration

	mu          sync.Mutex
	cart        *domain.Cart
	pending     *domain.Order
	timer       domain.Timer
	lastExpired bool
}

func NewSession(deps SessionDeps) *Session {
	s := &Session{
		catalog:   deps.Catalog,
		history:   deps.History,
		clock:     deps.Clock,
		scheduler: deps.Scheduler,
		ids:       deps.IDs,
		publisher: deps.Publisher,
		logger:    deps.Logger,
		window:    deps.Window,
		cart:      domain.NewCart(),
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.window <= 0 {
		s.window = domain.ReservationWindow
	}
	return s
}

// AddItem reserves one more unit of id in the cart.
func (s *Session) AddItem(ctx context.Context, id domain.ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return fmt.Errorf("%w: cart is locked by %s", domain.ErrOrderAlreadyPending, s.pending.ID)
	}
	item, err := s.catalog.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.cart.Add(item); err != nil {
		return err
	}
	s.logger.Debug("item added", zap.String("item_id", string(id)), zap.Int("quantity", s.cart.Quantity(id)))
	return nil
}

// RemoveItem releases one unit of id. Removing an item that is not in the
// cart is a no-op.
func (s *Session) RemoveItem(ctx context.Context, id domain.ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return fmt.Errorf("%w: cart is locked by %s", domain.ErrOrderAlreadyPending, s.pending.ID)
	}
	if s.cart.Remove(id) {
		s.logger.Debug("item removed", zap.String("item_id", string(id)), zap.Int("quantity", s.cart.Quantity(id)))
	}
	return nil
}

// Checkout snapshots the cart into a pending order and arms its expiry
// timer. The cart keeps its lines until the order is resolved.
func (s *Session) Checkout(ctx context.Context) (domain.Order, error) {
	s.mu.Lock()
	if s.pending != nil {
		id := s.pending.ID
		s.mu.Unlock()
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrOrderAlreadyPending, id)
	}
	if s.cart.IsEmpty() {
		s.mu.Unlock()
		return domain.Order{}, domain.ErrEmptyCart
	}

	now := s.clock.Now()
	order := domain.NewOrder(s.ids.GenerateID(), s.cart, now, s.window)
	s.pending = &order
	s.lastExpired = false
	id := order.ID
	s.timer = s.scheduler.AfterFunc(order.ExpiresAt.Sub(now), func() { s.expire(id) })
	created := order.Clone()
	s.mu.Unlock()

	s.logger.Info("order created",
		zap.String("order_id", created.ID),
		zap.Int64("total", created.Total),
		zap.Time("expires_at", created.ExpiresAt))
	s.publish(ctx, domain.OrderEvent{Type: domain.EventOrderCreated, Order: created, OccurredAt: now})
	return created, nil
}

// Pay completes the pending order and commits its stock. When the window
// has closed the order is expired instead and ErrOrderExpired is returned.
// When stock no longer covers the order nothing is decremented, the order
// fails, and the stock error is returned. In both cases the resolved order
// is returned alongside the error.
func (s *Session) Pay(ctx context.Context) (domain.Order, error) {
	s.mu.Lock()
	if s.pending == nil {
		err := s.noPendingErrLocked()
		s.mu.Unlock()
		return domain.Order{}, err
	}
	if s.pending.IsExpiredAt(s.clock.Now()) {
		return s.expireOnAttemptLocked(ctx)
	}

	if err := s.catalog.DecrementStocks(ctx, s.pending.StockChanges()); err != nil {
		if !errors.Is(err, domain.ErrInsufficientStock) && !errors.Is(err, domain.ErrNotFound) {
			// Store unreachable: keep the order pending so payment can be retried.
			id := s.pending.ID
			s.mu.Unlock()
			return domain.Order{}, fmt.Errorf("pay %s: %w", id, err)
		}
		resolved := s.resolveLocked(ctx, domain.OrderStatusFailed, err.Error())
		s.mu.Unlock()
		s.finish(ctx, resolved)
		return resolved, err
	}

	resolved := s.resolveLocked(ctx, domain.OrderStatusCompleted, "")
	s.mu.Unlock()
	s.finish(ctx, resolved)
	return resolved, nil
}

// Cancel abandons the pending order without touching stock.
func (s *Session) Cancel(ctx context.Context) (domain.Order, error) {
	s.mu.Lock()
	if s.pending == nil {
		err := s.noPendingErrLocked()
		s.mu.Unlock()
		return domain.Order{}, err
	}
	if s.pending.IsExpiredAt(s.clock.Now()) {
		return s.expireOnAttemptLocked(ctx)
	}

	resolved := s.resolveLocked(ctx, domain.OrderStatusCancelled, "cancelled by customer")
	s.mu.Unlock()
	s.finish(ctx, resolved)
	return resolved, nil
}

// Cart returns the current cart lines and total.
func (s *Session) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CartView{Lines: s.cart.Lines(), Total: s.cart.Total()}
}

// Pending returns the order awaiting payment, if any.
func (s *Session) Pending() (PendingView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return PendingView{}, false
	}
	return PendingView{
		Order:            s.pending.Clone(),
		RemainingSeconds: s.pending.RemainingSeconds(s.clock.Now()),
	}, true
}

func (s *Session) History(ctx context.Context) ([]domain.Order, error) {
	return s.history.List(ctx)
}

func (s *Session) Catalog(ctx context.Context) ([]domain.CatalogItem, error) {
	return s.catalog.List(ctx)
}

// Close disarms the expiry timer. The pending order, if any, stays pending.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) expire(id string) {
	s.mu.Lock()
	if s.pending == nil || s.pending.ID != id {
		s.mu.Unlock()
		return
	}
	ctx := context.Background()
	resolved := s.resolveLocked(ctx, domain.OrderStatusExpired, "reservation window elapsed")
	s.mu.Unlock()
	s.finish(ctx, resolved)
}

// expireOnAttemptLocked resolves an overdue order found by Pay or Cancel
// before its timer ran. It releases mu.
func (s *Session) expireOnAttemptLocked(ctx context.Context) (domain.Order, error) {
	resolved := s.resolveLocked(ctx, domain.OrderStatusExpired, "reservation window elapsed")
	s.mu.Unlock()
	s.finish(ctx, resolved)
	return resolved, fmt.Errorf("%w: %s expired at %s", domain.ErrOrderExpired, resolved.ID, resolved.ExpiresAt.Format(time.RFC3339))
}

// resolveLocked moves the pending order to status, records it, disarms the
// timer and clears the cart. Callers hold mu.
func (s *Session) resolveLocked(ctx context.Context, status domain.OrderStatus, reason string) domain.Order {
	resolved := s.pending.Resolve(status, reason, s.clock.Now())
	if err := s.history.Append(ctx, resolved); err != nil {
		s.logger.Error("could not record order", zap.String("order_id", resolved.ID), zap.Error(err))
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.cart.Clear()
	s.lastExpired = status == domain.OrderStatusExpired
	return resolved
}

func (s *Session) noPendingErrLocked() error {
	if s.lastExpired {
		return domain.ErrOrderExpired
	}
	return domain.ErrNoPendingOrder
}

func (s *Session) finish(ctx context.Context, resolved domain.Order) {
	fields := []zap.Field{
		zap.String("order_id", resolved.ID),
		zap.String("status", resolved.Status.String()),
		zap.Int64("total", resolved.Total),
	}
	if resolved.Reason != "" {
		fields = append(fields, zap.String("reason", resolved.Reason))
	}
	s.logger.Info("order resolved", fields...)

	at := s.clock.Now()
	if resolved.ResolvedAt != nil {
		at = *resolved.ResolvedAt
	}
	s.publish(ctx, domain.OrderEvent{Type: domain.EventTypeFor(resolved.Status), Order: resolved, OccurredAt: at})
}

func (s *Session) publish(ctx context.Context, event domain.OrderEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("could not publish order event",
			zap.String("type", event.Type),
			zap.String("order_id", event.Order.ID),
			zap.Error(err))
	}
}
