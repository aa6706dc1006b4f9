package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// DefaultShippingFee is the flat delivery charge per order.
const DefaultShippingFee = 60.0

// OrderService turns a cart snapshot into an order record. Clearing the cart
// afterwards is the caller's job.
type OrderService struct {
	orders      repository.OrderRepository
	shippingFee float64
	now         func() time.Time
	log         *zap.Logger
}

func NewOrderService(orders repository.OrderRepository, shippingFee float64, log *zap.Logger) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{orders: orders, shippingFee: shippingFee, now: time.Now, log: log}
}

func (s *OrderService) ShippingFee() float64 { return s.shippingFee }

// PlaceOrder records a pending order for items. The items are copied, so later
// changes to the caller's slice do not reach the stored order.
func (s *OrderService) PlaceOrder(ctx context.Context, items []domain.CartItem, user *domain.User, payment domain.PaymentMethod) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrInvalidInput)
	}
	if user == nil || user.ID == "" {
		return nil, fmt.Errorf("%w: no user", ErrInvalidInput)
	}
	if !payment.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, payment)
	}

	snapshot := slices.Clone(items)
	o := domain.Order{
		ID:            newID("ORD-"),
		UserID:        user.ID,
		Items:         snapshot,
		Total:         domain.Total(snapshot, s.shippingFee),
		Status:        domain.OrderStatusPending,
		Date:          s.now().UTC().Format(time.RFC3339Nano),
		PaymentMethod: payment,
	}
	if err := s.orders.CreateOrder(ctx, o); err != nil {
		return nil, err
	}
	s.log.Info("order placed",
		zap.String("id", o.ID),
		zap.String("user", o.UserID),
		zap.Int("lines", len(o.Items)),
		zap.Float64("total", o.Total),
		zap.String("payment", string(o.PaymentMethod)))

	// the stored order and the returned one must not share a backing array
	o.Items = slices.Clone(snapshot)
	return &o, nil
}

// ListOrders returns the orders placed by userID.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.orders.LoadOrders(ctx, userID)
}

// Checkout places an order for everything in cart and then takes the ordered
// lines out of it. Lines added while the order is being recorded are kept.
func Checkout(ctx context.Context, cart *Cart, session *Session, orders *OrderService, payment domain.PaymentMethod) (*domain.Order, error) {
	user, err := session.RequireUser()
	if err != nil {
		return nil, err
	}
	items := cart.Items()
	o, err := orders.PlaceOrder(ctx, items, &user, payment)
	if err != nil {
		return nil, err
	}
	if err := cart.Deduct(ctx, items); err != nil {
		return o, fmt.Errorf("order %s placed but cart not cleared: %w", o.ID, err)
	}
	return o, nil
}
