package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/domain"
	rabbit "storefront/internal/infra/rabbitmq"
	"storefront/internal/metrics"
	"storefront/internal/policy"
	"storefront/internal/repository"

	log "github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

type OrderService struct {
	repo      repository.OrderRepository
	carts     *CartService
	publisher rabbit.PublisherInterface
	pending   sync.WaitGroup
}

func NewOrderService(r repository.OrderRepository, carts *CartService, pub rabbit.PublisherInterface) *OrderService {
	return &OrderService{
		repo:      r,
		carts:     carts,
		publisher: pub,
	}
}

// OrderLine is one requested product when an order is placed without a cart.
type OrderLine struct {
	ProductID uint64
	Quantity  int
}

// Checkout turns the session cart into an order. The cart is cleared only
// after the order and all of its items are stored.
func (s *OrderService) Checkout(ctx context.Context, actor domain.Actor, sessionID string, ship domain.ShippingInfo) (*domain.Order, error) {
	if err := policy.Checkout(actor).Err(); err != nil {
		return nil, err
	}
	if err := ship.Validate(); err != nil {
		metrics.RecordCheckout("invalid")
		return nil, err
	}

	resolved, err := s.carts.Resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if resolved.Empty() {
		metrics.RecordCheckout("empty")
		return nil, domain.ErrEmptyCart
	}

	order, err := s.place(ctx, actor, ship, resolved)
	if err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		log.WithFields(log.Fields{"order_id": order.ID, "session": sessionID}).
			Errorf("Failed to clear cart after checkout: %v", err)
	}
	return order, nil
}

// PlaceOrder creates an order from an explicit item list. Every product must
// exist; repeated products are merged.
func (s *OrderService) PlaceOrder(ctx context.Context, actor domain.Actor, ship domain.ShippingInfo, lines []OrderLine) (*domain.Order, error) {
	if err := policy.Checkout(actor).Err(); err != nil {
		return nil, err
	}

	v := domain.NewValidationError()
	var shipErr *domain.ValidationError
	if errors.As(ship.Validate(), &shipErr) {
		for k, msg := range shipErr.Fields {
			v.Add(k, msg)
		}
	}
	cart := domain.Cart{}
	if len(lines) == 0 {
		v.Add("items", "at least one item is required")
	}
	for _, l := range lines {
		if l.ProductID == 0 {
			v.Add("items", "every item needs a product")
			continue
		}
		if l.Quantity < 1 {
			v.Add("items", "ensure every quantity is greater than or equal to 1")
			continue
		}
		cart[domain.CartKey(l.ProductID)] += l.Quantity
	}
	if err := v.OrNil(); err != nil {
		metrics.RecordCheckout("invalid")
		return nil, err
	}

	resolved, err := s.carts.ResolveCart(ctx, cart)
	if err != nil {
		return nil, err
	}
	if len(resolved.Items) != len(cart) {
		metrics.RecordCheckout("invalid")
		return nil, domain.Invalid("items", "one or more products do not exist")
	}

	return s.place(ctx, actor, ship, resolved)
}

func (s *OrderService) place(ctx context.Context, actor domain.Actor, ship domain.ShippingInfo, resolved *domain.ResolvedCart) (*domain.Order, error) {
	order := &domain.Order{
		UserID:  actor.UserID,
		Name:    ship.Name,
		Address: ship.Address,
		Phone:   ship.Phone,
		Total:   resolved.Total,
		Status:  domain.StatusPending,
		Items:   make([]domain.OrderItem, 0, len(resolved.Items)),
	}
	for _, li := range resolved.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: li.Product.ID,
			Quantity:  li.Quantity,
			Price:     li.Product.Price,
		})
	}

	if err := s.repo.CreateWithItems(ctx, order); err != nil {
		metrics.RecordCheckout("failed")
		return nil, fmt.Errorf("create order: %w", err)
	}

	order.User = &domain.User{ID: actor.UserID, Username: actor.Username, IsStaff: actor.Staff}
	for i := range order.Items {
		p := resolved.Items[i].Product
		order.Items[i].Product = &p
	}

	metrics.RecordCheckout("success")
	metrics.RecordOrderValue(order.Total.InexactFloat64())

	evt := domain.OrderCreatedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total,
		ItemCount: len(order.Items),
		CreatedAt: order.CreatedAt,
	}
	s.publishAsync(rabbit.TopicOrderCreated, evt)

	log.WithFields(log.Fields{"order_id": order.ID, "user_id": order.UserID, "total": order.Total.StringFixed(2)}).
		Info("Order created")
	return order, nil
}

func (s *OrderService) publishAsync(topic string, evt any) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		err := s.publisher.Publish(ctx, topic, evt)
		metrics.RecordEventPublish(topic, err == nil)
		if err != nil {
			log.Printf("Failed to publish %s event: %v", topic, err)
		}
	}()
}

// Wait blocks until in-flight event publishes finish.
func (s *OrderService) Wait() {
	s.pending.Wait()
}

// List returns the orders the actor may see, newest first.
func (s *OrderService) List(ctx context.Context, actor domain.Actor, status string, page, limit int) ([]domain.Order, int64, error) {
	if err := policy.ListOrders(actor).Err(); err != nil {
		return nil, 0, err
	}
	f := repository.OrderFilter{
		UserID: policy.OrderScope(actor),
		Page:   page,
		Limit:  limit,
	}
	if status != "" {
		st := domain.OrderStatus(status)
		if !st.Valid() {
			return nil, 0, domain.Invalid("status", fmt.Sprintf("%q is not a valid status", status))
		}
		f.Status = st
	}
	return s.repo.List(ctx, f)
}

func (s *OrderService) Get(ctx context.Context, actor domain.Actor, id uint64) (*domain.Order, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrAuthRequired
	}
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.ViewOrder(actor, o).Err(); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) UpdateShipping(ctx context.Context, actor domain.Actor, id uint64, ship domain.ShippingInfo) (*domain.Order, error) {
	return s.Update(ctx, actor, id, OrderPatch{Name: &ship.Name, Address: &ship.Address, Phone: &ship.Phone})
}

// UpdateStatus moves an order forward. Setting the current status again is a
// no-op.
func (s *OrderService) UpdateStatus(ctx context.Context, actor domain.Actor, id uint64, to domain.OrderStatus) (*domain.Order, error) {
	return s.Update(ctx, actor, id, OrderPatch{Status: &to})
}

// OrderPatch carries a partial order edit; nil fields are left unchanged.
type OrderPatch struct {
	Name    *string
	Address *string
	Phone   *string
	Status  *domain.OrderStatus
}

func (p OrderPatch) touchesShipping() bool {
	return p.Name != nil || p.Address != nil || p.Phone != nil
}

// Update applies shipping and status edits together. Everything is checked
// before the first write, and a combined edit is a single guarded update.
func (s *OrderService) Update(ctx context.Context, actor domain.Actor, id uint64, patch OrderPatch) (*domain.Order, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrAuthRequired
	}
	if patch.Status != nil {
		if err := policy.ChangeOrderStatus(actor).Err(); err != nil {
			return nil, err
		}
		if !patch.Status.Valid() {
			return nil, domain.Invalid("status", fmt.Sprintf("%q is not a valid status", *patch.Status))
		}
	}

	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.EditShipping(actor, o).Err(); err != nil {
		return nil, err
	}

	ship := domain.ShippingInfo{Name: o.Name, Address: o.Address, Phone: o.Phone}
	if patch.touchesShipping() {
		if patch.Name != nil {
			ship.Name = *patch.Name
		}
		if patch.Address != nil {
			ship.Address = *patch.Address
		}
		if patch.Phone != nil {
			ship.Phone = *patch.Phone
		}
		if err := ship.Validate(); err != nil {
			return nil, err
		}
	}

	to := o.Status
	if patch.Status != nil && *patch.Status != o.Status {
		if !o.Status.CanTransitionTo(*patch.Status) {
			return nil, fmt.Errorf("order %d %s -> %s: %w", id, o.Status, *patch.Status, domain.ErrInvalidTransition)
		}
		to = *patch.Status
	}

	switch {
	case to != o.Status && patch.touchesShipping():
		ok, err := s.repo.UpdateStatusAndShipping(ctx, id, o.Status, to, ship)
		if err != nil {
			return nil, fmt.Errorf("update order %d: %w", id, err)
		}
		if !ok {
			return nil, fmt.Errorf("order %d changed concurrently: %w", id, domain.ErrConflict)
		}
		s.statusChanged(actor, id, o.Status, to)
	case to != o.Status:
		if err := s.transition(ctx, actor, o, to); err != nil {
			return nil, err
		}
	case patch.touchesShipping():
		if err := s.repo.UpdateShipping(ctx, id, ship); err != nil {
			return nil, fmt.Errorf("update order %d: %w", id, err)
		}
	default:
		return o, nil
	}
	return s.load(ctx, id)
}

// MarkPaid moves a pending order to placed. An already placed order is
// returned unchanged.
func (s *OrderService) MarkPaid(ctx context.Context, actor domain.Actor, id uint64) (*domain.Order, error) {
	if err := policy.MarkPaid(actor).Err(); err != nil {
		return nil, err
	}
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch o.Status {
	case domain.StatusPlaced:
		return o, nil
	case domain.StatusPending:
	default:
		return nil, fmt.Errorf("order %d is already %s: %w", id, o.Status, domain.ErrInvalidTransition)
	}
	if err := s.transition(ctx, actor, o, domain.StatusPlaced); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// PrepareMarkPaid loads the order a staff member is about to mark as paid.
func (s *OrderService) PrepareMarkPaid(ctx context.Context, actor domain.Actor, id uint64) (*domain.Order, error) {
	if err := policy.MarkPaid(actor).Err(); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *OrderService) transition(ctx context.Context, actor domain.Actor, o *domain.Order, to domain.OrderStatus) error {
	from := o.Status
	ok, err := s.repo.UpdateStatus(ctx, o.ID, from, to)
	if err != nil {
		return fmt.Errorf("update order %d status: %w", o.ID, err)
	}
	if !ok {
		return fmt.Errorf("order %d changed concurrently: %w", o.ID, domain.ErrConflict)
	}

	s.statusChanged(actor, o.ID, from, to)
	return nil
}

func (s *OrderService) statusChanged(actor domain.Actor, id uint64, from, to domain.OrderStatus) {
	metrics.RecordStatusChange(string(to))
	s.publishAsync(rabbit.TopicOrderStatusChanged, domain.OrderStatusChangedEvent{
		OrderID:   id,
		From:      from,
		To:        to,
		ChangedBy: actor.UserID,
		ChangedAt: time.Now().UTC(),
	})
	log.WithFields(log.Fields{"order_id": id, "from": from, "to": to, "by": actor.Username}).
		Info("Order status changed")
}

func (s *OrderService) Delete(ctx context.Context, actor domain.Actor, id uint64) error {
	if err := policy.DeleteOrder(actor).Err(); err != nil {
		return err
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	log.WithFields(log.Fields{"order_id": id, "by": actor.Username}).Info("Order deleted")
	return nil
}

func (s *OrderService) load(ctx context.Context, id uint64) (*domain.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	return o, nil
}
