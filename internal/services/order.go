package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odshop/storefront/internal/models"
	"github.com/odshop/storefront/internal/repository"
)

var (
	// ErrNoItems rejects orders without a single line.
	ErrNoItems = errors.New("order must contain at least one item")
	// ErrInvalidQuantity rejects line quantities of zero or less.
	ErrInvalidQuantity = errors.New("item quantity must be positive")
	// ErrInvalidDiscount rejects discounts below zero or above the subtotal.
	ErrInvalidDiscount = errors.New("discount must be between zero and the order subtotal")
	// ErrInvalidTransition signals a status change the lifecycle does not allow.
	ErrInvalidTransition = errors.New("order status transition not allowed")
	// ErrUnknownProduct rejects order lines pointing at a product that does not exist.
	ErrUnknownProduct = errors.New("product does not exist")
)

// OrderService computes order totals server-side and guards the status
// lifecycle. Client-supplied totals and statuses are never trusted.
type OrderService struct {
	orders   *repository.OrderRepository
	products *repository.ProductRepository
}

func NewOrderService(orders *repository.OrderRepository, products *repository.ProductRepository) *OrderService {
	return &OrderService{orders: orders, products: products}
}

func (s *OrderService) All() ([]models.Order, error) { return s.orders.AllWithDetails() }

func (s *OrderService) ByID(id uint) (*models.Order, error) { return s.orders.ByIDWithDetails(id) }

func (s *OrderService) ByUser(userID uint) ([]models.Order, error) { return s.orders.ByUser(userID) }

func (s *OrderService) ByStatus(status models.OrderStatus) ([]models.Order, error) {
	return s.orders.ByStatus(status)
}

// Create validates the lines, snapshots each unit price from the product
// row, and derives every money field. The order always starts Pending.
func (s *OrderService) Create(o *models.Order) error {
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	subTotal := decimal.Zero
	for i := range o.Items {
		item := &o.Items[i]
		if item.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		p, err := s.products.ByID(item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("product %d: %w", item.ProductID, ErrUnknownProduct)
			}
			return err
		}
		item.UnitPrice = p.Price
		subTotal = subTotal.Add(item.LineTotal())
	}
	if o.Discount.LessThan(decimal.Zero) || o.Discount.GreaterThan(subTotal) {
		return ErrInvalidDiscount
	}
	o.OrderDate = time.Now().UTC()
	o.Status = models.StatusPending
	o.SubTotal = subTotal
	o.TotalAmount = subTotal.Sub(o.Discount)
	return s.orders.Add(o)
}

// UpdateStatus moves an order along the lifecycle. Pending may confirm or
// cancel, Confirmed may ship or cancel, Shipping may deliver or cancel;
// Delivered and Cancelled are terminal.
func (s *OrderService) UpdateStatus(id uint, next models.OrderStatus) error {
	o, err := s.orders.ByID(id)
	if err != nil {
		return err
	}
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.Status, next)
	}
	return s.orders.UpdateStatus(id, next)
}

// Cancel is UpdateStatus to Cancelled, so the same lifecycle rules apply.
func (s *OrderService) Cancel(id uint) error {
	return s.UpdateStatus(id, models.StatusCancelled)
}

func (s *OrderService) Exists(id uint) (bool, error) { return s.orders.ExistsByID(id) }

func (s *OrderService) Count() (int64, error) { return s.orders.Count() }

// PendingCount backs the dashboard badge.
func (s *OrderService) PendingCount() (int64, error) {
	return s.orders.CountByStatus(models.StatusPending)
}
