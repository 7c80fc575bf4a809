package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/odshop/storefront/internal/models"
)

// OrderRepository adds the order-specific query variants on top of the
// shared CRUD operations.
type OrderRepository struct {
	*Repository[models.Order]
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{Repository: New[models.Order](db)}
}

// ByIDWithDetails fetches an order with its user, items and each item's
// product in one round trip.
func (r *OrderRepository) ByIDWithDetails(id uint) (*models.Order, error) {
	var o models.Order
	err := r.db.Preload("User").Preload("User.Roles").
		Preload("Items").Preload("Items.Product").
		First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// AllWithDetails fetches every order, newest first.
func (r *OrderRepository) AllWithDetails() ([]models.Order, error) {
	var out []models.Order
	err := r.db.Preload("User").
		Preload("Items").Preload("Items.Product").
		Order("order_date DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrderRepository) ByUser(userID uint) ([]models.Order, error) {
	var out []models.Order
	err := r.db.Where("user_id = ?", userID).
		Preload("Items").Preload("Items.Product").
		Order("order_date DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrderRepository) ByStatus(status models.OrderStatus) ([]models.Order, error) {
	var out []models.Order
	err := r.db.Where("status = ?", status).
		Preload("User").Preload("Items").
		Order("order_date DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus loads the order, mutates the status, and re-saves the row.
func (r *OrderRepository) UpdateStatus(id uint, status models.OrderStatus) error {
	o, err := r.ByID(id)
	if err != nil {
		return err
	}
	o.Status = status
	return r.Update(o)
}

func (r *OrderRepository) CountByStatus(status models.OrderStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
