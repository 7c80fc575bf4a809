package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/odshop/storefront/internal/models"
)

// ProductRepository adds the product-specific query variants on top of
// the shared CRUD operations.
type ProductRepository struct {
	*Repository[models.Product]
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{Repository: New[models.Product](db)}
}

// AllWithCategory fetches every product with its category joined in.
func (r *ProductRepository) AllWithCategory() ([]models.Product, error) {
	var out []models.Product
	if err := r.db.Preload("Category").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProductRepository) ByIDWithCategory(id uint) (*models.Product, error) {
	var p models.Product
	err := r.db.Preload("Category").First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) ByCategory(categoryID uint) ([]models.Product, error) {
	var out []models.Product
	err := r.db.Preload("Category").
		Where("category_id = ?", categoryID).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProductRepository) Active() ([]models.Product, error) {
	var out []models.Product
	err := r.db.Preload("Category").
		Where("is_active = ?", true).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SearchByName does a substring match; the backing store's collation
// decides case behavior, as with the original LIKE query.
func (r *ProductRepository) SearchByName(term string) ([]models.Product, error) {
	var out []models.Product
	err := r.db.Preload("Category").
		Where("name LIKE ?", "%"+term+"%").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// HasOrderItems reports whether any order line still references the product.
func (r *ProductRepository) HasOrderItems(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.OrderItem{}).
		Where("product_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
