package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/odshop/storefront/internal/models"
)

// CategoryRepository adds the category-specific query variants on top of
// the shared CRUD operations.
type CategoryRepository struct {
	*Repository[models.Category]
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{Repository: New[models.Category](db)}
}

// ByIDWithProducts fetches a category together with its products.
func (r *CategoryRepository) ByIDWithProducts(id uint) (*models.Category, error) {
	var c models.Category
	err := r.db.Preload("Products").First(&c, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// AllWithProducts fetches every category with its products loaded so
// callers can show product counts.
func (r *CategoryRepository) AllWithProducts() ([]models.Category, error) {
	var out []models.Category
	if err := r.db.Preload("Products").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CategoryRepository) Active() ([]models.Category, error) {
	var out []models.Category
	if err := r.db.Where("is_active = ?", true).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// NameExists checks for a category with the same name, ignoring case.
func (r *CategoryRepository) NameExists(name string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Category{}).
		Where("LOWER(name) = LOWER(?)", name).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// NameExistsExcluding is the rename variant of NameExists: the row with
// excludeID does not count as a conflict.
func (r *CategoryRepository) NameExistsExcluding(name string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Category{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, excludeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasProducts reports whether any product still references the category.
func (r *CategoryRepository) HasProducts(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Product{}).
		Where("category_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
