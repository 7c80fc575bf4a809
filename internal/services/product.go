package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odshop/storefront/internal/models"
	"github.com/odshop/storefront/internal/repository"
)

var (
	// ErrNegativePrice rejects products priced below zero.
	ErrNegativePrice = errors.New("price must not be negative")
	// ErrUnknownCategory rejects products pointing at a category that does not exist.
	ErrUnknownCategory = errors.New("category does not exist")
	// ErrProductInUse blocks deleting a product that order lines still reference.
	ErrProductInUse = errors.New("product is referenced by existing orders")
)

// ProductService orchestrates the product repository and enforces the
// pricing and category rules.
type ProductService struct {
	products   *repository.ProductRepository
	categories *repository.CategoryRepository
}

func NewProductService(products *repository.ProductRepository, categories *repository.CategoryRepository) *ProductService {
	return &ProductService{products: products, categories: categories}
}

func (s *ProductService) All() ([]models.Product, error) { return s.products.AllWithCategory() }

func (s *ProductService) Active() ([]models.Product, error) { return s.products.Active() }

func (s *ProductService) ByID(id uint) (*models.Product, error) {
	return s.products.ByIDWithCategory(id)
}

func (s *ProductService) ByCategory(categoryID uint) ([]models.Product, error) {
	return s.products.ByCategory(categoryID)
}

func (s *ProductService) Search(term string) ([]models.Product, error) {
	return s.products.SearchByName(term)
}

func (s *ProductService) validate(p *models.Product) error {
	if p.Price.LessThan(decimal.Zero) {
		return ErrNegativePrice
	}
	ok, err := s.categories.ExistsByID(p.CategoryID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownCategory
	}
	return nil
}

// Create stamps the creation time server-side; a caller-supplied value is
// ignored.
func (s *ProductService) Create(p *models.Product) error {
	if err := s.validate(p); err != nil {
		return err
	}
	p.CreatedAt = time.Now().UTC()
	return s.products.Add(p)
}

func (s *ProductService) Update(p *models.Product) error {
	if err := s.validate(p); err != nil {
		return err
	}
	return s.products.Update(p)
}

// Delete refuses to remove a product while order lines reference it;
// deleting an id that does not exist stays a no-op.
func (s *ProductService) Delete(id uint) error {
	inUse, err := s.products.HasOrderItems(id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrProductInUse
	}
	return s.products.DeleteByID(id)
}

func (s *ProductService) Exists(id uint) (bool, error) { return s.products.ExistsByID(id) }

func (s *ProductService) Count() (int64, error) { return s.products.Count() }
