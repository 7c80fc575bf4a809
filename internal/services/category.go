package services

import (
	"errors"

	"github.com/odshop/storefront/internal/models"
	"github.com/odshop/storefront/internal/repository"
)

var (
	// ErrCategoryNameTaken signals a duplicate name (case-insensitive).
	ErrCategoryNameTaken = errors.New("a category with this name already exists")
	// ErrCategoryHasProducts blocks deleting a category that products still reference.
	ErrCategoryHasProducts = errors.New("category still has products")
)

// CategoryService orchestrates the category repository.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) All() ([]models.Category, error) { return s.repo.All() }

func (s *CategoryService) AllWithProductCount() ([]models.Category, error) {
	return s.repo.AllWithProducts()
}

func (s *CategoryService) Active() ([]models.Category, error) { return s.repo.Active() }

func (s *CategoryService) ByID(id uint) (*models.Category, error) { return s.repo.ByID(id) }

func (s *CategoryService) WithProducts(id uint) (*models.Category, error) {
	return s.repo.ByIDWithProducts(id)
}

func (s *CategoryService) Create(c *models.Category) error {
	taken, err := s.repo.NameExists(c.Name)
	if err != nil {
		return err
	}
	if taken {
		return ErrCategoryNameTaken
	}
	return s.repo.Add(c)
}

func (s *CategoryService) Update(c *models.Category) error {
	taken, err := s.repo.NameExistsExcluding(c.Name, c.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrCategoryNameTaken
	}
	return s.repo.Update(c)
}

// Delete refuses to remove a category while products reference it;
// deleting an id that does not exist stays a no-op.
func (s *CategoryService) Delete(id uint) error {
	hasProducts, err := s.repo.HasProducts(id)
	if err != nil {
		return err
	}
	if hasProducts {
		return ErrCategoryHasProducts
	}
	return s.repo.DeleteByID(id)
}

func (s *CategoryService) Exists(id uint) (bool, error) { return s.repo.ExistsByID(id) }

func (s *CategoryService) NameExists(name string) (bool, error) { return s.repo.NameExists(name) }

func (s *CategoryService) Count() (int64, error) { return s.repo.Count() }
