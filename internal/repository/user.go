package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/odshop/storefront/internal/models"
)

// UserRepository adds the email and role lookups on top of the shared
// CRUD operations.
type UserRepository struct {
	*Repository[models.User]
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{Repository: New[models.User](db)}
}

// ByEmail fetches a user with roles loaded; matching ignores case.
func (r *UserRepository) ByEmail(email string) (*models.User, error) {
	var u models.User
	err := r.db.Preload("Roles").
		Where("LOWER(email) = LOWER(?)", email).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ByIDWithRoles(id uint) (*models.User, error) {
	var u models.User
	err := r.db.Preload("Roles").First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("LOWER(email) = LOWER(?)", email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RoleByName fetches a role row; used when attaching roles at sign-up.
func (r *UserRepository) RoleByName(name string) (*models.Role, error) {
	var role models.Role
	err := r.db.Where("name = ?", name).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}
