package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when an id lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Repository provides the shared CRUD operations for one entity type.
// Every call executes as a single implicit statement transaction and
// persists immediately; there is no batching and no optimistic locking.
type Repository[T any] struct {
	db *gorm.DB
}

func New[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

// DB exposes the underlying handle for the specialized query methods.
func (r *Repository[T]) DB() *gorm.DB { return r.db }

func (r *Repository[T]) All() ([]T, error) {
	var out []T
	if err := r.db.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository[T]) ByID(id uint) (*T, error) {
	var e T
	if err := r.db.First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *Repository[T]) Add(e *T) error {
	return r.db.Create(e).Error
}

func (r *Repository[T]) Update(e *T) error {
	return r.db.Save(e).Error
}

func (r *Repository[T]) Delete(e *T) error {
	return r.db.Delete(e).Error
}

// DeleteByID removes the row with the given id. Deleting an id that does
// not exist is a no-op, not an error.
func (r *Repository[T]) DeleteByID(id uint) error {
	return r.db.Delete(new(T), id).Error
}

func (r *Repository[T]) ExistsByID(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository[T]) Count() (int64, error) {
	var count int64
	if err := r.db.Model(new(T)).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
