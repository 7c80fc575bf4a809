package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/odshop/storefront/internal/models"
	"github.com/odshop/storefront/internal/repository"
)

var (
	// ErrEmailTaken signals a sign-up with an already registered address.
	ErrEmailTaken = errors.New("an account with this email already exists")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserService handles sign-up and credential checks. Passwords are
// stored as bcrypt hashes only.
type UserService struct {
	users *repository.UserRepository
}

func NewUserService(users *repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) ByID(id uint) (*models.User, error) { return s.users.ByIDWithRoles(id) }

func (s *UserService) ByEmail(email string) (*models.User, error) { return s.users.ByEmail(email) }

// Register creates the account and attaches the Customer role. Email
// uniqueness ignores case.
func (s *UserService) Register(email, password, firstName, lastName string) (*models.User, error) {
	taken, err := s.users.EmailExists(email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
	}
	if role, err := s.users.RoleByName(models.RoleCustomer); err == nil {
		u.Roles = []models.Role{*role}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if err := s.users.Add(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies the password; unknown email and a wrong password
// come back as the same error so callers cannot tell them apart.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	u, err := s.users.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) Count() (int64, error) { return s.users.Count() }
