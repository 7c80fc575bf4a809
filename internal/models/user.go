package models

import (
	"strings"
	"time"
)

// User & auth related models
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"unique;not null;index" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FirstName    string    `gorm:"size:50" json:"firstName"`
	LastName     string    `gorm:"size:50" json:"lastName"`
	Roles        []Role    `gorm:"many2many:user_roles" json:"roles,omitempty"`
	Addresses    []Address `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"addresses,omitempty"`
	Orders       []Order   `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}

// FullName joins first and last name, trimming when either is empty.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// RoleNames returns the names of the user's roles (requires Roles preloaded).
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

type Role struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"unique;not null" json:"name"` // Admin, Customer
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

const (
	RoleAdmin    = "Admin"
	RoleCustomer = "Customer"
)

type Address struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Street     string    `gorm:"size:200;not null" json:"street"`
	City       string    `gorm:"size:100;not null" json:"city"`
	State      string    `gorm:"size:100" json:"state,omitempty"`
	PostalCode string    `gorm:"size:20" json:"postalCode,omitempty"`
	Country    string    `gorm:"size:100;not null;default:'Oman'" json:"country"`
	IsDefault  bool      `json:"isDefault"`
	UserID     uint      `gorm:"not null;index" json:"userId"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}
