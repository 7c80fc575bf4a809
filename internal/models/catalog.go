package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Catalog domain models
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;unique" json:"name"`
	Description string    `gorm:"size:500" json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	IsActive    bool      `gorm:"not null;default:true" json:"isActive"`
	Products    []Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"products,omitempty"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// ProductCount is only meaningful when Products was preloaded.
func (c *Category) ProductCount() int { return len(c.Products) }

type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:200;not null" json:"name"`
	Description   string          `gorm:"size:1000" json:"description,omitempty"`
	Price         decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price"`
	StockQuantity int             `gorm:"not null;default:0" json:"stockQuantity"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	IsActive      bool            `gorm:"not null;default:true" json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"-"`
	CategoryID    uint            `gorm:"not null;index" json:"categoryId"`
	Category      *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	OrderItems    []OrderItem     `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
}
