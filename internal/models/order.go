package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusConfirmed OrderStatus = "Confirmed"
	StatusShipping  OrderStatus = "Shipping"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

// transitions holds the allowed next states; Delivered and Cancelled are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipping, StatusCancelled},
	StatusShipping:  {StatusDelivered, StatusCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipping, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status machine allows moving to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseOrderStatus accepts the status name case-insensitively.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	for _, s := range []OrderStatus{StatusPending, StatusConfirmed, StatusShipping, StatusDelivered, StatusCancelled} {
		if strings.EqualFold(raw, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}

type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderDate       time.Time       `gorm:"not null;index" json:"orderDate"`
	Status          OrderStatus     `gorm:"size:20;not null;default:'Pending';index" json:"status"`
	ShippingAddress string          `gorm:"size:500;not null" json:"shippingAddress"`
	City            string          `gorm:"size:100;not null" json:"city"`
	PostalCode      string          `gorm:"size:20" json:"postalCode,omitempty"`
	PhoneNumber     string          `gorm:"size:20;not null" json:"phoneNumber"`
	SubTotal        decimal.Decimal `gorm:"type:decimal(18,2)" json:"subTotal"`
	Discount        decimal.Decimal `gorm:"type:decimal(18,2)" json:"discount"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2)" json:"totalAmount"`
	UserID          uint            `gorm:"not null;index" json:"userId"`
	User            *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt       time.Time       `json:"-"`
	UpdatedAt       time.Time       `json:"-"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"orderId"`
	ProductID uint            `gorm:"not null;index" json:"productId"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unitPrice"` // price snapshot at purchase time
}

// LineTotal is quantity times the captured unit price.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
