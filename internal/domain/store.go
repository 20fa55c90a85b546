package domain

import (
	"time"

	"github.com/google/uuid"
)

// Storefront entities the compliance core reads for export and mutates
// during erasure. The storefront itself owns their business logic.

type Customer struct {
	Email     string    `json:"email" db:"email"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Address   *string   `json:"address,omitempty" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Order struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	CustomerEmail   string      `json:"customer_email" db:"customer_email"`
	CustomerName    string      `json:"customer_name" db:"customer_name"`
	Phone           *string     `json:"phone,omitempty" db:"phone"`
	ShippingAddress *string     `json:"shipping_address,omitempty" db:"shipping_address"`
	Status          string      `json:"status" db:"status"`
	TotalAmount     float64     `json:"total_amount" db:"total_amount"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	Items           []OrderItem `json:"items" db:"-"`
}

type OrderItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OrderID     uuid.UUID `json:"order_id" db:"order_id"`
	ProductName string    `json:"product_name" db:"product_name"`
	Quantity    int       `json:"quantity" db:"quantity"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
}

type CartItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CartID      uuid.UUID `json:"cart_id" db:"cart_id"`
	ProductName string    `json:"product_name" db:"product_name"`
	Quantity    int       `json:"quantity" db:"quantity"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
}
