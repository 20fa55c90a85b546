package repository

import (
	"context"

	"github.com/VadymFES/dekop-compliance/internal/domain"
)

// StoreDataRepository is the compliance core's window into the storefront
// tables. Export reads through it; the deletion engine deletes or
// anonymizes through it. It never exposes write access to business fields.
type StoreDataRepository interface {
	GetCustomer(ctx context.Context, email string) (*domain.Customer, error)
	GetOrders(ctx context.Context, email string) ([]*domain.Order, error)
	GetCartItems(ctx context.Context, email string) ([]*domain.CartItem, error)

	DeleteCustomer(ctx context.Context, email string) (int64, error)
	DeleteCartItems(ctx context.Context, email string) (int64, error)
	DeleteCarts(ctx context.Context, email string) (int64, error)
	DeleteOrderItems(ctx context.Context, email string) (int64, error)
	DeleteOrders(ctx context.Context, email string) (int64, error)
	// AnonymizeOrders blanks PII on the user's orders in place and points
	// them at the given placeholder email, returning the rows touched.
	AnonymizeOrders(ctx context.Context, email, anonymousEmail string) (int64, error)
}
