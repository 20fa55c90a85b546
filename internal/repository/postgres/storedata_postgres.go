package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/VadymFES/dekop-compliance/internal/domain"
	"github.com/VadymFES/dekop-compliance/internal/repository"
	"github.com/jmoiron/sqlx"
)

type storeDataRepository struct {
	db *sqlx.DB
}

// NewStoreDataRepository creates a new PostgreSQL storefront data repository
func NewStoreDataRepository(db *sqlx.DB) repository.StoreDataRepository {
	return &storeDataRepository{db: db}
}

// GetCustomer retrieves a customer's personal information
func (r *storeDataRepository) GetCustomer(ctx context.Context, email string) (*domain.Customer, error) {
	query := `
		SELECT email, first_name, last_name, phone, address, created_at
		FROM customers
		WHERE email = $1`

	var customer domain.Customer
	err := r.db.GetContext(ctx, &customer, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return &customer, nil
}

// GetOrders retrieves a customer's orders with their items
func (r *storeDataRepository) GetOrders(ctx context.Context, email string) ([]*domain.Order, error) {
	query := `
		SELECT id, customer_email, customer_name, phone, shipping_address,
			   status, total_amount, created_at
		FROM orders
		WHERE customer_email = $1
		ORDER BY created_at DESC`

	var orders []*domain.Order
	err := r.db.SelectContext(ctx, &orders, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}

	itemQuery := `
		SELECT id, order_id, product_name, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_name`

	for _, order := range orders {
		var items []domain.OrderItem
		if err := r.db.SelectContext(ctx, &items, itemQuery, order.ID); err != nil {
			return nil, fmt.Errorf("failed to get order items: %w", err)
		}
		order.Items = items
	}

	return orders, nil
}

// GetCartItems retrieves the contents of a customer's active cart
func (r *storeDataRepository) GetCartItems(ctx context.Context, email string) ([]*domain.CartItem, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.product_name, ci.quantity, ci.unit_price
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		WHERE c.customer_email = $1
		ORDER BY ci.product_name`

	var items []*domain.CartItem
	err := r.db.SelectContext(ctx, &items, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}

	return items, nil
}

// DeleteCustomer removes a customer row
func (r *storeDataRepository) DeleteCustomer(ctx context.Context, email string) (int64, error) {
	return r.execCount(ctx, `DELETE FROM customers WHERE email = $1`, "delete customer", email)
}

// DeleteCartItems removes every cart item in the customer's carts
func (r *storeDataRepository) DeleteCartItems(ctx context.Context, email string) (int64, error) {
	query := `
		DELETE FROM cart_items
		WHERE cart_id IN (SELECT id FROM carts WHERE customer_email = $1)`
	return r.execCount(ctx, query, "delete cart items", email)
}

// DeleteCarts removes the customer's carts
func (r *storeDataRepository) DeleteCarts(ctx context.Context, email string) (int64, error) {
	return r.execCount(ctx, `DELETE FROM carts WHERE customer_email = $1`, "delete carts", email)
}

// DeleteOrderItems removes the items of every order placed by the customer
func (r *storeDataRepository) DeleteOrderItems(ctx context.Context, email string) (int64, error) {
	query := `
		DELETE FROM order_items
		WHERE order_id IN (SELECT id FROM orders WHERE customer_email = $1)`
	return r.execCount(ctx, query, "delete order items", email)
}

// DeleteOrders removes the customer's orders
func (r *storeDataRepository) DeleteOrders(ctx context.Context, email string) (int64, error) {
	return r.execCount(ctx, `DELETE FROM orders WHERE customer_email = $1`, "delete orders", email)
}

// AnonymizeOrders blanks order PII in place, keeping the rows for legal
// retention. The placeholder email breaks the link to the data subject.
func (r *storeDataRepository) AnonymizeOrders(ctx context.Context, email, anonymousEmail string) (int64, error) {
	query := `
		UPDATE orders
		SET customer_email   = $1,
			customer_name    = '[REDACTED]',
			phone            = NULL,
			shipping_address = '[REDACTED]'
		WHERE customer_email = $2`

	result, err := r.db.ExecContext(ctx, query, anonymousEmail, email)
	if err != nil {
		return 0, fmt.Errorf("failed to anonymize orders: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

func (r *storeDataRepository) execCount(ctx context.Context, query, op string, args ...interface{}) (int64, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to %s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}
