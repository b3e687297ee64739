// Package customers persists customer records and serves them with their order
// history attached.
package customers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"order-management-service/pkg/fielderrs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

const uniqueViolation = "23505"

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

// InsertCustomer creates a customer owned by the authenticated user. A duplicate
// email surfaces as a field error.
func (c *Conf) InsertCustomer(ctx context.Context, createdBy int64, nc NewCustomer) (Customer, error) {
	query := `
		INSERT INTO customers (name, email, phone_number, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var id int64
	err := c.db.QueryRowContext(ctx, query, nc.Name, nc.Email, nc.PhoneNumber, createdBy).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Customer{}, fielderrs.New("email", "customer with this email already exists.")
		}
		return Customer{}, fmt.Errorf("inserting customer: %w", err)
	}
	return c.GetCustomerByID(ctx, id)
}

// UpdateCustomer replaces the mutable fields (PUT semantics); created_by is immutable.
func (c *Conf) UpdateCustomer(ctx context.Context, id int64, nc NewCustomer) (Customer, error) {
	query := `
		UPDATE customers
		SET name = $1, email = $2, phone_number = $3
		WHERE id = $4
	`
	res, err := c.db.ExecContext(ctx, query, nc.Name, nc.Email, nc.PhoneNumber, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Customer{}, fielderrs.New("email", "customer with this email already exists.")
		}
		return Customer{}, fmt.Errorf("updating customer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Customer{}, fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return Customer{}, sql.ErrNoRows
	}
	return c.GetCustomerByID(ctx, id)
}

// PatchCustomer overwrites only the fields present in the payload.
func (c *Conf) PatchCustomer(ctx context.Context, id int64, uc UpdateCustomer) (Customer, error) {
	current, err := c.GetCustomerByID(ctx, id)
	if err != nil {
		return Customer{}, err
	}

	nc := NewCustomer{
		Name:        current.Name,
		Email:       current.Email,
		PhoneNumber: current.PhoneNumber,
	}
	if uc.Name != nil {
		nc.Name = *uc.Name
	}
	if uc.Email != nil {
		nc.Email = *uc.Email
	}
	if uc.PhoneNumber != nil {
		nc.PhoneNumber = uc.PhoneNumber
	}
	return c.UpdateCustomer(ctx, id, nc)
}

func (c *Conf) DeleteCustomer(ctx context.Context, id int64) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting customer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetCustomerByID loads a customer with order count and full order detail.
func (c *Conf) GetCustomerByID(ctx context.Context, id int64) (Customer, error) {
	query := `
		SELECT id, name, email, phone_number, created_by
		FROM customers
		WHERE id = $1
	`
	var cust Customer
	var phone sql.NullString
	err := c.db.QueryRowContext(ctx, query, id).Scan(&cust.ID, &cust.Name, &cust.Email, &phone, &cust.CreatedBy)
	if err != nil {
		return Customer{}, err
	}
	if phone.Valid {
		cust.PhoneNumber = &phone.String
	}

	if err := c.attachOrders(ctx, &cust); err != nil {
		return Customer{}, err
	}
	return cust, nil
}

// ListCustomers returns customers matching the optional search term over id and
// name, each with order count and detail.
func (c *Conf) ListCustomers(ctx context.Context, search string) ([]Customer, error) {
	query := `
		SELECT id, name, email, phone_number, created_by
		FROM customers
	`
	var args []any
	if search != "" {
		query += ` WHERE CAST(id AS TEXT) ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%'`
		args = append(args, search)
	}
	query += ` ORDER BY id`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	list := []Customer{}
	for rows.Next() {
		var cust Customer
		var phone sql.NullString
		if err := rows.Scan(&cust.ID, &cust.Name, &cust.Email, &phone, &cust.CreatedBy); err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}
		if phone.Valid {
			cust.PhoneNumber = &phone.String
		}
		list = append(list, cust)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customers: %w", err)
	}

	for i := range list {
		if err := c.attachOrders(ctx, &list[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (c *Conf) attachOrders(ctx context.Context, cust *Customer) error {
	query := `
		SELECT order_id, created_at, status
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at, order_id
	`
	rows, err := c.db.QueryContext(ctx, query, cust.ID)
	if err != nil {
		return fmt.Errorf("querying customer orders: %w", err)
	}
	defer rows.Close()

	cust.OrderDetail = []OrderDetail{}
	for rows.Next() {
		var od OrderDetail
		if err := rows.Scan(&od.OrderID, &od.CreatedAt, &od.Status); err != nil {
			return fmt.Errorf("scanning customer order: %w", err)
		}
		cust.OrderDetail = append(cust.OrderDetail, od)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating customer orders: %w", err)
	}

	for i := range cust.OrderDetail {
		items, err := c.loadItems(ctx, cust.OrderDetail[i].OrderID)
		if err != nil {
			return err
		}
		cust.OrderDetail[i].Items = items
	}
	cust.OrderCount = len(cust.OrderDetail)
	return nil
}

func (c *Conf) loadItems(ctx context.Context, orderID uuid.UUID) ([]DetailItem, error) {
	query := `
		SELECT oi.id, oi.product_id, p.name, p.price, oi.quantity
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`
	rows, err := c.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying customer order items: %w", err)
	}
	defer rows.Close()

	items := []DetailItem{}
	for rows.Next() {
		var it DetailItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.ProductPrice, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scanning customer order item: %w", err)
		}
		it.Subtotal = it.ProductPrice.Mul(decimalFromInt(it.Quantity))
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customer order items: %w", err)
	}
	return items, nil
}
