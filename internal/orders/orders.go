// Package orders persists orders with their line items and serves the revenue
// aggregates. Every nested write runs inside a single transaction: a validation
// failure on any item leaves the stored state untouched.
package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"order-management-service/pkg/fielderrs"

	"github.com/google/uuid"
)

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

func validateItems(entries []ItemEntry) error {
	fe := fielderrs.FieldErrors{}
	for _, entry := range entries {
		if entry.ProductID == 0 {
			fe.Add("product", "This field is required.")
		}
		if entry.Quantity <= 0 {
			fe.Add("quantity", "Quantity must be greater than 0.")
		}
	}
	if len(fe) > 0 {
		return fe
	}
	return nil
}

func validateStatus(status string) error {
	if !validStatus(status) {
		return fielderrs.New("status", fmt.Sprintf("%q is not a valid choice.", status))
	}
	return nil
}

// CreateOrder persists the order and all of its items in one transaction.
// createdBy is nil for anonymous callers.
func (c *Conf) CreateOrder(ctx context.Context, createdBy *int64, no NewOrder) (Order, error) {
	if no.Status == "" {
		no.Status = StatusPending
	}
	if err := validateStatus(no.Status); err != nil {
		return Order{}, err
	}
	if err := validateItems(no.Items); err != nil {
		return Order{}, err
	}

	orderID := uuid.New()
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkCustomer(ctx, tx, no.CustomerID); err != nil {
			return err
		}

		query := `
			INSERT INTO orders (order_id, customer_id, created_by, status)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.ExecContext(ctx, query, orderID, no.CustomerID, createdBy, no.Status); err != nil {
			return fmt.Errorf("inserting order: %w", err)
		}
		return insertItems(ctx, tx, orderID, no.Items)
	})
	if err != nil {
		return Order{}, err
	}
	return c.GetOrder(ctx, orderID)
}

// ReplaceOrder applies PUT semantics: order fields are overwritten and the item
// set becomes exactly the payload item set, all in one transaction.
func (c *Conf) ReplaceOrder(ctx context.Context, orderID uuid.UUID, no NewOrder) (Order, error) {
	if no.Status == "" {
		no.Status = StatusPending
	}
	if err := validateStatus(no.Status); err != nil {
		return Order{}, err
	}
	if err := validateItems(no.Items); err != nil {
		return Order{}, err
	}

	err := c.withTx(ctx, func(tx *sql.Tx) error {
		if err := lockOrder(ctx, tx, orderID); err != nil {
			return err
		}
		if err := checkCustomer(ctx, tx, no.CustomerID); err != nil {
			return err
		}

		update := `UPDATE orders SET customer_id = $1, status = $2 WHERE order_id = $3`
		if _, err := tx.ExecContext(ctx, update, no.CustomerID, no.Status, orderID); err != nil {
			return fmt.Errorf("updating order: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
			return fmt.Errorf("deleting order items: %w", err)
		}
		return insertItems(ctx, tx, orderID, no.Items)
	})
	if err != nil {
		return Order{}, err
	}
	return c.GetOrder(ctx, orderID)
}

// MergeOrder applies PATCH semantics: payload items whose id matches an existing
// item overwrite it in place, everything else is inserted as new, and items not
// mentioned in the payload are left untouched.
func (c *Conf) MergeOrder(ctx context.Context, orderID uuid.UUID, po PatchOrder) (Order, error) {
	if po.Status != nil {
		if err := validateStatus(*po.Status); err != nil {
			return Order{}, err
		}
	}
	if po.Items != nil {
		if err := validateItems(po.Items); err != nil {
			return Order{}, err
		}
	}

	err := c.withTx(ctx, func(tx *sql.Tx) error {
		if err := lockOrder(ctx, tx, orderID); err != nil {
			return err
		}
		if po.CustomerID != nil {
			if err := checkCustomer(ctx, tx, po.CustomerID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `UPDATE orders SET customer_id = $1 WHERE order_id = $2`, *po.CustomerID, orderID); err != nil {
				return fmt.Errorf("updating order customer: %w", err)
			}
		}
		if po.Status != nil {
			if _, err := tx.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE order_id = $2`, *po.Status, orderID); err != nil {
				return fmt.Errorf("updating order status: %w", err)
			}
		}
		if po.Items == nil {
			return nil
		}

		existing, err := existingItemIDs(ctx, tx, orderID)
		if err != nil {
			return err
		}
		plan := reconcileItems(existing, po.Items)

		for _, entry := range plan.toUpdate {
			if err := checkProduct(ctx, tx, entry.ProductID); err != nil {
				return err
			}
			update := `UPDATE order_items SET product_id = $1, quantity = $2 WHERE id = $3 AND order_id = $4`
			if _, err := tx.ExecContext(ctx, update, entry.ProductID, entry.Quantity, *entry.ID, orderID); err != nil {
				return fmt.Errorf("updating order item %d: %w", *entry.ID, err)
			}
		}
		return insertItems(ctx, tx, orderID, plan.toCreate)
	})
	if err != nil {
		return Order{}, err
	}
	return c.GetOrder(ctx, orderID)
}

func (c *Conf) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM orders WHERE order_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
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

// GetOrder loads one order with its customer, items and derived totals.
func (c *Conf) GetOrder(ctx context.Context, orderID uuid.UUID) (Order, error) {
	query := `
		SELECT o.order_id, o.created_by, o.status, o.created_at,
		       c.id, c.name, c.email, c.phone_number
		FROM orders o
		LEFT JOIN customers c ON o.customer_id = c.id
		WHERE o.order_id = $1
	`
	o, err := scanOrder(c.db.QueryRowContext(ctx, query, orderID))
	if err != nil {
		return Order{}, err
	}

	items, err := c.loadItems(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	o.Items = items
	o.TotalPrice, o.TotalQuantity = totals(items)
	return o, nil
}

// ListOrders returns one page of matching orders plus the total match count.
func (c *Conf) ListOrders(ctx context.Context, f Filter, limit, offset int) ([]Order, int, error) {
	where, args := f.whereClause(time.Now())

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM orders o %s`, where)
	var total int
	if err := c.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting orders: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT o.order_id, o.created_by, o.status, o.created_at,
		       c.id, c.name, c.email, c.phone_number
		FROM orders o
		LEFT JOIN customers c ON o.customer_id = c.id
		%s
		ORDER BY o.created_at, o.order_id
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	list := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning order: %w", err)
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating orders: %w", err)
	}

	for i := range list {
		items, err := c.loadItems(ctx, list[i].OrderID)
		if err != nil {
			return nil, 0, err
		}
		list[i].Items = items
		list[i].TotalPrice, list[i].TotalQuantity = totals(items)
	}
	return list, total, nil
}

// Revenue sums price*quantity over the items of every order matching the filter.
// No matches means zero revenue, not an error.
func (c *Conf) Revenue(ctx context.Context, f Filter) (MonthRevenueTotal, error) {
	where, args := f.whereClause(time.Now())
	rows, err := c.revenueRows(ctx, where, args)
	if err != nil {
		return MonthRevenueTotal{}, err
	}
	return MonthRevenueTotal{TotalRevenue: sumRevenue(rows)}, nil
}

// MonthlyRevenue returns per-calendar-month revenue, ascending, omitting months
// with no orders.
func (c *Conf) MonthlyRevenue(ctx context.Context) ([]MonthRevenue, error) {
	rows, err := c.revenueRows(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	return monthlyRevenue(rows), nil
}

// TopSelling returns the five products with the highest total quantity sold.
func (c *Conf) TopSelling(ctx context.Context) ([]ProductSales, error) {
	query := `
		SELECT p.id, p.name, p.price, SUM(oi.quantity) AS total_sold
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		GROUP BY p.id, p.name, p.price
		ORDER BY total_sold DESC, p.id ASC
		LIMIT 5
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying top-selling products: %w", err)
	}
	defer rows.Close()

	sales := []ProductSales{}
	for rows.Next() {
		var s ProductSales
		if err := rows.Scan(&s.ID, &s.Name, &s.Price, &s.TotalSold); err != nil {
			return nil, fmt.Errorf("scanning product sales: %w", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product sales: %w", err)
	}
	return sales, nil
}

func (c *Conf) revenueRows(ctx context.Context, where string, args []any) ([]revenueRow, error) {
	query := fmt.Sprintf(`
		SELECT p.price, oi.quantity, o.created_at
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.order_id
		JOIN products p ON oi.product_id = p.id
		%s
	`, where)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying revenue rows: %w", err)
	}
	defer rows.Close()

	var result []revenueRow
	for rows.Next() {
		var r revenueRow
		if err := rows.Scan(&r.price, &r.quantity, &r.createdAt); err != nil {
			return nil, fmt.Errorf("scanning revenue row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating revenue rows: %w", err)
	}
	return result, nil
}

func (c *Conf) loadItems(ctx context.Context, orderID uuid.UUID) ([]Item, error) {
	query := `
		SELECT oi.id, oi.product_id, p.name, p.price, oi.quantity
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`
	rows, err := c.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.ProductPrice, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}
		it.Subtotal = it.ProductPrice.Mul(decimalFromInt(it.Quantity))
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order items: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	var createdBy sql.NullInt64
	var custID sql.NullInt64
	var custName, custEmail, custPhone sql.NullString

	err := row.Scan(&o.OrderID, &createdBy, &o.Status, &o.CreatedAt,
		&custID, &custName, &custEmail, &custPhone)
	if err != nil {
		return Order{}, err
	}

	if createdBy.Valid {
		o.CreatedBy = &createdBy.Int64
	}
	if custID.Valid {
		o.Customer = &Customer{
			ID:    custID.Int64,
			Name:  custName.String,
			Email: custEmail.String,
		}
		if custPhone.Valid {
			o.Customer.PhoneNumber = &custPhone.String
		}
	}
	return o, nil
}

// insertItems verifies each referenced product and inserts the entries. Runs
// inside the caller's transaction so a bad entry aborts the whole write.
func insertItems(ctx context.Context, tx *sql.Tx, orderID uuid.UUID, entries []ItemEntry) error {
	for _, entry := range entries {
		if err := checkProduct(ctx, tx, entry.ProductID); err != nil {
			return err
		}
		query := `INSERT INTO order_items (order_id, product_id, quantity) VALUES ($1, $2, $3)`
		if _, err := tx.ExecContext(ctx, query, orderID, entry.ProductID, entry.Quantity); err != nil {
			return fmt.Errorf("inserting order item: %w", err)
		}
	}
	return nil
}

func existingItemIDs(ctx context.Context, tx *sql.Tx, orderID uuid.UUID) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying existing item ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning item id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item ids: %w", err)
	}
	return ids, nil
}

func checkProduct(ctx context.Context, tx *sql.Tx, productID int64) error {
	var exists bool
	err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking product %d: %w", productID, err)
	}
	if !exists {
		return fielderrs.New("product", fmt.Sprintf("Invalid product id %d.", productID))
	}
	return nil
}

func checkCustomer(ctx context.Context, tx *sql.Tx, customerID *int64) error {
	if customerID == nil {
		return nil
	}
	var exists bool
	err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, *customerID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking customer %d: %w", *customerID, err)
	}
	if !exists {
		return fielderrs.New("customer", fmt.Sprintf("Invalid customer id %d.", *customerID))
	}
	return nil
}

// lockOrder takes a row lock on the order, or reports sql.ErrNoRows when it
// does not exist.
func lockOrder(ctx context.Context, tx *sql.Tx, orderID uuid.UUID) error {
	var id uuid.UUID
	err := tx.QueryRowContext(ctx, `SELECT order_id FROM orders WHERE order_id = $1 FOR UPDATE`, orderID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("locking order: %w", err)
	}
	return nil
}

func (c *Conf) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if er := tx.Rollback(); er != nil && !errors.Is(er, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback withTx: %w", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit withTx: %w", err)
	}
	return nil
}
