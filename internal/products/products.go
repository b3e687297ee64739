// Package products persists catalog entries and serves the filtered listings.
package products

import (
	"context"
	"database/sql"
	"fmt"

	"order-management-service/pkg/fielderrs"

	"github.com/shopspring/decimal"
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

func validateNewProduct(np NewProduct) error {
	fe := fielderrs.FieldErrors{}
	if np.Price.IsNegative() {
		fe.Add("price", "Price cannot be negative.")
	}
	if np.Stock < 0 {
		fe.Add("stock", "Stock cannot be negative.")
	}
	if len(fe) > 0 {
		return fe
	}
	return nil
}

func (c *Conf) InsertProduct(ctx context.Context, np NewProduct) (Product, error) {
	if err := validateNewProduct(np); err != nil {
		return Product{}, err
	}

	query := `
		INSERT INTO products (name, description, price, stock, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, description, price, stock, active
	`
	return c.scanProduct(c.db.QueryRowContext(ctx, query, np.Name, np.Description, np.Price, np.Stock, np.Active))
}

func (c *Conf) GetProductByID(ctx context.Context, id int64) (Product, error) {
	query := `
		SELECT id, name, description, price, stock, active
		FROM products
		WHERE id = $1
	`
	return c.scanProduct(c.db.QueryRowContext(ctx, query, id))
}

// UpdateProduct replaces every mutable field (PUT semantics).
func (c *Conf) UpdateProduct(ctx context.Context, id int64, np NewProduct) (Product, error) {
	if err := validateNewProduct(np); err != nil {
		return Product{}, err
	}

	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock = $4, active = $5
		WHERE id = $6
		RETURNING id, name, description, price, stock, active
	`
	return c.scanProduct(c.db.QueryRowContext(ctx, query, np.Name, np.Description, np.Price, np.Stock, np.Active, id))
}

// PatchProduct overwrites only the fields present in the payload.
func (c *Conf) PatchProduct(ctx context.Context, id int64, up UpdateProduct) (Product, error) {
	current, err := c.GetProductByID(ctx, id)
	if err != nil {
		return Product{}, err
	}

	np := NewProduct{
		Name:        current.Name,
		Description: current.Description,
		Price:       current.Price,
		Stock:       current.Stock,
		Active:      current.Active,
	}
	if up.Name != nil {
		np.Name = *up.Name
	}
	if up.Description != nil {
		np.Description = *up.Description
	}
	if up.Price != nil {
		np.Price = *up.Price
	}
	if up.Stock != nil {
		np.Stock = *up.Stock
	}
	if up.Active != nil {
		np.Active = *up.Active
	}
	return c.UpdateProduct(ctx, id, np)
}

func (c *Conf) DeleteProduct(ctx context.Context, id int64) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
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

// ListProducts returns one page of matching products plus the total match count.
func (c *Conf) ListProducts(ctx context.Context, f Filter, limit, offset int) ([]Product, int, error) {
	where, args := f.whereClause()

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM products %s`, where)
	var total int
	if err := c.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting products: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, description, price, stock, active
		FROM products
		%s
		%s
		LIMIT $%d OFFSET $%d
	`, where, f.orderClause(), len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	list := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Active); err != nil {
			return nil, 0, fmt.Errorf("scanning product: %w", err)
		}
		p.InStock = p.Stock > 0
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating products: %w", err)
	}
	return list, total, nil
}

// ProductInfo returns the full catalog with its count and highest price.
func (c *Conf) ProductInfo(ctx context.Context) (Info, error) {
	all, _, err := c.ListProducts(ctx, Filter{}, allProductsLimit, 0)
	if err != nil {
		return Info{}, err
	}

	maxPrice := decimal.Zero
	for _, p := range all {
		if p.Price.GreaterThan(maxPrice) {
			maxPrice = p.Price
		}
	}
	return Info{Products: all, Count: len(all), MaxPrice: maxPrice}, nil
}

// allProductsLimit bounds the info endpoint query.
const allProductsLimit = 10000

func (c *Conf) scanProduct(row *sql.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Active)
	if err != nil {
		return Product{}, err
	}
	p.InStock = p.Stock > 0
	return p, nil
}
