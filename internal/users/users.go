// Package users persists identity records and verifies credentials.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"order-management-service/pkg/fielderrs"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

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

// InsertUser hashes the password and creates the user. A duplicate email surfaces
// as a field error, not a 500.
func (c *Conf) InsertUser(ctx context.Context, nu NewUser) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hashing password: %w", err)
	}

	query := `
		INSERT INTO users (email, first_name, last_name, phone_number, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, first_name, last_name, phone_number, is_staff, is_superuser, created_at
	`
	var u User
	err = c.db.QueryRowContext(ctx, query, nu.Email, nu.FirstName, nu.LastName, nu.PhoneNumber, string(hash)).
		Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PhoneNumber, &u.IsStaff, &u.IsSuperuser, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, fielderrs.New("email", "user with this email already exists.")
		}
		return User{}, fmt.Errorf("inserting user: %w", err)
	}
	return u, nil
}

// Authenticate checks the credentials and returns the user on a match.
func (c *Conf) Authenticate(ctx context.Context, email, password string) (User, error) {
	query := `
		SELECT id, email, first_name, last_name, phone_number, is_staff, is_superuser, created_at, password_hash
		FROM users
		WHERE email = $1
	`
	var u User
	var hash string
	err := c.db.QueryRowContext(ctx, query, email).
		Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PhoneNumber, &u.IsStaff, &u.IsSuperuser, &u.CreatedAt, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("querying user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// ErrInvalidCredentials hides whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

func (c *Conf) GetUserByID(ctx context.Context, id int64) (User, error) {
	query := `
		SELECT id, email, first_name, last_name, phone_number, is_staff, is_superuser, created_at
		FROM users
		WHERE id = $1
	`
	var u User
	err := c.db.QueryRowContext(ctx, query, id).
		Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PhoneNumber, &u.IsStaff, &u.IsSuperuser, &u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (c *Conf) ListUsers(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, email, first_name, last_name, phone_number, is_staff, is_superuser, created_at
		FROM users
		ORDER BY id
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PhoneNumber, &u.IsStaff, &u.IsSuperuser, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}
