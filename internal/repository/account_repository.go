package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"freshmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// accountRepository stores customers and vendors in separate tables.
type accountRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAccountRepository creates a new PostgreSQL-backed account repository.
func NewAccountRepository(pool *pgxpool.Pool, logger zerolog.Logger) AccountRepository {
	return &accountRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "account").Logger(),
	}
}

// accountSelect returns the column list for role. Customers have no store name.
func accountSelect(role model.Role) (string, error) {
	switch role {
	case model.RoleCustomer:
		return `SELECT id, name, email, password_hash, phone, address, NULL::text, created_at, updated_at FROM customers`, nil
	case model.RoleVendor:
		return `SELECT id, name, email, password_hash, phone, address, store_name, created_at, updated_at FROM vendors`, nil
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}
}

func scanAccount(row pgx.Row, role model.Role) (*model.Account, error) {
	a := &model.Account{Role: role}
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Phone, &a.Address, &a.StoreName, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Create inserts an account into the table of its role.
func (r *accountRepository) Create(ctx context.Context, a *model.Account) error {
	var (
		query string
		args  []any
	)

	switch a.Role {
	case model.RoleCustomer:
		query = `
			INSERT INTO customers (id, name, email, password_hash, phone, address, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		args = []any{a.ID, a.Name, a.Email, a.PasswordHash, a.Phone, a.Address, a.CreatedAt, a.UpdatedAt}
	case model.RoleVendor:
		query = `
			INSERT INTO vendors (id, name, email, password_hash, phone, address, store_name, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		args = []any{a.ID, a.Name, a.Email, a.PasswordHash, a.Phone, a.Address, a.StoreName, a.CreatedAt, a.UpdatedAt}
	default:
		return fmt.Errorf("unknown role %q", a.Role)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return model.ErrEmailTaken
		}
		r.logger.Error().Err(err).Str("role", string(a.Role)).Msg("failed to create account")
		return fmt.Errorf("failed to create account: %w", err)
	}

	r.logger.Debug().
		Str("account_id", a.ID.String()).
		Str("role", string(a.Role)).
		Msg("account created successfully")
	return nil
}

// GetByEmail looks an account up by its email, compared case-insensitively.
func (r *accountRepository) GetByEmail(ctx context.Context, role model.Role, email string) (*model.Account, error) {
	base, err := accountSelect(role)
	if err != nil {
		return nil, err
	}
	return r.getOne(ctx, role, base+` WHERE lower(email) = $1`, strings.ToLower(email))
}

func (r *accountRepository) GetByID(ctx context.Context, role model.Role, id uuid.UUID) (*model.Account, error) {
	base, err := accountSelect(role)
	if err != nil {
		return nil, err
	}
	return r.getOne(ctx, role, base+` WHERE id = $1`, id)
}

func (r *accountRepository) getOne(ctx context.Context, role model.Role, query string, arg any) (*model.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, query, arg), role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("role", string(role)).Msg("failed to query account")
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return a, nil
}
