package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store"
)

const accountColumns = `account_id, username, first_name, last_name, password_hash,
	is_superadmin, is_client, is_admin, tenant_id, created_at, updated_at`

// CreateAccount creates a new account in the database.
func (s *txStore) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (
			account_id, username, first_name, last_name, password_hash,
			is_superadmin, is_client, is_admin, tenant_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	_, err := s.tx.Exec(ctx, query,
		account.AccountID,
		account.Username,
		account.FirstName,
		account.LastName,
		account.PasswordHash,
		account.IsSuperadmin,
		account.IsClient,
		account.IsAdmin,
		account.TenantID,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return mapPostgresError(fmt.Errorf("failed to create account: %w", err))
	}

	log.Debug().
		Str("account_id", account.AccountID.String()).
		Str("username", account.Username).
		Str("role", string(account.Role().Kind)).
		Msg("Created account")

	return nil
}

// GetAccount retrieves an account by ID.
func (s *txStore) GetAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1`
	return s.getAccount(ctx, query, accountID)
}

// GetAccountByUsername retrieves an account by username.
func (s *txStore) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	return s.getAccount(ctx, query, username)
}

func (s *txStore) getAccount(ctx context.Context, query string, arg any) (*models.Account, error) {
	account, err := scanAccount(s.tx.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrAccountNotFound
		}
		return nil, mapPostgresError(fmt.Errorf("failed to get account: %w", err))
	}

	return account, nil
}

// UpdateAccount updates names, username and password hash of an account.
func (s *txStore) UpdateAccount(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts SET
			username = $2,
			first_name = $3,
			last_name = $4,
			password_hash = $5,
			updated_at = $6
		WHERE account_id = $1
		RETURNING ` + accountColumns

	updated, err := scanAccount(s.tx.QueryRow(ctx, query,
		account.AccountID,
		account.Username,
		account.FirstName,
		account.LastName,
		account.PasswordHash,
		time.Now(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrAccountNotFound
		}
		return mapPostgresError(fmt.Errorf("failed to update account: %w", err))
	}

	*account = *updated

	log.Debug().
		Str("account_id", account.AccountID.String()).
		Msg("Updated account")

	return nil
}

// DeleteAccount deletes an account and everything it owns.
func (s *txStore) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	if err := s.deleteAccount(ctx, accountID); err != nil {
		return err
	}

	log.Info().
		Str("account_id", accountID.String()).
		Msg("Deleted account")

	return nil
}

func (s *txStore) deleteAccount(ctx context.Context, accountID uuid.UUID) error {
	if err := s.deleteAssignmentByGuard(ctx, accountID); err != nil {
		return err
	}

	if _, err := s.tx.Exec(ctx, `DELETE FROM incidents WHERE guard_id = $1`, accountID); err != nil {
		return mapPostgresError(fmt.Errorf("failed to delete incidents: %w", err))
	}

	result, err := s.tx.Exec(ctx, `DELETE FROM accounts WHERE account_id = $1`, accountID)
	if err != nil {
		return mapPostgresError(fmt.Errorf("failed to delete account: %w", err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrAccountNotFound
	}

	return nil
}

// ListAccounts returns accounts matching the filter ordered by username.
func (s *txStore) ListAccounts(ctx context.Context, filter store.AccountFilter) ([]*models.Account, error) {
	var (
		where []string
		args  []any
	)

	if filter.TenantID != nil {
		args = append(args, *filter.TenantID)
		where = append(where, fmt.Sprintf("tenant_id = $%d", len(args)))
	}

	switch filter.Kind {
	case models.RoleSuperadmin:
		where = append(where, "is_superadmin")
	case models.RoleClient:
		where = append(where, "NOT is_superadmin AND is_client")
	case models.RoleAdmin:
		where = append(where, "NOT is_superadmin AND NOT is_client AND is_admin")
	case models.RoleGuard:
		where = append(where, "NOT is_superadmin AND NOT is_client AND NOT is_admin")
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY username`

	rows, err := s.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPostgresError(fmt.Errorf("failed to list accounts: %w", err))
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(fmt.Errorf("error iterating accounts: %w", err))
	}

	return accounts, nil
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.AccountID,
		&account.Username,
		&account.FirstName,
		&account.LastName,
		&account.PasswordHash,
		&account.IsSuperadmin,
		&account.IsClient,
		&account.IsAdmin,
		&account.TenantID,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}
