package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/wallspace/wallspace-api/internal/pkg/database"
)

// Repository defines user data access interface
type Repository interface {
	Create(ctx context.Context, user *User) error
	CreateWithIdentity(ctx context.Context, user *User, identity *Identity) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateEmailVerified(ctx context.Context, id uuid.UUID, verified bool) error

	LinkIdentity(ctx context.Context, identity *Identity) error
	GetIdentity(ctx context.Context, provider, subject string) (*Identity, error)
	ListIdentities(ctx context.Context, userID uuid.UUID) ([]*Identity, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new user repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const userColumns = `id, email, password_hash, role, name, email_verified, created_at, updated_at`

const insertUser = `
	INSERT INTO users (id, email, password_hash, role, name, email_verified)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at, updated_at
`

const insertIdentity = `
	INSERT INTO user_identities (id, user_id, provider, provider_subject, email)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at
`

// Create inserts a user; a taken email maps to ErrEmailAlreadyExists
func (r *repository) Create(ctx context.Context, u *User) error {
	err := r.db.QueryRowxContext(ctx, insertUser,
		u.ID, u.Email, u.PasswordHash, u.Role, u.Name, u.EmailVerified,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return mapWriteError("create user", err)
	}
	return nil
}

// CreateWithIdentity inserts a user and its first identity atomically
func (r *repository) CreateWithIdentity(ctx context.Context, u *User, identity *Identity) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowxContext(ctx, insertUser,
		u.ID, u.Email, u.PasswordHash, u.Role, u.Name, u.EmailVerified,
	).Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapWriteError("create user", err)
	}

	identity.UserID = u.ID
	if err := tx.QueryRowxContext(ctx, insertIdentity,
		identity.ID, identity.UserID, identity.Provider, identity.ProviderSubject, identity.Email,
	).Scan(&identity.CreatedAt); err != nil {
		return mapWriteError("create identity", err)
	}

	return tx.Commit()
}

// GetByID returns user by ID, nil when absent
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns user by lower-cased email, nil when absent
func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *repository) UpdateEmailVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET email_verified = $2, updated_at = NOW() WHERE id = $1`, id, verified)
	if err != nil {
		return fmt.Errorf("update email_verified: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// LinkIdentity attaches identity to identity.UserID
func (r *repository) LinkIdentity(ctx context.Context, identity *Identity) error {
	err := r.db.QueryRowxContext(ctx, insertIdentity,
		identity.ID, identity.UserID, identity.Provider, identity.ProviderSubject, identity.Email,
	).Scan(&identity.CreatedAt)
	if err != nil {
		return mapWriteError("link identity", err)
	}
	return nil
}

// GetIdentity finds an identity by provider subject, nil when absent
func (r *repository) GetIdentity(ctx context.Context, provider, subject string) (*Identity, error) {
	var identity Identity
	err := r.db.GetContext(ctx, &identity, `
		SELECT id, user_id, provider, provider_subject, email, created_at
		FROM user_identities
		WHERE provider = $1 AND provider_subject = $2
	`, provider, subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &identity, nil
}

func (r *repository) ListIdentities(ctx context.Context, userID uuid.UUID) ([]*Identity, error) {
	var identities []*Identity
	err := r.db.SelectContext(ctx, &identities, `
		SELECT id, user_id, provider, provider_subject, email, created_at
		FROM user_identities
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	return identities, nil
}

func mapWriteError(op string, err error) error {
	switch {
	case database.IsViolation(err, database.SQLStateUniqueViolation, "users_email_key"):
		return fmt.Errorf("%s: %w: %w", op, ErrEmailAlreadyExists, err)
	case database.IsViolation(err, database.SQLStateUniqueViolation, "user_identities_provider_subject_key"):
		return fmt.Errorf("%s: %w: %w", op, ErrIdentityAlreadyUsed, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
