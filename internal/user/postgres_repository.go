package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell/inkwell/internal/identity"
)

const userColumns = `id, email, google_id, name, avatar_url, role, is_active,
	       refresh_fingerprint, created_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// UpsertFromIdentity merges fresh provider claims into an existing user, or
// creates one. Email is tried first; the provider subject id is the fallback
// so a user whose provider email changed is re-linked instead of duplicated.
// Role and is_active are never altered for existing users.
func (r *PostgresRepository) UpsertFromIdentity(ctx context.Context, ident *identity.Identity, role Role) (*User, error) {
	avatarURL := nullable(ident.AvatarURL)
	googleID := nullable(ident.SubjectID)

	byEmail := `
		UPDATE users
		SET name = $2, avatar_url = $3, google_id = $4, updated_at = NOW()
		WHERE email = $1
		RETURNING ` + userColumns

	u, err := r.scanRow(r.pool.QueryRow(ctx, byEmail, ident.Email, ident.Name, avatarURL, googleID))
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("updating user by email: %w", err)
	}

	if googleID != nil {
		bySubject := `
			UPDATE users
			SET email = $2, name = $3, avatar_url = $4, updated_at = NOW()
			WHERE google_id = $1
			RETURNING ` + userColumns

		u, err = r.scanRow(r.pool.QueryRow(ctx, bySubject, googleID, ident.Email, ident.Name, avatarURL))
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("updating user by subject id: %w", err)
		}
	}

	// ON CONFLICT covers a concurrent first login for the same email.
	insert := `
		INSERT INTO users (email, google_id, name, avatar_url, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name, avatar_url = EXCLUDED.avatar_url,
		    google_id = EXCLUDED.google_id, updated_at = NOW()
		RETURNING ` + userColumns

	u, err = r.scanRow(r.pool.QueryRow(ctx, insert, ident.Email, googleID, ident.Name, avatarURL, role))
	if err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	return u, nil
}

// GetActiveByID retrieves a user by id, filtering on is_active in the query
// itself so a deactivation cannot slip in between lookup and check.
func (r *PostgresRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1 AND is_active = TRUE`

	u, err := r.scanRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying active user: %w", err)
	}

	return u, nil
}

// GetByID retrieves a single user by its UUID regardless of active flag.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`

	u, err := r.scanRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}

	return u, nil
}

// SetRefreshFingerprint overwrites the stored fingerprint unconditionally.
func (r *PostgresRepository) SetRefreshFingerprint(ctx context.Context, id uuid.UUID, fingerprint *string) error {
	query := `
		UPDATE users
		SET refresh_fingerprint = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, fingerprint)
	if err != nil {
		return fmt.Errorf("setting refresh fingerprint: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// RotateRefreshFingerprint performs the atomic compare-and-swap that enforces
// the single-active-session invariant. Zero affected rows means the presented
// token lost the race or was already invalidated.
func (r *PostgresRepository) RotateRefreshFingerprint(ctx context.Context, id uuid.UUID, oldFingerprint, newFingerprint string) error {
	query := `
		UPDATE users
		SET refresh_fingerprint = $3, updated_at = NOW()
		WHERE id = $1 AND refresh_fingerprint = $2 AND is_active = TRUE`

	result, err := r.pool.Exec(ctx, query, id, oldFingerprint, newFingerprint)
	if err != nil {
		return fmt.Errorf("rotating refresh fingerprint: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrFingerprintMismatch
	}

	return nil
}

// UpdateProfile updates the user's own display fields.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name string, avatarURL *string) (*User, error) {
	query := `
		UPDATE users
		SET name = $2, avatar_url = COALESCE($3, avatar_url), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := r.scanRow(r.pool.QueryRow(ctx, query, id, name, avatarURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	return u, nil
}

// List retrieves a page of users ordered by creation time, plus the total count.
func (r *PostgresRepository) List(ctx context.Context, page, limit int) ([]User, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := scanUser(rows, &u); err != nil {
			return nil, 0, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating user rows: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	return users, total, nil
}

// AdminUpdate applies role/active changes. Deactivation clears the stored
// refresh fingerprint so the session dies with the account.
func (r *PostgresRepository) AdminUpdate(ctx context.Context, id uuid.UUID, update AdminUpdate) (*User, error) {
	query := `
		UPDATE users
		SET role = COALESCE($2, role),
		    is_active = COALESCE($3, is_active),
		    refresh_fingerprint = CASE WHEN $3 = FALSE THEN NULL ELSE refresh_fingerprint END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := r.scanRow(r.pool.QueryRow(ctx, query, id, update.Role, update.IsActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return u, nil
}

// Delete removes a user record permanently.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *PostgresRepository) scanRow(row pgx.Row) (*User, error) {
	var u User
	if err := scanUser(row, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func scanUser(row pgx.Row, u *User) error {
	return row.Scan(
		&u.ID, &u.Email, &u.GoogleID, &u.Name, &u.AvatarURL,
		&u.Role, &u.IsActive, &u.RefreshFingerprint,
		&u.CreatedAt, &u.UpdatedAt,
	)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
