package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scholarshipserver/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersStore struct {
	pool *pgxpool.Pool
}

func NewUsersStore(pool *pgxpool.Pool) *UsersStore {
	return &UsersStore{pool: pool}
}

const userColumns = `id, user_id, name, email, role, created_at, updated_at`

func (s *UsersStore) CreateUser(ctx context.Context, name, email, passwordHash string, role domain.Role) (domain.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("begin create user: %w", err)
	}
	defer tx.Rollback(ctx)

	seq, err := nextSequence(ctx, tx, domain.EntityUser)
	if err != nil {
		return domain.User{}, err
	}

	const q = `
		INSERT INTO users (id, user_id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	u, err := scanUserRow(tx.QueryRow(ctx, q, uuid.NewString(), seq, name, email, passwordHash, string(role)))
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23505" && pgerr.ConstraintName == "users_email_uq" {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.User{}, fmt.Errorf("commit create user: %w", err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, domain.ErrNotFound
	}

	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUserRow(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error) {
	const q = `
		SELECT id, user_id, name, email, password_hash, role,
		       reset_token_hash, reset_token_expires_at, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	u, err := scanUserWithPasswordRow(s.pool.QueryRow(ctx, q, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserWithPassword{}, domain.ErrNotFound
		}
		return domain.UserWithPassword{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByResetTokenHash(ctx context.Context, tokenHash string) (domain.UserWithPassword, error) {
	const q = `
		SELECT id, user_id, name, email, password_hash, role,
		       reset_token_hash, reset_token_expires_at, created_at, updated_at
		FROM users
		WHERE reset_token_hash = $1
	`
	u, err := scanUserWithPasswordRow(s.pool.QueryRow(ctx, q, tokenHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserWithPassword{}, domain.ErrNotFound
		}
		return domain.UserWithPassword{}, fmt.Errorf("get user by reset token: %w", err)
	}
	return u, nil
}

func (s *UsersStore) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = now()
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, q, userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *UsersStore) ClearResetToken(ctx context.Context, userID string) error {
	const q = `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = now()
		WHERE id = $1
	`
	if _, err := s.pool.Exec(ctx, q, userID); err != nil {
		return fmt.Errorf("clear reset token: %w", err)
	}
	return nil
}

// SetPassword replaces the credential and clears any outstanding reset
// token in the same statement, so a consumed token cannot be replayed.
func (s *UsersStore) SetPassword(ctx context.Context, userID, passwordHash string) error {
	const q = `
		UPDATE users
		SET password_hash = $2, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = now()
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, q, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *UsersStore) ListUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY user_id`
	rows, err := s.pool.Query(ctx, q, string(role))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UsersStore) SetUserRole(ctx context.Context, userID string, role domain.Role) (domain.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return domain.User{}, domain.ErrNotFound
	}

	const q = `
		UPDATE users
		SET role = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	u, err := scanUserRow(s.pool.QueryRow(ctx, q, userID, string(role)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("set user role: %w", err)
	}
	return u, nil
}

func (s *UsersStore) DeleteUser(ctx context.Context, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return domain.ErrNotFound
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23503" {
			return domain.ErrUserHasApplications
		}
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *UsersStore) CountUsersByRole(ctx context.Context, role domain.Role) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE role = $1`, string(role)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func scanUserRow(row pgx.Row) (domain.User, error) {
	var (
		u      domain.User
		idUUID pgtype.UUID
		role   string
	)
	err := row.Scan(&idUUID, &u.UserID, &u.Name, &u.Email, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, err
	}
	u.ID = uuidOrEmpty(idUUID)
	u.Role = domain.Role(role)
	return u, nil
}

func scanUserWithPasswordRow(row pgx.Row) (domain.UserWithPassword, error) {
	var (
		u         domain.UserWithPassword
		idUUID    pgtype.UUID
		role      string
		resetHash pgtype.Text
		resetExp  pgtype.Timestamptz
	)
	err := row.Scan(&idUUID, &u.UserID, &u.Name, &u.Email, &u.PasswordHash, &role,
		&resetHash, &resetExp, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.UserWithPassword{}, err
	}
	u.ID = uuidOrEmpty(idUUID)
	u.Role = domain.Role(role)
	u.ResetTokenHash = textOrEmpty(resetHash)
	u.ResetTokenExpiresAt = timestamptzPtr(resetExp)
	return u, nil
}
