package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"gateway-service/internal/auth"
	"gateway-service/internal/db"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `
	id, email, name, provider, provider_id, profile_image, phone_number,
	is_active, created_at, updated_at, last_login_at
`

func (s *PostgresStore) Create(ctx context.Context, u *User) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, name, provider, provider_id, profile_image,
		                   phone_number, is_active, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`,
		u.Email,
		u.Name,
		u.Provider.String(),
		u.ProviderID,
		u.ProfileImage,
		u.PhoneNumber,
		u.IsActive,
		nullTime(u.LastLoginAt),
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)

	return mapWriteError(err)
}

func (s *PostgresStore) Update(ctx context.Context, u *User) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE users
		SET email = $2, name = $3, profile_image = $4, phone_number = $5,
		    is_active = $6, last_login_at = $7, updated_at = $8
		WHERE id = $1
		RETURNING updated_at
	`,
		u.ID,
		u.Email,
		u.Name,
		u.ProfileImage,
		u.PhoneNumber,
		u.IsActive,
		nullTime(u.LastLoginAt),
		u.UpdatedAt,
	).Scan(&u.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	return mapWriteError(err)
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*User, error) {
	return s.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

func (s *PostgresStore) FindByProvider(ctx context.Context, provider auth.Provider, providerID string) (*User, error) {
	return s.queryOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE provider = $1 AND provider_id = $2`,
		provider.String(), providerID,
	)
}

func (s *PostgresStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *PostgresStore) queryOne(ctx context.Context, query string, args ...any) (*User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*User, error) {
	var (
		u         User
		provider  string
		lastLogin pq.NullTime
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&provider,
		&u.ProviderID,
		&u.ProfileImage,
		&u.PhoneNumber,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
		&lastLogin,
	)
	if err != nil {
		return nil, err
	}
	u.Provider = auth.Provider(provider)
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return &u, nil
}

func nullTime(t *time.Time) pq.NullTime {
	if t == nil {
		return pq.NullTime{}
	}
	return pq.NullTime{Time: *t, Valid: true}
}

func mapWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicateUser
	}
	return err
}
