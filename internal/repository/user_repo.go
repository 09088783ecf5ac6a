package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"powerbill/internal/models"
)

// ErrUserNotFound represents missing user rows.
var ErrUserNotFound = errors.New("user not found")

// UserRepository handles CRUD for the users table.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository returns repository instance.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	const query = `
		INSERT INTO users (name, email, password_hash, address, meter_no, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Address,
		user.MeterNo,
		user.Phone,
	).Scan(&user.ID, &user.CreatedAt)
}

// GetByID fetches a user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const query = `
		SELECT id, name, email, password_hash, address, meter_no, phone, created_at
		FROM users
		WHERE id = $1
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByIdentifier fetches a user whose email or meter number matches the
// given identifier.
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	const query = `
		SELECT id, name, email, password_hash, address, meter_no, phone, created_at
		FROM users
		WHERE email = $1 OR meter_no = $2
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, strings.ToLower(identifier), identifier))
}

// List returns all users ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	const query = `
		SELECT id, name, email, password_hash, address, meter_no, phone, created_at
		FROM users
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&u.Address,
			&u.MeterNo,
			&u.Phone,
			&u.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateProfile updates the mutable profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	const query = `
		UPDATE users
		SET name = $2, address = $3, phone = $4
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Address, user.Phone)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $2
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, userID, passwordHash)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Count returns the number of registered users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Address,
		&u.MeterNo,
		&u.Phone,
		&u.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
