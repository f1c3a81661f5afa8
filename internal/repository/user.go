package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/usergate/usergate-go/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository handles user persistence operations. Users are keyed by
// email; there is no surrogate id.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user record.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (email, username, password, role, address1, address2) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		user.Email, user.Username, user.Password, user.Role, user.Address1, user.Address2,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT email, username, password, role, address1, address2 FROM users WHERE email = ?`

	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.Email, &user.Username, &user.Password, &user.Role, &user.Address1, &user.Address2,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// List retrieves all user records.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `SELECT email, username, password, role, address1, address2 FROM users ORDER BY email`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var user model.User
		if err := rows.Scan(
			&user.Email, &user.Username, &user.Password, &user.Role, &user.Address1, &user.Address2,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// Update replaces the record for the user's email. Returns ErrUserNotFound
// when no such user exists.
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	query := `UPDATE users SET username = ?, password = ?, role = ?, address1 = ?, address2 = ? WHERE email = ?`

	result, err := r.db.ExecContext(ctx, query,
		user.Username, user.Password, user.Role, user.Address1, user.Address2, user.Email,
	)
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

// Delete removes the user with the given email. Returns ErrUserNotFound
// when no such user exists.
func (r *UserRepository) Delete(ctx context.Context, email string) error {
	query := `DELETE FROM users WHERE email = ?`

	result, err := r.db.ExecContext(ctx, query, email)
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

// isDuplicateEntryError checks if a MySQL error is a duplicate entry error (code 1062).
func isDuplicateEntryError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
