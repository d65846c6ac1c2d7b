package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/garnizeh/interviewdesk/internal/models"
)

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) (string, error) {
	if u == nil {
		return "", fmt.Errorf("user is nil")
	}
	if u.ID == "" {
		u.ID = newID()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Updated = now()

	_, err := r.conn.Exec(ctx, `INSERT INTO users (id, email, name, company, password_hash, updated) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.Company, u.PasswordHash, u.Updated)
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return u.ID, nil
}

func (r *SQLiteRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.conn.Get(ctx, &u, `SELECT id, email, name, company, password_hash, updated FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *SQLiteRepo) UpdateUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}
	u.Updated = now()
	_, err := r.conn.Exec(ctx, `UPDATE users SET name = ?, company = ?, password_hash = ?, updated = ? WHERE id = ?`,
		u.Name, u.Company, u.PasswordHash, u.Updated, u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}
