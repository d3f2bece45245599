package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository serves credentials from the users table.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

// SeedUsers hashes users and inserts those not yet present. Existing rows,
// including changed passwords, are left alone.
func SeedUsers(ctx context.Context, db *sql.DB, users []User, cost int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Username, err)
		}
		query := `
			INSERT INTO users (username, name, password_hash)
			VALUES ($1, $2, $3)
			ON CONFLICT (username) DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, query, u.Username, u.Name, string(hash)); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}
	return tx.Commit()
}

func (r *postgresRepository) GetByUsername(ctx context.Context, username string) (*Credential, error) {
	c := &Credential{}
	query := `
		SELECT username, name, password_hash
		FROM users
		WHERE username = $1
	`
	err := r.db.QueryRowContext(ctx, query, username).Scan(&c.Username, &c.Name, &c.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
