package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/secm/internal/domain/model"
	"github.com/ericfisherdev/secm/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SecretStorage = (*SecretRepo)(nil)

// SecretRepo is the SQLite implementation of the SecretStorage port interface.
// Name uniqueness is enforced by the table's primary key.
type SecretRepo struct {
	db *DB
}

// NewSecretRepo creates a SecretRepo backed by an already migrated DB.
func NewSecretRepo(db *DB) *SecretRepo {
	return &SecretRepo{db: db}
}

// OpenSecretRepo opens the database at path, applies migrations, and returns a
// repo that owns the connection. Closing the repo closes the database.
func OpenSecretRepo(ctx context.Context, path string) (*SecretRepo, error) {
	db, err := NewDB(ctx, path)
	if err != nil {
		return nil, model.NewError(model.KindStorage, "open", err)
	}
	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, model.NewError(model.KindStorage, "open", err)
	}
	return NewSecretRepo(db), nil
}

// Write inserts the secret or replaces the value of an existing one.
func (r *SecretRepo) Write(ctx context.Context, name, value string) error {
	const query = `INSERT INTO secrets (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`

	if _, err := r.db.Writer.ExecContext(ctx, query, name, value); err != nil {
		return model.NewError(model.KindStorage, "write", fmt.Errorf("write secret %q: %w", name, err))
	}
	return nil
}

// Read retrieves the value for name. Returns found=false if no row exists.
func (r *SecretRepo) Read(ctx context.Context, name string) (string, bool, error) {
	const query = `SELECT value FROM secrets WHERE name = ?`

	var value string
	err := r.db.Reader.QueryRowContext(ctx, query, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, model.NewError(model.KindStorage, "read", fmt.Errorf("read secret %q: %w", name, err))
	}
	return value, true, nil
}

// Update sets the value of an existing secret. Returns model.ErrNotFound if
// no row changed.
func (r *SecretRepo) Update(ctx context.Context, name, value string) error {
	const query = `UPDATE secrets SET value = ? WHERE name = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, value, name)
	if err != nil {
		return model.NewError(model.KindStorage, "update", fmt.Errorf("update secret %q: %w", name, err))
	}
	return checkAffected("update", name, result)
}

// Delete removes the secret. Returns model.ErrNotFound if it does not exist.
func (r *SecretRepo) Delete(ctx context.Context, name string) error {
	const query = `DELETE FROM secrets WHERE name = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, name)
	if err != nil {
		return model.NewError(model.KindStorage, "delete", fmt.Errorf("delete secret %q: %w", name, err))
	}
	return checkAffected("delete", name, result)
}

// GetAll returns all secrets ordered by name.
func (r *SecretRepo) GetAll(ctx context.Context) ([]model.Secret, error) {
	const query = `SELECT name, value FROM secrets ORDER BY name`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, model.NewError(model.KindStorage, "get all", fmt.Errorf("list secrets: %w", err))
	}
	defer rows.Close()

	secrets := []model.Secret{}
	for rows.Next() {
		var s model.Secret
		if err := rows.Scan(&s.Name, &s.Value); err != nil {
			return nil, model.NewError(model.KindStorage, "get all", fmt.Errorf("scan secret: %w", err))
		}
		secrets = append(secrets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewError(model.KindStorage, "get all", fmt.Errorf("iterate secrets: %w", err))
	}

	return secrets, nil
}

// Close closes the underlying database.
func (r *SecretRepo) Close() error {
	return r.db.Close()
}

func checkAffected(op, name string, result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return model.NewError(model.KindStorage, op, fmt.Errorf("check rows affected: %w", err))
	}
	if rows == 0 {
		return model.NewError(model.KindStorage, op, fmt.Errorf("%w: %q", model.ErrNotFound, name))
	}
	return nil
}
