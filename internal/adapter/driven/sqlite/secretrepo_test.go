package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/secm/internal/domain/model"
)

func TestSecretRepo_WriteAndRead(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSecretRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Write(ctx, "api", "abc123"))

	val, found, err := repo.Read(ctx, "api")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "abc123", val)
}

func TestSecretRepo_ReadMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSecretRepo(db)

	val, found, err := repo.Read(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "", val)
}

func TestSecretRepo_WriteUpserts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSecretRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Write(ctx, "api", "old-value"))
	require.NoError(t, repo.Write(ctx, "api", "new-value"))

	secrets, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Secret{{Name: "api", Value: "new-value"}}, secrets)
}

func TestSecretRepo_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSecretRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Write(ctx, "api", "v1"))
	require.NoError(t, repo.Update(ctx, "api", "v2"))

	val, _, err := repo.Read(ctx, "api")
	require.NoError(t, err)
	assert.Equal(t, "v2", val)
}

func TestSecretRepo_UpdateMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSecretRepo(db)

	err := repo.Update(context.Background(), "ghost", "v")
	require.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, model.KindStorage, model.KindOf(err))
}

func TestSecretRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSecretRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Write(ctx, "api", "v"))
	require.NoError(t, repo.Delete(ctx, "api"))

	_, found, err := repo.Read(ctx, "api")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSecretRepo_DeleteMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSecretRepo(db)

	err := repo.Delete(context.Background(), "ghost")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestSecretRepo_GetAllOrdered(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSecretRepo(db)
	ctx := context.Background()

	for _, name := range []string{"github", "aws-secret", "aws-key"} {
		require.NoError(t, repo.Write(ctx, name, "v-"+name))
	}

	secrets, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, secrets, 3)
	assert.Equal(t, "aws-key", secrets[0].Name)
	assert.Equal(t, "aws-secret", secrets[1].Name)
	assert.Equal(t, "github", secrets[2].Name)
}

func TestSecretRepo_GetAllEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSecretRepo(db)

	secrets, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, secrets)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, RunMigrations(db.Writer))
}

func TestOpenSecretRepo_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.db")
	ctx := context.Background()

	repo, err := OpenSecretRepo(ctx, path)
	require.NoError(t, err)
	require.NoError(t, repo.Write(ctx, "api", "abc123"))
	require.NoError(t, repo.Close())

	repo, err = OpenSecretRepo(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	val, found, err := repo.Read(ctx, "api")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "abc123", val)
}

func TestOpenSecretRepo_AcceptsPreexistingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")
	ctx := context.Background()

	db, err := NewDB(ctx, path)
	require.NoError(t, err)
	_, err = db.Writer.ExecContext(ctx, `CREATE TABLE secrets (name TEXT PRIMARY KEY, value TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Writer.ExecContext(ctx, `INSERT INTO secrets (name, value) VALUES ('api', 'abc123')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	repo, err := OpenSecretRepo(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	secrets, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Secret{{Name: "api", Value: "abc123"}}, secrets)
}
