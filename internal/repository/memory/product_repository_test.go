package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/meuestoque/internal/domain/models"
)

func TestProductRepository(t *testing.T) {
	repo := NewProductRepository(models.RecordFields{Name: "Monitor", UnitPrice: 10, Category: "A", Quantity: 1})

	created, err := repo.Create(models.RecordFields{Name: "Mouse", UnitPrice: 2, Category: "B", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, "2", created.ID)

	_, err = repo.Create(models.RecordFields{Name: "Mouse"})
	assert.ErrorIs(t, err, ErrDuplicateName)

	updated, err := repo.Update("2", models.RecordFields{Name: "Mouse", UnitPrice: 5, Category: "B", Quantity: 9})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Quantity)

	_, err = repo.Update("42", models.RecordFields{Name: "X"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete("1"))
	assert.ErrorIs(t, repo.Delete("1"), ErrNotFound)

	list := repo.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Mouse", list[0].Name)

	third, err := repo.Create(models.RecordFields{Name: "Cabo"})
	require.NoError(t, err)
	assert.Equal(t, "3", third.ID, "ids are never reused")
}

func TestUserRepository(t *testing.T) {
	repo, err := NewUserRepository(map[string]string{"admin": "admin"})
	require.NoError(t, err)

	assert.NoError(t, repo.Authenticate("admin", "admin"))
	assert.ErrorIs(t, repo.Authenticate("admin", "nope"), ErrBadCredentials)
	assert.ErrorIs(t, repo.Authenticate("ghost", "admin"), ErrBadCredentials)

	require.NoError(t, repo.Register("ana", "pw", "USER"))
	assert.ErrorIs(t, repo.Register("ana", "other", "USER"), ErrUserExists)
	assert.True(t, repo.Exists("ana"))
	assert.NoError(t, repo.Authenticate("ana", "pw"))
}
