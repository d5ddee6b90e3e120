package app

import (
	"testing"

	"dentwork_backend/internal/auth"
	"dentwork_backend/internal/config"
	"dentwork_backend/internal/models"
	"dentwork_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedConfig(email, password string) *config.Config {
	cfg := &config.Config{}
	cfg.FirstAdmin.Email = email
	cfg.FirstAdmin.Password = password
	return cfg
}

func TestSeedFirstAdmin(t *testing.T) {
	repo := repositories.NewInMemoryAccountRepository()

	require.NoError(t, seedFirstAdmin(repo, seedConfig("root@x.com", "seed-password")))

	acc, err := repo.FindByEmail(models.RoleAdmin, "root@x.com")
	require.NoError(t, err)
	admin := acc.(*models.Admin)
	assert.Equal(t, "Admin", admin.RoleLabel)
	// Пароль хранится хешем
	assert.NotEqual(t, "seed-password", admin.PasswordHash)
	assert.True(t, auth.CheckPasswordHash("seed-password", admin.PasswordHash))
}

func TestSeedFirstAdmin_Idempotent(t *testing.T) {
	repo := repositories.NewInMemoryAccountRepository()
	cfg := seedConfig("root@x.com", "seed-password")

	require.NoError(t, seedFirstAdmin(repo, cfg))

	acc, err := repo.FindByEmail(models.RoleAdmin, "root@x.com")
	require.NoError(t, err)
	firstID := acc.AccountID()

	// Повторный запуск не трогает существующий аккаунт
	cfg.FirstAdmin.Password = "different-password"
	require.NoError(t, seedFirstAdmin(repo, cfg))

	acc, err = repo.FindByEmail(models.RoleAdmin, "root@x.com")
	require.NoError(t, err)
	assert.Equal(t, firstID, acc.AccountID())
	assert.True(t, auth.CheckPasswordHash("seed-password", acc.AccountPasswordHash()))
}

func TestSeedFirstAdmin_SkippedWithoutConfig(t *testing.T) {
	repo := repositories.NewInMemoryAccountRepository()

	require.NoError(t, seedFirstAdmin(repo, seedConfig("", "")))

	_, err := repo.FindByEmail(models.RoleAdmin, "root@x.com")
	assert.ErrorIs(t, err, repositories.ErrAccountNotFound)
}
