package repository

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/secure-notes/internal/migrations"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("notes"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = storage.Close()
	})

	path, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	_, err = migrations.Run(storage.DB, path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return storage
}

func createTestUser(t *testing.T, s *Storage, username, email string) int64 {
	t.Helper()
	ctx := context.Background()
	role, err := s.EnsureRole(ctx, models.RoleUser)
	require.NoError(t, err)

	user := models.NewActiveUser(username, email, *role, models.SignUpMethodEmail, time.Now())
	user.PasswordHash = "initial-hash"
	id, err := s.CreateUser(ctx, user)
	require.NoError(t, err)
	return id
}

func TestIntegration_DuplicateUsernameAndEmail(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()
	createTestUser(t, s, "alice", "alice@x.com")

	role, err := s.GetRoleByName(ctx, models.RoleUser)
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, models.NewActiveUser("alice", "other@x.com", *role, models.SignUpMethodEmail, time.Now()))
	assert.ErrorIs(t, err, models.ErrDuplicateUsername)

	_, err = s.CreateUser(ctx, models.NewActiveUser("alice2", "alice@x.com", *role, models.SignUpMethodEmail, time.Now()))
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)

	var count int
	require.NoError(t, s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username = 'alice'`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestIntegration_ConcurrentRedeemSucceedsOnce(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "bob", "bob@x.com")

	_, err := s.CreateResetToken(ctx, models.PasswordResetToken{
		Token:     "race-token",
		ExpiresAt: time.Now().Add(time.Hour),
		UserID:    userID,
	})
	require.NoError(t, err)

	const attempts = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		used    int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.RedeemResetToken(ctx, "race-token", "new-hash", time.Now())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case assert.ErrorIs(t, err, models.ErrTokenAlreadyUsed):
				used++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, attempts-1, used)

	u, err := s.GetUserByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", u.PasswordHash)
}

func TestIntegration_NewResetTokenInvalidatesPrevious(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "carol", "carol@x.com")

	for _, tok := range []string{"first", "second"} {
		_, err := s.CreateResetToken(ctx, models.PasswordResetToken{
			Token: tok, ExpiresAt: time.Now().Add(time.Hour), UserID: userID,
		})
		require.NoError(t, err)
	}

	first, err := s.GetResetToken(ctx, "first")
	require.NoError(t, err)
	assert.True(t, first.Used)

	second, err := s.GetResetToken(ctx, "second")
	require.NoError(t, err)
	assert.False(t, second.Used)
}
