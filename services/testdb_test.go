package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"lifeQuestAPI/internal/types/user"
)

// setupTestDB connects to the test database or skips the test when no
// database is configured.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL not set, skipping database test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err, "failed to connect to test database")
	require.NoError(t, pool.Ping(ctx), "failed to ping test database")

	t.Cleanup(func() {
		_, err := pool.Exec(ctx, "DELETE FROM users WHERE email LIKE 'test%@example.com'")
		if err != nil {
			t.Logf("Warning: failed to cleanup test data: %v", err)
		}
		pool.Close()
	})

	return pool
}

// createTestUser inserts a throwaway user and returns it.
func createTestUser(t *testing.T, pool *pgxpool.Pool) *user.User {
	t.Helper()

	svc := NewUserService(pool)
	clerkID := "user_test_" + uuid.NewString()[:8] + time.Now().Format("150405")

	u, err := svc.CreateUser(context.Background(), &user.CreateUserRequest{
		ClerkID:   clerkID,
		Email:     fmt.Sprintf("test+%s@example.com", clerkID),
		Username:  "tester_" + clerkID[10:],
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)
	return u
}
