package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeQuestAPI/internal/types/user"
	"lifeQuestAPI/middleware"
	"lifeQuestAPI/services"
)

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
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	t.Cleanup(func() {
		_, err := pool.Exec(ctx, "DELETE FROM users WHERE email LIKE 'test%@example.com'")
		if err != nil {
			t.Logf("Warning: failed to cleanup test data: %v", err)
		}
		pool.Close()
	})

	return pool
}

func mockClerkUserCreatedPayload(clerkID string) []byte {
	return []byte(fmt.Sprintf(`{
		"type": "user.created",
		"data": {
			"id": "%s",
			"first_name": "Test",
			"last_name": "User",
			"username": "testuser",
			"image_url": "https://example.com/image.jpg",
			"email_addresses": [{
				"email_address": "test.user@example.com",
				"verification": {"status": "verified"}
			}]
		}
	}`, clerkID))
}

// TestSignUpAndProfileFlow walks the webhook sync plus the authenticated
// profile endpoints end to end.
func TestSignUpAndProfileFlow(t *testing.T) {
	pool := setupTestDB(t)

	userService := services.NewUserService(pool)
	actionService := services.NewActionService(pool)
	userHandler := NewUserHandler(userService)
	webhookHandler := NewWebhookHandler(userService, actionService)

	os.Setenv("CLERK_WEBHOOK_SECRET", "")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	clerkID := "user_test_" + time.Now().Format("20060102150405")

	// Clerk tells us the user signed up.
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(mockClerkUserCreatedPayload(clerkID)))
	rr := httptest.NewRecorder()
	webhookHandler.HandleClerkWebhook(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	ctx := context.Background()
	created, err := userService.GetUserByClerkID(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, "test.user@example.com", created.Email)
	assert.True(t, created.EmailVerified)
	assert.Equal(t, 0, created.TotalXP)
	assert.Equal(t, 1, created.AvatarStage)

	// New users get the starter action catalog.
	actions, err := actionService.GetActions(ctx, clerkID)
	require.NoError(t, err)
	assert.NotEmpty(t, actions, "webhook seeds default actions")

	// The user fetches their profile.
	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	req2 = req2.WithContext(context.WithValue(req2.Context(), middleware.ClerkIDKey, clerkID))
	rr2 := httptest.NewRecorder()
	userHandler.GetProfile(rr2, req2)
	require.Equal(t, http.StatusOK, rr2.Code)

	var profile user.Profile
	require.NoError(t, json.Unmarshal(rr2.Body.Bytes(), &profile))
	assert.Equal(t, clerkID, profile.ClerkID)
	assert.Equal(t, 1, profile.LevelInfo.Level)
	assert.Equal(t, "Seedling", profile.AvatarTitle)

	// And updates it.
	update := `{"firstName": "Renamed", "timezone": "Europe/Berlin"}`
	req3 := httptest.NewRequest(http.MethodPut, "/api/v1/user/update-profile", strings.NewReader(update))
	req3.Header.Set("Content-Type", "application/json")
	req3 = req3.WithContext(context.WithValue(req3.Context(), middleware.ClerkIDKey, clerkID))
	rr3 := httptest.NewRecorder()
	userHandler.UpdateProfile(rr3, req3)
	require.Equal(t, http.StatusOK, rr3.Code)

	updated, err := userService.GetUserByClerkID(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.FirstName)
	assert.Equal(t, "Europe/Berlin", updated.Timezone)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	pool := setupTestDB(t)

	userService := services.NewUserService(pool)
	actionService := services.NewActionService(pool)
	webhookHandler := NewWebhookHandler(userService, actionService)

	os.Setenv("CLERK_WEBHOOK_SECRET", "whsec_test")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(mockClerkUserCreatedPayload("user_bad_sig")))
	req.Header.Set("svix-id", "msg_123")
	req.Header.Set("svix-timestamp", "1700000000")
	req.Header.Set("svix-signature", "v1,notavalidsignature")
	rr := httptest.NewRecorder()

	webhookHandler.HandleClerkWebhook(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
