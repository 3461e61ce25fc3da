package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generateMockClerkJWT builds a Clerk-shaped token signed with a local
// HS256 key. It is structurally valid but cannot pass Clerk's RSA
// verification.
func generateMockClerkJWT(t *testing.T, clerkID string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": clerkID,
		"iss": "https://clerk.test.dev",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
		"azp": "http://localhost:3000",
		"sid": "sess_test123",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret-key"))
	require.NoError(t, err)
	return signed
}

func TestClerkAuthMiddlewareMissingHeader(t *testing.T) {
	nextCalled := false
	handler := ClerkAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, nextCalled)
	assert.Contains(t, rr.Body.String(), "Authorization header required")
}

func TestClerkAuthMiddlewareBadFormat(t *testing.T) {
	nextCalled := false
	handler := ClerkAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	req.Header.Set("Authorization", "Token abc123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, nextCalled)
	assert.Contains(t, rr.Body.String(), "Invalid authorization format")
}

func TestClerkAuthMiddlewareRejectsForgedToken(t *testing.T) {
	nextCalled := false
	handler := ClerkAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	req.Header.Set("Authorization", "Bearer "+generateMockClerkJWT(t, "user_forged"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, nextCalled)
}

func TestGetClerkIDRoundTrip(t *testing.T) {
	ctx := context.WithValue(context.Background(), ClerkIDKey, "user_abc123")

	clerkID, ok := GetClerkID(ctx)
	require.True(t, ok)
	assert.Equal(t, "user_abc123", clerkID)

	_, ok = GetClerkID(context.Background())
	assert.False(t, ok)
}
