package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lunchbox-orders/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func signToken(t *testing.T, secret, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func protectedHandler(t *testing.T, gotAdmin *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotAdmin = auth.AdminID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAdminOnlyValidToken(t *testing.T) {
	var gotAdmin string
	handler := auth.AdminOnly(testSecret)(protectedHandler(t, &gotAdmin))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/summary", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "admin-1"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin-1", gotAdmin)
}

func TestAdminOnlyMissingHeader(t *testing.T) {
	var gotAdmin string
	handler := auth.AdminOnly(testSecret)(protectedHandler(t, &gotAdmin))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/summary", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestAdminOnlyWrongSecret(t *testing.T) {
	var gotAdmin string
	handler := auth.AdminOnly(testSecret)(protectedHandler(t, &gotAdmin))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/summary", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", "admin-1"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminOnlyDisabledWithoutSecret(t *testing.T) {
	var gotAdmin string
	handler := auth.AdminOnly("")(protectedHandler(t, &gotAdmin))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/summary", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, gotAdmin)
}

func TestVerifyAdminTokenMissingSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = auth.VerifyAdminToken(signed, testSecret)
	assert.Error(t, err)
}
