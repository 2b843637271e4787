package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/FitnessFreakCoder/Freshmart-project/internal/common"
)

func testTokens(now time.Time) Tokens {
	return Tokens{
		Secret:   []byte("test-secret-test-secret-test-1234"),
		Issuer:   "freshmart",
		Audience: "freshmart-api",
		TTL:      time.Hour,
		Now:      func() time.Time { return now },
	}
}

func TestTokensRoundTrip(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	tokens := testTokens(now)

	signed, expiresAt, err := tokens.Issue(common.Identity{UserID: "u-1", Username: "asha", Role: common.RoleStaff})
	require.NoError(t, err)
	require.Equal(t, now.Add(time.Hour), expiresAt)

	id, err := tokens.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, "u-1", id.UserID)
	require.Equal(t, "asha", id.Username)
	require.Equal(t, common.RoleStaff, id.Role)
}

func TestTokensDefaultsRole(t *testing.T) {
	now := time.Now()
	tokens := testTokens(now)

	signed, _, err := tokens.Issue(common.Identity{UserID: "u-2", Username: "ram"})
	require.NoError(t, err)

	id, err := tokens.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, common.RoleCustomer, id.Role)
}

func TestTokensRejectsExpired(t *testing.T) {
	issued := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	tokens := testTokens(issued)

	signed, _, err := tokens.Issue(common.Identity{UserID: "u-3"})
	require.NoError(t, err)

	tokens.Now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = tokens.Parse(signed)
	require.Error(t, err)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "UNAUTHORIZED", appErr.Code)
}

func TestTokensRejectsWrongSecret(t *testing.T) {
	now := time.Now()
	tokens := testTokens(now)

	signed, _, err := tokens.Issue(common.Identity{UserID: "u-4"})
	require.NoError(t, err)

	other := testTokens(now)
	other.Secret = []byte("another-secret-another-secret-12")
	_, err = other.Parse(signed)
	require.Error(t, err)
}

func TestTokensRejectsEmpty(t *testing.T) {
	_, err := testTokens(time.Now()).Parse("  ")
	require.Error(t, err)
}

func TestRequireStaffForbidsCustomers(t *testing.T) {
	now := time.Now()
	tokens := testTokens(now)
	mw := Middleware{Tokens: tokens}

	handler := mw.RequireStaff(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	signed, _, err := tokens.Issue(common.Identity{UserID: "u-5", Role: common.RoleCustomer})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/coupons", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	staffToken, _, err := tokens.Issue(common.Identity{UserID: "u-6", Role: common.RoleAdmin})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/admin/coupons", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAuthMissingToken(t *testing.T) {
	mw := Middleware{Tokens: testTokens(time.Now())}
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
