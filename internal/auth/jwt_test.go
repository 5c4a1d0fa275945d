package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/tcgpocket/internal/model"
)

func TestIssueAndValidateToken(t *testing.T) {
	secret := "test-secret-key"
	admin := &model.User{ID: 1, Username: "Admin", Role: model.RoleAdmin}

	token, issued, err := IssueToken(secret, admin)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != 1 {
		t.Errorf("expected user_id 1, got %d", claims.UserID)
	}
	if claims.Username != "Admin" {
		t.Errorf("expected username 'Admin', got %q", claims.Username)
	}
	if claims.Role != model.RoleAdmin {
		t.Errorf("expected role 'admin', got %q", claims.Role)
	}
	if claims.Subject != "1" || claims.Issuer != Issuer {
		t.Errorf("unexpected registered claims: sub=%q iss=%q", claims.Subject, claims.Issuer)
	}
	if claims.ID != issued.ID {
		t.Errorf("expected JTI %q, got %q", issued.ID, claims.ID)
	}
}

func TestTokensHaveUniqueIDs(t *testing.T) {
	u := &model.User{ID: 2, Username: "ash", Role: model.RolePlayer}
	_, a, _ := IssueToken("s", u)
	_, b, _ := IssueToken("s", u)
	if a.ID == b.ID {
		t.Error("expected distinct JTIs")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _, _ := IssueToken("secret1", &model.User{ID: 1, Role: model.RoleAdmin})

	if _, err := ValidateToken("secret2", token); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	if _, err := ValidateToken("secret", "not-a-token"); err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestValidateTokenForeignIssuer(t *testing.T) {
	claims := Claims{
		UserID: 1,
		Role:   model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "abc",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))

	if _, err := ValidateToken("secret", token); err == nil {
		t.Error("expected error for foreign issuer")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	claims := Claims{
		UserID: 1,
		Role:   model.RolePlayer,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "abc",
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))

	if _, err := ValidateToken("secret", token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestTokenExpiryByRole(t *testing.T) {
	tests := []struct {
		role   string
		expiry time.Duration
	}{
		{model.RoleAdmin, AdminTokenExpiry},
		{model.RolePlayer, PlayerTokenExpiry},
	}

	for _, tt := range tests {
		token, _, _ := IssueToken("test", &model.User{ID: 1, Role: tt.role})
		claims, err := ValidateToken("test", token)
		if err != nil {
			t.Fatalf("ValidateToken: %v", err)
		}

		// Should be within a few seconds.
		diff := time.Now().Add(tt.expiry).Sub(claims.ExpiresAt.Time)
		if diff < -5*time.Second || diff > 5*time.Second {
			t.Errorf("%s: token expiry too far from expected: diff=%v", tt.role, diff)
		}
	}
}
