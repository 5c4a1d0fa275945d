package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/tcgpocket/internal/db"
)

func TestGetJWTSecret_GeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	secret1, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	secret2, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
}

func TestGetOrCreateSettingKeepsFirstValue(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	v, err := GetOrCreateSetting(ctx, database, "motd", func() (string, error) { return "first", nil })
	if err != nil || v != "first" {
		t.Fatalf("expected first, got %q (%v)", v, err)
	}

	called := false
	v, err = GetOrCreateSetting(ctx, database, "motd", func() (string, error) {
		called = true
		return "second", nil
	})
	if err != nil || v != "first" {
		t.Fatalf("expected first again, got %q (%v)", v, err)
	}
	if called {
		t.Error("generator should not run when the setting exists")
	}
}

func TestGetOrCreateSettingGeneratorError(t *testing.T) {
	database := db.NewTestDB(t)

	boom := errors.New("boom")
	_, err := GetOrCreateSetting(context.Background(), database, "k", func() (string, error) { return "", boom })
	if !errors.Is(err, boom) {
		t.Errorf("expected generator error, got %v", err)
	}
}
