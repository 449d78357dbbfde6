package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/geocoder89/userdir/internal/db"
	"github.com/geocoder89/userdir/internal/domain/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPictureColumnsRoundTrip(t *testing.T) {
	in := &user.PictureResource{Key: "k", Type: "image", URL: "https://cdn/k"}

	k, ty, u := pictureColumns(in)
	out := pictureFromColumns(k, ty, u)

	if out == nil || *out != *in {
		t.Fatalf("expected %+v, got %+v", in, out)
	}

	if pictureFromColumns(nil, nil, nil) != nil {
		t.Fatalf("expected nil picture for null columns")
	}
}

func TestUpsertArgs_KeepsHashPositive(t *testing.T) {
	u := user.NewUser("d5a39ffb-6ce3-4cc8-9048-0e15d031b4c5")
	u.IdentityHash = 0xFFFFFFFF

	args := upsertArgs(u)
	if got := args[8].(int64); got != 0xFFFFFFFF {
		t.Fatalf("identity hash must survive as bigint, got %d", got)
	}
}

// integration: needs TEST_DB_DSN pointing at a disposable database
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn, 2)
	if err != nil {
		t.Fatalf("Failed to create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	return pool
}

func TestUsersRepo_Integration(t *testing.T) {
	pool := setupPool(t)
	repo := NewUsersRepo(pool, nil)
	ctx := context.Background()

	id := uuid.NewString()
	u := user.NewUser(id)
	u.Name = "John Doe"
	u.IsMe = true
	u.PreviewPicture = &user.PictureResource{Key: "p", Type: "image", URL: "https://cdn/p"}

	if _, err := repo.Upsert(ctx, u); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(context.Background(), id) })

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "John Doe" || !got.IsMe || got.IdentityHash != u.IdentityHash {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.PreviewPicture == nil || got.PreviewPicture.URL != "https://cdn/p" {
		t.Fatalf("preview picture not stored: %+v", got.PreviewPicture)
	}

	plain := user.NewUser(id)
	plain.Name = "John Doe"
	plain.Locale = "de"
	stored, err := repo.Upsert(ctx, plain)
	if err != nil {
		t.Fatalf("Upsert plain: %v", err)
	}
	if !stored.IsMe {
		t.Fatalf("plain upsert must not clear is_me")
	}

	boom := errors.New("boom")
	if _, err := repo.Update(ctx, id, func(u *user.User) error {
		u.Name = "never stored"
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	updated, err := repo.Update(ctx, id, func(u *user.User) error {
		u.Name = "Jane Roe"
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Jane Roe" {
		t.Fatalf("expected Jane Roe, got %s", updated.Name)
	}

	if _, err := repo.GetByID(ctx, uuid.NewString()); !errors.Is(err, user.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
