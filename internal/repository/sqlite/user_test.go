package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sakif/prompt2json/internal/apperror"
	"github.com/sakif/prompt2json/internal/model"
)

func TestCreateUser_GetByEmailAndID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u := &model.User{Email: "ada@example.com", Name: "Ada", AvatarURL: "https://x/a.png"}
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if u.ID == "" {
		t.Fatal("CreateUser() did not set ID")
	}

	byEmail, err := db.GetUserByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if byEmail.ID != u.ID || byEmail.Name != "Ada" || byEmail.AvatarURL != "https://x/a.png" {
		t.Errorf("GetUserByEmail() = %+v", byEmail)
	}

	byID, err := db.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if byID.Email != "ada@example.com" {
		t.Errorf("GetUserByID().Email = %q", byID.Email)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.CreateUser(ctx, &model.User{Email: "ada@example.com"}); err != nil {
		t.Fatalf("first CreateUser() error = %v", err)
	}

	err := db.CreateUser(ctx, &model.User{Email: "ada@example.com"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate CreateUser() error = %v, want ErrConflict", err)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.GetUserByEmail(context.Background(), "none@example.com"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByEmail() error = %v, want ErrNotFound", err)
	}
	if _, err := db.GetUserByID(context.Background(), "none"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestNew_FileDatabaseSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p2j.db")

	db, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := db.CreateUser(context.Background(), &model.User{Email: "ada@example.com"}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	db.Close()

	// Migrations must be safe to run again on an existing file.
	db, err = New(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()

	if _, err := db.GetUserByEmail(context.Background(), "ada@example.com"); err != nil {
		t.Errorf("user lost across reopen: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file missing: %v", err)
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
