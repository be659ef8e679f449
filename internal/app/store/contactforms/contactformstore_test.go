package contactformstore_test

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	contactformstore "github.com/dalemusser/gatherhub/internal/app/store/contactforms"
	"github.com/dalemusser/gatherhub/internal/app/system/inputval"
	"github.com/dalemusser/gatherhub/internal/domain/models"
	"github.com/dalemusser/gatherhub/internal/testutil"
)

func TestCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := contactformstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f, err := store.Create(ctx, models.ContactForm{
		Nickname:    "<b>visitor</b>",
		Email:       "visitor@example.com",
		Title:       "feature request",
		Description: "please add <i>dark mode</i>",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if f.Nickname != "visitor" {
		t.Errorf("nickname should be plain text, got %q", f.Nickname)
	}
	if f.Description != "please add dark mode" {
		t.Errorf("description should be plain text, got %q", f.Description)
	}

	got, err := store.GetByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "feature request" {
		t.Errorf("title: got %q", got.Title)
	}
}

func TestCreate_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := contactformstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cases := []struct {
		name string
		form models.ContactForm
		code string
	}{
		{"missing nickname", models.ContactForm{Email: "a@b.com", Title: "hi"}, "nicknameRequired"},
		{"bad email", models.ContactForm{Nickname: "visitor", Email: "nope", Title: "hi"}, "emailInvalid"},
		{"missing title", models.ContactForm{Nickname: "visitor", Email: "a@b.com"}, "titleRequired"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.Create(ctx, tc.form)
			var fe *inputval.FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldError, got %v", err)
			}
			if fe.Code != tc.code {
				t.Errorf("code: got %q, want %q", fe.Code, tc.code)
			}
		})
	}
}

func TestListAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := contactformstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first, err := store.Create(ctx, models.ContactForm{Nickname: "a", Email: "a@b.com", Title: "first"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(ctx, models.ContactForm{Nickname: "b", Email: "b@b.com", Title: "second"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	forms, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(forms) != 2 {
		t.Fatalf("ListAll: got %d forms, want 2", len(forms))
	}

	if err := store.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, first.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
	if err := store.Delete(ctx, primitive.NewObjectID()); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments for unknown id, got %v", err)
	}
}
