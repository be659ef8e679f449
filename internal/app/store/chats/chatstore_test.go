package chatstore_test

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	chatstore "github.com/dalemusser/gatherhub/internal/app/store/chats"
	"github.com/dalemusser/gatherhub/internal/app/system/inputval"
	"github.com/dalemusser/gatherhub/internal/app/system/paging"
	"github.com/dalemusser/gatherhub/internal/testutil"
)

func TestCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := chatstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	organizer := fixtures.CreateUser(ctx, "organizer1", "org@example.com", "Organizer")
	outsider := fixtures.CreateUser(ctx, "outsider1", "out@example.com", "Outsider")
	group := fixtures.CreateGroup(ctx, "Book Club", organizer.ID, 5)

	// Non-members cannot open the room.
	if _, err := store.Create(ctx, outsider.ID, group.ID); !errors.Is(err, chatstore.ErrNotMember) {
		t.Errorf("expected ErrNotMember, got %v", err)
	}

	chat, err := store.Create(ctx, organizer.ID, group.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if chat.GroupID != group.ID {
		t.Errorf("GroupID: got %v, want %v", chat.GroupID, group.ID)
	}

	// One room per group.
	if _, err := store.Create(ctx, organizer.ID, group.ID); !errors.Is(err, chatstore.ErrChatExists) {
		t.Errorf("expected ErrChatExists, got %v", err)
	}
}

func TestCreate_GroupNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := chatstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "member01", "member@example.com", "Member")

	if _, err := store.Create(ctx, user.ID, primitive.NewObjectID()); !errors.Is(err, chatstore.ErrGroupNotFound) {
		t.Errorf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestAppendMessage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := chatstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	organizer := fixtures.CreateUser(ctx, "organizer1", "org@example.com", "Organizer")
	member := fixtures.CreateUser(ctx, "member01", "member@example.com", "Member")
	outsider := fixtures.CreateUser(ctx, "outsider1", "out@example.com", "Outsider")
	group := fixtures.CreateGroup(ctx, "Book Club", organizer.ID, 5)
	fixtures.JoinGroup(ctx, member.ID, group.ID)
	fixtures.CreateChat(ctx, group.ID)

	msg, err := store.AppendMessage(ctx, member.ID, group.ID, "<b>hello</b> everyone")
	if err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if msg.Text != "hello everyone" {
		t.Errorf("text should be stored as plain text, got %q", msg.Text)
	}

	if _, err := store.AppendMessage(ctx, outsider.ID, group.ID, "let me in"); !errors.Is(err, chatstore.ErrNotMember) {
		t.Errorf("expected ErrNotMember, got %v", err)
	}

	_, err = store.AppendMessage(ctx, member.ID, group.ID, "  <script>x</script>  ")
	var fe *inputval.FieldError
	if !errors.As(err, &fe) || fe.Code != "textRequired" {
		t.Errorf("expected textRequired FieldError, got %v", err)
	}
}

func TestPage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := chatstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	organizer := fixtures.CreateUser(ctx, "organizer1", "org@example.com", "Organizer")
	member := fixtures.CreateUser(ctx, "member01", "member@example.com", "Member")
	group := fixtures.CreateGroup(ctx, "Book Club", organizer.ID, 5)
	fixtures.JoinGroup(ctx, member.ID, group.ID)
	fixtures.CreateChat(ctx, group.ID)

	for i := 1; i <= 7; i++ {
		if _, err := store.AppendMessage(ctx, member.ID, group.ID, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("AppendMessage %d: %v", i, err)
		}
	}

	// Page 1 holds the newest messages.
	page, err := store.Page(ctx, member.ID, group.ID, paging.Page{Number: 1, Size: 3})
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	if page.Total != 7 {
		t.Errorf("total: got %d, want 7", page.Total)
	}
	if len(page.Messages) != 3 {
		t.Fatalf("page 1 size: got %d, want 3", len(page.Messages))
	}
	if page.Messages[0].Text != "message 7" || page.Messages[2].Text != "message 5" {
		t.Errorf("page 1 should run newest first, got %q .. %q", page.Messages[0].Text, page.Messages[2].Text)
	}
	if page.Messages[0].Name != "Member" {
		t.Errorf("author name should be resolved, got %q", page.Messages[0].Name)
	}

	// The last partial page.
	page, err = store.Page(ctx, member.ID, group.ID, paging.Page{Number: 3, Size: 3})
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	if len(page.Messages) != 1 || page.Messages[0].Text != "message 1" {
		t.Errorf("page 3 should hold the oldest message, got %+v", page.Messages)
	}

	// Past the end.
	page, err = store.Page(ctx, member.ID, group.ID, paging.Page{Number: 4, Size: 3})
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	if len(page.Messages) != 0 {
		t.Errorf("page past the end should be empty, got %d messages", len(page.Messages))
	}

	// The organizer can read too.
	if _, err := store.Page(ctx, organizer.ID, group.ID, paging.Page{Number: 1, Size: 10}); err != nil {
		t.Errorf("organizer Page failed: %v", err)
	}
}

func TestDeleteByGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := chatstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	organizer := fixtures.CreateUser(ctx, "organizer1", "org@example.com", "Organizer")
	group := fixtures.CreateGroup(ctx, "Book Club", organizer.ID, 5)
	fixtures.CreateChat(ctx, group.ID)

	if err := store.DeleteByGroup(ctx, group.ID); err != nil {
		t.Fatalf("DeleteByGroup failed: %v", err)
	}

	// Deleting a group with no room is not an error.
	if err := store.DeleteByGroup(ctx, group.ID); err != nil {
		t.Errorf("second DeleteByGroup failed: %v", err)
	}
}
