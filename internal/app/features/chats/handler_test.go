package chats_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/dalemusser/gatherhub/internal/app/features/chats"
	chatstore "github.com/dalemusser/gatherhub/internal/app/store/chats"
	"github.com/dalemusser/gatherhub/internal/app/system/httpjson"
	"github.com/dalemusser/gatherhub/internal/testutil"
)

func TestChatLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	h := chats.NewHandler(chatstore.New(db), zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	organizer := fixtures.CreateUser(ctx, "organizer1", "org@example.com", "Organizer")
	member := fixtures.CreateUser(ctx, "member01", "member@example.com", "Member")
	outsider := fixtures.CreateUser(ctx, "outsider1", "out@example.com", "Outsider")
	group := fixtures.CreateGroup(ctx, "Book Club", organizer.ID, 5)
	fixtures.JoinGroup(ctx, member.ID, group.ID)

	gid := group.ID.Hex()

	// The organizer opens the room.
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/chat/"+gid, nil, &organizer)
	req = testutil.WithChiURLParam(req, "groupID", gid)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status: got %d, body %s", rec.Code, rec.Body)
	}

	// Opening it again conflicts.
	req = testutil.NewAuthenticatedRequest(http.MethodPost, "/chat/"+gid, nil, &member)
	req = testutil.WithChiURLParam(req, "groupID", gid)
	rec = httptest.NewRecorder()
	h.HandleCreate(rec, req)
	if rec.Code != http.StatusConflict || !strings.Contains(rec.Body.String(), "chatAlreadyExists") {
		t.Errorf("double create: got %d %s", rec.Code, rec.Body)
	}

	// A member posts.
	req = testutil.NewAuthenticatedRequest(http.MethodPost, "/chat/"+gid+"/message",
		strings.NewReader(`{"text": "hello all"}`), &member)
	req = testutil.WithChiURLParam(req, "groupID", gid)
	rec = httptest.NewRecorder()
	h.HandlePostMessage(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("post status: got %d, body %s", rec.Code, rec.Body)
	}

	// An outsider cannot read.
	req = testutil.NewAuthenticatedRequest(http.MethodGet, "/chat/"+gid, nil, &outsider)
	req = testutil.WithChiURLParam(req, "groupID", gid)
	rec = httptest.NewRecorder()
	h.ServeMessages(rec, req)
	if rec.Code != http.StatusForbidden || !strings.Contains(rec.Body.String(), "userNotInGroup") {
		t.Errorf("outsider read: got %d %s", rec.Code, rec.Body)
	}

	// A member reads the page back, newest first.
	req = testutil.NewAuthenticatedRequest(http.MethodGet, "/chat/"+gid+"?page=1&limit=10", nil, &organizer)
	req = testutil.WithChiURLParam(req, "groupID", gid)
	rec = httptest.NewRecorder()
	h.ServeMessages(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("read status: got %d, body %s", rec.Code, rec.Body)
	}

	var env httpjson.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	page, ok := env.Result.(map[string]any)
	if !ok {
		t.Fatalf("result type: %T", env.Result)
	}
	if total, _ := page["total"].(float64); total != 1 {
		t.Errorf("total: got %v, want 1", page["total"])
	}
	msgs, _ := page["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("messages: got %d, want 1", len(msgs))
	}
	first, _ := msgs[0].(map[string]any)
	if first["text"] != "hello all" || first["name"] != "Member" {
		t.Errorf("unexpected message payload: %v", first)
	}
}

func TestServeMessages_BadID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	h := chats.NewHandler(chatstore.New(db), zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "member01", "member@example.com", "Member")

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/chat/nope", nil, &user)
	req = testutil.WithChiURLParam(req, "groupID", "nope")
	rec := httptest.NewRecorder()
	h.ServeMessages(rec, req)

	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "idInvalid") {
		t.Errorf("got %d %s", rec.Code, rec.Body)
	}
}
