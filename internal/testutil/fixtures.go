package testutil

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/gatherhub/internal/domain/models"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a test user with empty membership arrays.
func (f *Fixtures) CreateUser(ctx context.Context, account, email, name string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:             primitive.NewObjectID(),
		Account:        account,
		Email:          email,
		Password:       "$2a$10$test.hash.not.a.real.password.hash.value",
		Name:           name,
		Role:           models.RoleUser,
		OrganizeGroups: []models.GroupRef{},
		JoinGroups:     []models.GroupRef{},
		FavoriteGroups: []models.GroupRef{},
		Tokens:         []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateAdmin inserts a test user with the admin role.
func (f *Fixtures) CreateAdmin(ctx context.Context, account, email, name string) models.User {
	f.t.Helper()

	u := f.CreateUser(ctx, account, email, name)
	u.Role = models.RoleAdmin
	if _, err := f.db.Collection("users").UpdateOne(ctx,
		map[string]any{"_id": u.ID},
		map[string]any{"$set": map[string]any{"role": models.RoleAdmin}}); err != nil {
		f.t.Fatalf("failed to promote test admin: %v", err)
	}
	return u
}

// CreateGroup inserts a test group organized by the given user, with the
// organizer seeded on the roster, and mirrors the reference into the
// organizer's organize_groups list.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, organizerID primitive.ObjectID, memberLimit int) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	group := models.Group{
		ID:            primitive.NewObjectID(),
		OrganizerID:   organizerID,
		Name:          name,
		Description:   "test group",
		MemberCount:   1,
		MemberLimit:   memberLimit,
		ContactMethod: "Line",
		ContactInfo:   "test-line-id",
		GroupMembers:  []models.GroupMember{{UserID: organizerID, JoinDate: now}},
		Comments:      []models.Comment{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := f.db.Collection("groups").InsertOne(ctx, group); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}

	if _, err := f.db.Collection("users").UpdateOne(ctx,
		map[string]any{"_id": organizerID},
		map[string]any{"$push": map[string]any{"organize_groups": models.GroupRef{GroupID: group.ID}}}); err != nil {
		f.t.Fatalf("failed to link organizer to test group: %v", err)
	}

	return group
}

// JoinGroup puts a user on a group's roster the way a completed join
// would: roster entry, member_count bump, and the user-side reference.
func (f *Fixtures) JoinGroup(ctx context.Context, userID, groupID primitive.ObjectID) {
	f.t.Helper()

	now := time.Now().UTC()
	if _, err := f.db.Collection("groups").UpdateOne(ctx,
		map[string]any{"_id": groupID},
		map[string]any{
			"$push": map[string]any{"groupMembers": models.GroupMember{UserID: userID, JoinDate: now}},
			"$inc":  map[string]any{"member_count": 1},
		}); err != nil {
		f.t.Fatalf("failed to add test member to group: %v", err)
	}
	if _, err := f.db.Collection("users").UpdateOne(ctx,
		map[string]any{"_id": userID},
		map[string]any{"$push": map[string]any{"join_groups": models.GroupRef{GroupID: groupID}}}); err != nil {
		f.t.Fatalf("failed to link test member to group: %v", err)
	}
}

// CreateChat inserts a chat room for the given group.
func (f *Fixtures) CreateChat(ctx context.Context, groupID primitive.ObjectID) models.Chat {
	f.t.Helper()

	now := time.Now().UTC()
	chat := models.Chat{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		Messages:  []models.ChatMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("chats").InsertOne(ctx, chat); err != nil {
		f.t.Fatalf("failed to create test chat: %v", err)
	}
	return chat
}
