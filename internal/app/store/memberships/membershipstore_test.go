package membershipstore_test

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	membershipstore "github.com/dalemusser/gatherhub/internal/app/store/memberships"
	"github.com/dalemusser/gatherhub/internal/domain/models"
	"github.com/dalemusser/gatherhub/internal/testutil"
)

func TestCreateGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	organizer := fixtures.CreateUser(ctx, "organizer1", "org@example.com", "Organizer")

	g, err := store.CreateGroup(ctx, organizer.ID, models.Group{
		Name:        "Weekend Hikers",
		MemberLimit: 5,
	})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	if g.OrganizerID != organizer.ID {
		t.Errorf("OrganizerID: got %v, want %v", g.OrganizerID, organizer.ID)
	}
	if g.MemberCount != 1 {
		t.Errorf("MemberCount: got %d, want 1", g.MemberCount)
	}
	if len(g.GroupMembers) != 1 || g.GroupMembers[0].UserID != organizer.ID {
		t.Errorf("roster should seed the organizer, got %+v", g.GroupMembers)
	}

	var u models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": organizer.ID}).Decode(&u); err != nil {
		t.Fatalf("reload organizer: %v", err)
	}
	if !u.Organizes(g.ID) {
		t.Error("organize_groups should reference the new group")
	}

	if err := db.Collection("chats").FindOne(ctx, bson.M{"group_id": g.ID}).Err(); err != nil {
		t.Errorf("companion chat should be created with the group: %v", err)
	}
}

func TestCreateGroup_UnknownOrganizer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.CreateGroup(ctx, primitive.NewObjectID(), models.Group{
		Name:        "Ghost Group",
		MemberLimit: 5,
	})
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestJoin_RoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	organizer := fixtures.CreateUser(ctx, "organizer1", "org@example.com", "Organizer")
	member := fixtures.CreateUser(ctx, "member01", "member@example.com", "Member")
	group := fixtures.CreateGroup(ctx, "Book Club", organizer.ID, 5)

	if err := store.Join(ctx, member.ID, group.ID); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	g := reloadGroup(t, db, group.ID)
	if g.MemberCount != 2 {
		t.Errorf("MemberCount after join: got %d, want 2", g.MemberCount)
	}
	if !g.HasMember(member.ID) {
		t.Error("roster should contain the joined member")
	}
	if g.MemberCount != len(g.GroupMembers) {
		t.Errorf("member_count %d != roster size %d", g.MemberCount, len(g.GroupMembers))
	}

	u := reloadUser(t, db, member.ID)
	if !u.HasJoined(group.ID) {
		t.Error("join_groups should reference the group")
	}

	if err := store.Leave(ctx, member.ID, group.ID); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}

	g = reloadGroup(t, db, group.ID)
	if g.MemberCount != 1 || g.HasMember(member.ID) {
		t.Errorf("leave should restore the roster, got count=%d members=%+v", g.MemberCount, g.GroupMembers)
	}
	u = reloadUser(t, db, member.ID)
	if u.HasJoined(group.ID) {
		t.Error("join_groups should be empty after leave")
	}
}

func TestJoin_AlreadyJoined(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	organizer := fixtures.CreateUser(ctx, "organizer1", "org@example.com", "Organizer")
	member := fixtures.CreateUser(ctx, "member01", "member@example.com", "Member")
	group := fixtures.CreateGroup(ctx, "Book Club", organizer.ID, 5)

	if err := store.Join(ctx, member.ID, group.ID); err != nil {
		t.Fatalf("first Join failed: %v", err)
	}
	if err := store.Join(ctx, member.ID, group.ID); !errors.Is(err, membershipstore.ErrAlreadyJoined) {
		t.Errorf("expected ErrAlreadyJoined, got %v", err)
	}

	// The duplicate attempt must not bump the count.
	g := reloadGroup(t, db, group.ID)
	if g.MemberCount != 2 {
		t.Errorf("MemberCount: got %d, want 2", g.MemberCount)
	}
}

func TestJoin_OrganizerOwnGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	organizer := fixtures.CreateUser(ctx, "organizer1", "org@example.com", "Organizer")
	group := fixtures.CreateGroup(ctx, "Book Club", organizer.ID, 5)

	if err := store.Join(ctx, organizer.ID, group.ID); !errors.Is(err, membershipstore.ErrAlreadyOrganized) {
		t.Errorf("expected ErrAlreadyOrganized, got %v", err)
	}
}

func TestJoin_GroupFull(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	organizer := fixtures.CreateUser(ctx, "organizer1", "org@example.com", "Organizer")
	first := fixtures.CreateUser(ctx, "member01", "m1@example.com", "First")
	second := fixtures.CreateUser(ctx, "member02", "m2@example.com", "Second")
	group := fixtures.CreateGroup(ctx, "Tiny Group", organizer.ID, 2)

	if err := store.Join(ctx, first.ID, group.ID); err != nil {
		t.Fatalf("Join at capacity-1 failed: %v", err)
	}
	if err := store.Join(ctx, second.ID, group.ID); !errors.Is(err, membershipstore.ErrGroupFull) {
		t.Errorf("expected ErrGroupFull, got %v", err)
	}

	g := reloadGroup(t, db, group.ID)
	if g.MemberCount != 2 || g.MemberCount > g.MemberLimit {
		t.Errorf("capacity violated: count=%d limit=%d", g.MemberCount, g.MemberLimit)
	}
}

func TestJoin_GroupNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fixtures.CreateUser(ctx, "member01", "member@example.com", "Member")

	if err := store.Join(ctx, member.ID, primitive.NewObjectID()); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestLeave_NotMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	organizer := fixtures.CreateUser(ctx, "organizer1", "org@example.com", "Organizer")
	outsider := fixtures.CreateUser(ctx, "outsider1", "out@example.com", "Outsider")
	group := fixtures.CreateGroup(ctx, "Book Club", organizer.ID, 5)

	if err := store.Leave(ctx, outsider.ID, group.ID); !errors.Is(err, membershipstore.ErrNotMember) {
		t.Errorf("expected ErrNotMember, got %v", err)
	}

	// The organizer leaves by deleting the group, not via Leave.
	if err := store.Leave(ctx, organizer.ID, group.ID); !errors.Is(err, membershipstore.ErrAlreadyOrganized) {
		t.Errorf("organizer Leave: expected ErrAlreadyOrganized, got %v", err)
	}

	g := reloadGroup(t, db, group.ID)
	if !g.HasMember(organizer.ID) || g.MemberCount != 1 {
		t.Errorf("organizer Leave must not touch the roster: %+v", g)
	}
}

func TestKick(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	organizer := fixtures.CreateUser(ctx, "organizer1", "org@example.com", "Organizer")
	member := fixtures.CreateUser(ctx, "member01", "member@example.com", "Member")
	other := fixtures.CreateUser(ctx, "member02", "other@example.com", "Other")
	group := fixtures.CreateGroup(ctx, "Book Club", organizer.ID, 5)
	fixtures.JoinGroup(ctx, member.ID, group.ID)

	// Only the organizer may kick.
	if err := store.Kick(ctx, other.ID, member.ID, group.ID); !errors.Is(err, membershipstore.ErrNotOrganizer) {
		t.Errorf("expected ErrNotOrganizer, got %v", err)
	}

	if err := store.Kick(ctx, organizer.ID, member.ID, group.ID); err != nil {
		t.Fatalf("Kick failed: %v", err)
	}

	g := reloadGroup(t, db, group.ID)
	if g.HasMember(member.ID) || g.MemberCount != 1 {
		t.Errorf("kick should remove the member, got count=%d", g.MemberCount)
	}
	u := reloadUser(t, db, member.ID)
	if u.HasJoined(group.ID) {
		t.Error("kicked member should lose the join_groups reference")
	}

	// Kicking again reports not-a-member.
	if err := store.Kick(ctx, organizer.ID, member.ID, group.ID); !errors.Is(err, membershipstore.ErrNotMember) {
		t.Errorf("expected ErrNotMember, got %v", err)
	}
}

func TestFavorites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	organizer := fixtures.CreateUser(ctx, "organizer1", "org@example.com", "Organizer")
	user := fixtures.CreateUser(ctx, "member01", "member@example.com", "Member")
	group := fixtures.CreateGroup(ctx, "Book Club", organizer.ID, 5)

	if err := store.AddFavorite(ctx, user.ID, group.ID); err != nil {
		t.Fatalf("AddFavorite failed: %v", err)
	}
	if err := store.AddFavorite(ctx, user.ID, group.ID); !errors.Is(err, membershipstore.ErrAlreadyFavorite) {
		t.Errorf("expected ErrAlreadyFavorite, got %v", err)
	}

	u := reloadUser(t, db, user.ID)
	if len(u.FavoriteGroups) != 1 {
		t.Errorf("favorites: got %d entries, want 1", len(u.FavoriteGroups))
	}

	// Favoriting never touches the roster.
	g := reloadGroup(t, db, group.ID)
	if g.HasMember(user.ID) || g.MemberCount != 1 {
		t.Errorf("favorite must not affect the roster, got count=%d", g.MemberCount)
	}

	if err := store.RemoveFavorite(ctx, user.ID, group.ID); err != nil {
		t.Fatalf("RemoveFavorite failed: %v", err)
	}
	if err := store.RemoveFavorite(ctx, user.ID, group.ID); !errors.Is(err, membershipstore.ErrNotFavorite) {
		t.Errorf("expected ErrNotFavorite, got %v", err)
	}
}

func TestAddFavorite_GroupNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "member01", "member@example.com", "Member")

	if err := store.AddFavorite(ctx, user.ID, primitive.NewObjectID()); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestDeleteGroup_Cascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	organizer := fixtures.CreateUser(ctx, "organizer1", "org@example.com", "Organizer")
	member := fixtures.CreateUser(ctx, "member01", "member@example.com", "Member")
	fan := fixtures.CreateUser(ctx, "member02", "fan@example.com", "Fan")
	group := fixtures.CreateGroup(ctx, "Book Club", organizer.ID, 5)
	fixtures.JoinGroup(ctx, member.ID, group.ID)
	fixtures.CreateChat(ctx, group.ID)

	if err := store.AddFavorite(ctx, fan.ID, group.ID); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}

	// Only the organizer may delete.
	if err := store.DeleteGroup(ctx, member.ID, group.ID); !errors.Is(err, membershipstore.ErrNotOrganizer) {
		t.Errorf("expected ErrNotOrganizer, got %v", err)
	}

	if err := store.DeleteGroup(ctx, organizer.ID, group.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}

	if err := db.Collection("groups").FindOne(ctx, bson.M{"_id": group.ID}).Err(); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Error("group document should be gone")
	}
	if u := reloadUser(t, db, organizer.ID); u.Organizes(group.ID) {
		t.Error("organizer's organize_groups should be cleaned")
	}
	if u := reloadUser(t, db, member.ID); u.HasJoined(group.ID) {
		t.Error("member's join_groups should be cleaned")
	}
	if u := reloadUser(t, db, fan.ID); u.HasFavorite(group.ID) {
		t.Error("fan's favorite_groups should be cleaned")
	}
	if err := db.Collection("chats").FindOne(ctx, bson.M{"group_id": group.ID}).Err(); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Error("chat room should be gone")
	}
}

func TestAdminDeleteGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	organizer := fixtures.CreateUser(ctx, "organizer1", "org@example.com", "Organizer")
	group := fixtures.CreateGroup(ctx, "Book Club", organizer.ID, 5)

	// No organizer check; the caller's role is enforced at the route.
	if err := store.AdminDeleteGroup(ctx, group.ID); err != nil {
		t.Fatalf("AdminDeleteGroup failed: %v", err)
	}
	if err := store.AdminDeleteGroup(ctx, group.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}

	if u := reloadUser(t, db, organizer.ID); u.Organizes(group.ID) {
		t.Error("organizer's organize_groups should be cleaned")
	}
}

func TestDeleteUser_Cascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	victim := fixtures.CreateUser(ctx, "victim01", "victim@example.com", "Victim")
	other := fixtures.CreateUser(ctx, "other001", "other@example.com", "Other")

	// Victim organizes one group (with Other joined) and joins Other's group.
	owned := fixtures.CreateGroup(ctx, "Owned Group", victim.ID, 5)
	fixtures.JoinGroup(ctx, other.ID, owned.ID)
	fixtures.CreateChat(ctx, owned.ID)

	joined := fixtures.CreateGroup(ctx, "Other Group", other.ID, 5)
	fixtures.JoinGroup(ctx, victim.ID, joined.ID)

	if err := store.DeleteUser(ctx, victim.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": victim.ID}).Err(); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Error("user document should be gone")
	}

	// The owned group is deleted with its full cascade.
	if err := db.Collection("groups").FindOne(ctx, bson.M{"_id": owned.ID}).Err(); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Error("owned group should be gone")
	}
	if u := reloadUser(t, db, other.ID); u.HasJoined(owned.ID) {
		t.Error("other's join_groups should drop the deleted group")
	}
	if err := db.Collection("chats").FindOne(ctx, bson.M{"group_id": owned.ID}).Err(); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Error("owned group's chat should be gone")
	}

	// The joined group stays but sheds the victim.
	g := reloadGroup(t, db, joined.ID)
	if g.HasMember(victim.ID) {
		t.Error("joined group roster should drop the deleted user")
	}
	if g.MemberCount != 1 {
		t.Errorf("joined group member_count: got %d, want 1", g.MemberCount)
	}
}

func TestReconcile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	organizer := fixtures.CreateUser(ctx, "organizer1", "org@example.com", "Organizer")
	user := fixtures.CreateUser(ctx, "member01", "member@example.com", "Member")
	group := fixtures.CreateGroup(ctx, "Book Club", organizer.ID, 5)

	deadGroup := primitive.NewObjectID()
	deadUser := primitive.NewObjectID()

	// Seed the inconsistencies an interrupted cascade leaves behind.
	if _, err := db.Collection("users").UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$push": bson.M{
			"join_groups":     models.GroupRef{GroupID: deadGroup},
			"favorite_groups": models.GroupRef{GroupID: deadGroup},
		},
	}); err != nil {
		t.Fatalf("seed dangling refs: %v", err)
	}
	if _, err := db.Collection("groups").UpdateOne(ctx, bson.M{"_id": group.ID}, bson.M{
		"$push": bson.M{"groupMembers": models.GroupMember{UserID: deadUser}},
		"$inc":  bson.M{"member_count": 1},
	}); err != nil {
		t.Fatalf("seed dangling member: %v", err)
	}
	fixtures.CreateChat(ctx, deadGroup)

	res, err := store.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.DanglingUserRefs == 0 {
		t.Error("expected dangling user refs to be repaired")
	}
	if res.DanglingMembers == 0 {
		t.Error("expected dangling roster entries to be repaired")
	}
	if res.OrphanChats != 1 {
		t.Errorf("orphan chats: got %d, want 1", res.OrphanChats)
	}
	if res.MemberCountRepairs == 0 {
		t.Error("expected member_count drift to be repaired")
	}

	u := reloadUser(t, db, user.ID)
	if u.HasJoined(deadGroup) || u.HasFavorite(deadGroup) {
		t.Error("dangling refs should be gone")
	}
	g := reloadGroup(t, db, group.ID)
	if g.HasMember(deadUser) {
		t.Error("dangling roster entry should be gone")
	}
	if g.MemberCount != len(g.GroupMembers) {
		t.Errorf("member_count %d != roster size %d after reconcile", g.MemberCount, len(g.GroupMembers))
	}

	// A second sweep finds nothing.
	res, err = store.Reconcile(ctx)
	if err != nil {
		t.Fatalf("second Reconcile failed: %v", err)
	}
	if res.DanglingUserRefs+res.DanglingMembers+res.OrphanChats+res.MemberCountRepairs != 0 {
		t.Errorf("second sweep should be a no-op, got %+v", res)
	}
}

func reloadGroup(t *testing.T, db *mongo.Database, id primitive.ObjectID) *models.Group {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var g models.Group
	if err := db.Collection("groups").FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		t.Fatalf("reload group: %v", err)
	}
	return &g
}

func reloadUser(t *testing.T, db *mongo.Database, id primitive.ObjectID) *models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var u models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return &u
}
