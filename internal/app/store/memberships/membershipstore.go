// internal/app/store/memberships/membershipstore.go
package membershipstore

// Membership state is held in two places that must agree:
//   - groups.groupMembers / member_count (the roster, the authority for capacity)
//   - users.organize_groups / join_groups / favorite_groups (the user's view)
//
// The roster side of every membership change is a single conditional
// update, so capacity can never be oversubscribed. The user-side mirror is
// written second; a failure there is repaired by rolling the roster back,
// and anything that still slips through is swept up by Reconcile.

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	groupstore "github.com/dalemusser/gatherhub/internal/app/store/groups"
	"github.com/dalemusser/gatherhub/internal/domain/models"
)

type Store struct {
	users  *mongo.Collection
	groups *mongo.Collection
	chats  *mongo.Collection

	groupDocs *groupstore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{
		users:     db.Collection("users"),
		groups:    db.Collection("groups"),
		chats:     db.Collection("chats"),
		groupDocs: groupstore.New(db),
	}
}

var (
	// ErrAlreadyOrganized is returned when the organizer tries to join their own group.
	ErrAlreadyOrganized = errors.New("user organizes this group")
	// ErrAlreadyJoined is returned when the user is already on the roster.
	ErrAlreadyJoined = errors.New("user already joined this group")
	// ErrGroupFull is returned when the roster is at member_limit.
	ErrGroupFull = errors.New("group is full")
	// ErrNotMember is returned when the user is not on the roster.
	ErrNotMember = errors.New("user is not a member of this group")
	// ErrNotOrganizer is returned when a write requires the group's organizer.
	ErrNotOrganizer = errors.New("user is not the organizer of this group")
	// ErrAlreadyFavorite is returned when the group is already in the user's favorites.
	ErrAlreadyFavorite = errors.New("group is already a favorite")
	// ErrNotFavorite is returned when the group is not in the user's favorites.
	ErrNotFavorite = errors.New("group is not a favorite")
)

// CreateGroup inserts a new group with the caller as organizer, mirrors
// it into the organizer's organize_groups list, and opens the companion
// chat room. If the mirror write fails the group document is rolled back.
func (s *Store) CreateGroup(ctx context.Context, organizerID primitive.ObjectID, g models.Group) (models.Group, error) {
	if err := s.users.FindOne(ctx, bson.M{"_id": organizerID}).Err(); err != nil {
		return models.Group{}, err
	}

	g.OrganizerID = organizerID
	created, err := s.groupDocs.Create(ctx, g)
	if err != nil {
		return models.Group{}, err
	}

	res, err := s.users.UpdateOne(ctx, bson.M{"_id": organizerID}, bson.M{
		"$push": bson.M{"organize_groups": models.GroupRef{GroupID: created.ID}},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err == nil && res.MatchedCount == 0 {
		err = mongo.ErrNoDocuments
	}
	if err != nil {
		_, _ = s.groups.DeleteOne(ctx, bson.M{"_id": created.ID})
		return models.Group{}, err
	}

	// Best effort; a group left without a room can have one opened
	// through the chat store later.
	now := time.Now()
	_, _ = s.chats.InsertOne(ctx, models.Chat{
		ID:        primitive.NewObjectID(),
		GroupID:   created.ID,
		Messages:  []models.ChatMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	})

	return created, nil
}

// Join adds the user to the group roster. The roster write is one
// conditional update: it matches only when the group exists, the user is
// not already on the roster, and member_count is below member_limit, so
// concurrent joins cannot exceed capacity.
func (s *Store) Join(ctx context.Context, userID, groupID primitive.ObjectID) error {
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Err(); err != nil {
		return err
	}

	now := time.Now()
	res, err := s.groups.UpdateOne(ctx, bson.M{
		"_id":                  groupID,
		"groupMembers.user_id": bson.M{"$ne": userID},
		"$expr":                bson.M{"$lt": bson.A{"$member_count", "$member_limit"}},
	}, bson.M{
		"$push": bson.M{"groupMembers": models.GroupMember{UserID: userID, JoinDate: now}},
		"$inc":  bson.M{"member_count": 1},
		"$set":  bson.M{"updated_at": now},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.classifyJoinMiss(ctx, userID, groupID)
	}

	if err := s.pushUserRef(ctx, userID, "join_groups", groupID); err != nil {
		// Roll the roster back so the two sides stay consistent.
		_, _ = s.groups.UpdateOne(ctx, bson.M{"_id": groupID, "groupMembers.user_id": userID}, bson.M{
			"$pull": bson.M{"groupMembers": bson.M{"user_id": userID}},
			"$inc":  bson.M{"member_count": -1},
		})
		return err
	}
	return nil
}

func (s *Store) classifyJoinMiss(ctx context.Context, userID, groupID primitive.ObjectID) error {
	g, err := s.groupDocs.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if g.OrganizerID == userID {
		return ErrAlreadyOrganized
	}
	if g.HasMember(userID) {
		return ErrAlreadyJoined
	}
	return ErrGroupFull
}

// Leave removes the user from the group roster. The organizer cannot
// leave their own group (ErrAlreadyOrganized); they delete it instead.
func (s *Store) Leave(ctx context.Context, userID, groupID primitive.ObjectID) error {
	res, err := s.groups.UpdateOne(ctx, bson.M{
		"_id":                  groupID,
		"organizer_id":         bson.M{"$ne": userID},
		"groupMembers.user_id": userID,
	}, bson.M{
		"$pull": bson.M{"groupMembers": bson.M{"user_id": userID}},
		"$inc":  bson.M{"member_count": -1},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		g, err := s.groupDocs.GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		if g.OrganizerID == userID {
			return ErrAlreadyOrganized
		}
		return ErrNotMember
	}
	return s.pullUserRef(ctx, userID, "join_groups", groupID)
}

// Kick removes a member from the roster on the organizer's behalf.
func (s *Store) Kick(ctx context.Context, organizerID, memberID, groupID primitive.ObjectID) error {
	if organizerID == memberID {
		return ErrNotMember
	}
	res, err := s.groups.UpdateOne(ctx, bson.M{
		"_id":                  groupID,
		"organizer_id":         organizerID,
		"groupMembers.user_id": memberID,
	}, bson.M{
		"$pull": bson.M{"groupMembers": bson.M{"user_id": memberID}},
		"$inc":  bson.M{"member_count": -1},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		g, err := s.groupDocs.GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		if g.OrganizerID != organizerID {
			return ErrNotOrganizer
		}
		return ErrNotMember
	}
	return s.pullUserRef(ctx, memberID, "join_groups", groupID)
}

// AddFavorite marks a group as one of the user's favorites. Favorites are
// user-side only; the roster is untouched.
func (s *Store) AddFavorite(ctx context.Context, userID, groupID primitive.ObjectID) error {
	if err := s.groups.FindOne(ctx, bson.M{"_id": groupID}).Err(); err != nil {
		return err
	}
	res, err := s.users.UpdateOne(ctx, bson.M{
		"_id":                     userID,
		"favorite_groups.group_id": bson.M{"$ne": groupID},
	}, bson.M{
		"$push": bson.M{"favorite_groups": models.GroupRef{GroupID: groupID}},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Err(); err != nil {
			return err
		}
		return ErrAlreadyFavorite
	}
	return nil
}

// RemoveFavorite drops a group from the user's favorites.
func (s *Store) RemoveFavorite(ctx context.Context, userID, groupID primitive.ObjectID) error {
	res, err := s.users.UpdateOne(ctx, bson.M{
		"_id":                     userID,
		"favorite_groups.group_id": groupID,
	}, bson.M{
		"$pull": bson.M{"favorite_groups": bson.M{"group_id": groupID}},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Err(); err != nil {
			return err
		}
		return ErrNotFavorite
	}
	return nil
}

// ListOrganized returns the groups the user organizes.
func (s *Store) ListOrganized(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.groupDocs.ListByIDs(ctx, refIDs(u.OrganizeGroups))
}

// ListJoined returns the groups the user has joined.
func (s *Store) ListJoined(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.groupDocs.ListByIDs(ctx, refIDs(u.JoinGroups))
}

// ListFavorites returns the groups the user has favorited.
func (s *Store) ListFavorites(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.groupDocs.ListByIDs(ctx, refIDs(u.FavoriteGroups))
}

// DeleteGroup tears down a group: the group document, its references in
// every user document, and its chat room. Only the organizer may delete.
// All steps are attempted even if one fails; the first error is returned
// after the sweep so a partial failure still removes as much as possible.
func (s *Store) DeleteGroup(ctx context.Context, organizerID, groupID primitive.ObjectID) error {
	g, err := s.groupDocs.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if g.OrganizerID != organizerID {
		return ErrNotOrganizer
	}
	return s.deleteGroupCascade(ctx, groupID)
}

// AdminDeleteGroup runs the group cascade without the organizer check,
// for admin screens.
func (s *Store) AdminDeleteGroup(ctx context.Context, groupID primitive.ObjectID) error {
	if err := s.groups.FindOne(ctx, bson.M{"_id": groupID}).Err(); err != nil {
		return err
	}
	return s.deleteGroupCascade(ctx, groupID)
}

func (s *Store) deleteGroupCascade(ctx context.Context, groupID primitive.ObjectID) error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	// User-side references come out first, then the chat room, then the
	// group document itself. Reconcile sweeps up whatever a crash between
	// steps leaves behind.
	now := time.Now()
	for _, field := range []string{"organize_groups", "join_groups", "favorite_groups"} {
		_, err := s.users.UpdateMany(ctx,
			bson.M{field + ".group_id": groupID},
			bson.M{
				"$pull": bson.M{field: bson.M{"group_id": groupID}},
				"$set":  bson.M{"updated_at": now},
			})
		record(err)
	}

	_, err := s.chats.DeleteOne(ctx, bson.M{"group_id": groupID})
	record(err)

	_, err = s.groups.DeleteOne(ctx, bson.M{"_id": groupID})
	record(err)

	return firstErr
}

// DeleteUser tears down a user account: every group they organize (with
// its full cascade), their roster entries in groups they joined, and
// finally the user document itself. All steps are attempted; the first
// error is returned after the sweep.
func (s *Store) DeleteUser(ctx context.Context, userID primitive.ObjectID) error {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, ref := range u.OrganizeGroups {
		record(s.deleteGroupCascade(ctx, ref.GroupID))
	}

	_, err = s.groups.UpdateMany(ctx,
		bson.M{"groupMembers.user_id": userID},
		bson.M{
			"$pull": bson.M{"groupMembers": bson.M{"user_id": userID}},
			"$inc":  bson.M{"member_count": -1},
			"$set":  bson.M{"updated_at": time.Now()},
		})
	record(err)

	_, err = s.users.DeleteOne(ctx, bson.M{"_id": userID})
	record(err)

	return firstErr
}

// ReconcileResult counts the repairs made by one reconcile sweep.
type ReconcileResult struct {
	DanglingUserRefs   int64
	DanglingMembers    int64
	OrphanChats        int64
	MemberCountRepairs int64
}

// Reconcile sweeps up inconsistencies left by interrupted cascades:
// user references to deleted groups, roster entries for deleted users,
// chats whose group is gone, and member_count drift. It is idempotent and
// runs periodically in the background.
func (s *Store) Reconcile(ctx context.Context) (ReconcileResult, error) {
	var res ReconcileResult

	groupIDs, err := s.allIDs(ctx, s.groups)
	if err != nil {
		return res, err
	}

	for _, field := range []string{"organize_groups", "join_groups", "favorite_groups"} {
		r, err := s.users.UpdateMany(ctx,
			bson.M{field + ".group_id": bson.M{"$nin": groupIDs}},
			bson.M{"$pull": bson.M{field: bson.M{"group_id": bson.M{"$nin": groupIDs}}}})
		if err != nil {
			return res, err
		}
		res.DanglingUserRefs += r.ModifiedCount
	}

	userIDs, err := s.allIDs(ctx, s.users)
	if err != nil {
		return res, err
	}
	r, err := s.groups.UpdateMany(ctx,
		bson.M{"groupMembers.user_id": bson.M{"$nin": userIDs}},
		bson.M{"$pull": bson.M{"groupMembers": bson.M{"user_id": bson.M{"$nin": userIDs}}}})
	if err != nil {
		return res, err
	}
	res.DanglingMembers = r.ModifiedCount

	dr, err := s.chats.DeleteMany(ctx, bson.M{"group_id": bson.M{"$nin": groupIDs}})
	if err != nil {
		return res, err
	}
	res.OrphanChats = dr.DeletedCount

	// member_count must equal len(groupMembers); pulling dangling members
	// above can introduce drift, and interrupted joins can too.
	cr, err := s.groups.UpdateMany(ctx,
		bson.M{"$expr": bson.M{"$ne": bson.A{"$member_count", bson.M{"$size": "$groupMembers"}}}},
		bson.A{bson.M{"$set": bson.M{"member_count": bson.M{"$size": "$groupMembers"}}}})
	if err != nil {
		return res, err
	}
	res.MemberCountRepairs = cr.ModifiedCount

	return res, nil
}

func (s *Store) loadUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) pushUserRef(ctx context.Context, userID primitive.ObjectID, field string, groupID primitive.ObjectID) error {
	res, err := s.users.UpdateOne(ctx, bson.M{
		"_id":              userID,
		field + ".group_id": bson.M{"$ne": groupID},
	}, bson.M{
		"$push": bson.M{field: models.GroupRef{GroupID: groupID}},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *Store) pullUserRef(ctx context.Context, userID primitive.ObjectID, field string, groupID primitive.ObjectID) error {
	_, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$pull": bson.M{field: bson.M{"group_id": groupID}},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}

func (s *Store) allIDs(ctx context.Context, c *mongo.Collection) ([]primitive.ObjectID, error) {
	cur, err := c.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cur.Err()
}

func refIDs(refs []models.GroupRef) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.GroupID)
	}
	return ids
}
