package groupstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/gatherhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/gatherhub/internal/app/system/inputval"
	"github.com/dalemusser/gatherhub/internal/app/system/normalize"
	"github.com/dalemusser/gatherhub/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

var (
	// ErrNotOrganizer is returned when a write requires the group's organizer.
	ErrNotOrganizer = errors.New("user is not the organizer of this group")
	// ErrCommentNotFound is returned when the comment id does not exist on the group.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrNotCommentAuthor is returned when a user tries to remove someone else's comment.
	ErrNotCommentAuthor = errors.New("user is not the author of this comment")
	// ErrReplyNotFound is returned when removing a reply from a comment that has none.
	ErrReplyNotFound = errors.New("comment has no reply")

	errBadName          error = &inputval.FieldError{Field: "name", Code: "nameRequired"}
	errBadMemberLimit   error = &inputval.FieldError{Field: "member_limit", Code: "memberLimitMin"}
	errBadContactMethod error = &inputval.FieldError{Field: "contact_method", Code: "contactMethodInvalid"}
)

// Create inserts a new group. The organizer is seeded as the first roster
// member, so member_count starts at 1. Writing the organizer's
// organize_groups reference is the membership store's job.
func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	g.ID = primitive.NewObjectID()
	g.Name = normalize.Name(g.Name)
	g.Description = htmlsanitize.Sanitize(g.Description)
	g.Content = htmlsanitize.Sanitize(g.Content)

	if g.Name == "" {
		return models.Group{}, errBadName
	}
	if g.MemberLimit < 2 {
		return models.Group{}, errBadMemberLimit
	}
	if g.ContactMethod != "" && !inputval.OneOf(g.ContactMethod, models.ContactMethods) {
		return models.Group{}, errBadContactMethod
	}

	now := time.Now()
	g.MemberCount = 1
	g.GroupMembers = []models.GroupMember{{UserID: g.OrganizerID, JoinDate: now}}
	g.Comments = []models.Comment{}
	g.CreatedAt = now
	g.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// GetByID loads a group by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return nil, err
	}
	return &g, nil
}

// ListAll returns every group, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListByIDs loads the groups whose ids are in the given set, newest first.
// Missing ids are silently skipped.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Group, error) {
	if len(ids) == 0 {
		return []models.Group{}, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// InfoUpdate holds the organizer-editable group fields. MemberLimit may
// not shrink below the current roster size; UpdateInfo enforces that with
// a conditional filter.
type InfoUpdate struct {
	Name          string
	Image         string
	Description   string
	Content       string
	Type          string
	MemberLimit   int
	ContactMethod string
	ContactInfo   string
	City          string
	Region        string
	Address       string
	Tags          []string
	Time          string
}

// ErrLimitBelowCount is returned when an update would set member_limit
// below the current member_count.
var ErrLimitBelowCount = errors.New("member_limit is below the current member count")

// UpdateInfo updates group fields. Only the organizer may update.
func (s *Store) UpdateInfo(ctx context.Context, groupID, organizerID primitive.ObjectID, upd InfoUpdate) error {
	upd.Name = normalize.Name(upd.Name)
	if upd.Name == "" {
		return errBadName
	}
	if upd.MemberLimit < 2 {
		return errBadMemberLimit
	}
	if upd.ContactMethod != "" && !inputval.OneOf(upd.ContactMethod, models.ContactMethods) {
		return errBadContactMethod
	}

	set := bson.M{
		"name":           upd.Name,
		"description":    htmlsanitize.Sanitize(upd.Description),
		"content":        htmlsanitize.Sanitize(upd.Content),
		"type":           upd.Type,
		"member_limit":   upd.MemberLimit,
		"contact_method": upd.ContactMethod,
		"contact_info":   upd.ContactInfo,
		"city":           upd.City,
		"region":         upd.Region,
		"address":        upd.Address,
		"tags":           upd.Tags,
		"time":           upd.Time,
		"updated_at":     time.Now(),
	}
	if upd.Image != "" {
		set["image"] = upd.Image
	}

	res, err := s.c.UpdateOne(ctx, bson.M{
		"_id":          groupID,
		"organizer_id": organizerID,
		"member_count": bson.M{"$lte": upd.MemberLimit},
	}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.classifyUpdateMiss(ctx, groupID, organizerID, upd.MemberLimit)
	}
	return nil
}

func (s *Store) classifyUpdateMiss(ctx context.Context, groupID, organizerID primitive.ObjectID, limit int) error {
	g, err := s.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if g.OrganizerID != organizerID {
		return ErrNotOrganizer
	}
	if g.MemberCount > limit {
		return ErrLimitBelowCount
	}
	return mongo.ErrNoDocuments
}

// AdminUpdateInfo updates group fields without the organizer check, for
// admin screens. The member_limit floor still applies.
func (s *Store) AdminUpdateInfo(ctx context.Context, groupID primitive.ObjectID, upd InfoUpdate) error {
	g, err := s.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	return s.UpdateInfo(ctx, groupID, g.OrganizerID, upd)
}

// AddComment appends a comment to the group's message board. The content
// is stored as plain text.
func (s *Store) AddComment(ctx context.Context, groupID, userID primitive.ObjectID, content string) (models.Comment, error) {
	c := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Content:   htmlsanitize.Plain(content),
		CreatedAt: time.Now(),
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": groupID}, bson.M{
		"$push": bson.M{"comments": c},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return models.Comment{}, err
	}
	if res.MatchedCount == 0 {
		return models.Comment{}, mongo.ErrNoDocuments
	}
	return c, nil
}

// RemoveComment deletes a comment. The comment's author and the group's
// organizer may remove it.
func (s *Store) RemoveComment(ctx context.Context, groupID, commentID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{
		"_id":          groupID,
		"comments._id": commentID,
		"$or": bson.A{
			bson.M{"organizer_id": userID},
			bson.M{"comments": bson.M{"$elemMatch": bson.M{"_id": commentID, "user_id": userID}}},
		},
	}, bson.M{
		"$pull": bson.M{"comments": bson.M{"_id": commentID}},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		g, err := s.GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		c := g.CommentByID(commentID)
		if c == nil {
			return ErrCommentNotFound
		}
		return ErrNotCommentAuthor
	}
	return nil
}

// ReplyComment sets the organizer's reply on a comment. A comment carries
// at most one reply; replying again overwrites it.
func (s *Store) ReplyComment(ctx context.Context, groupID, commentID, organizerID primitive.ObjectID, author, message string) (models.Reply, error) {
	r := models.Reply{
		Author:  author,
		Message: htmlsanitize.Plain(message),
		Date:    time.Now(),
	}
	res, err := s.c.UpdateOne(ctx, bson.M{
		"_id":          groupID,
		"organizer_id": organizerID,
		"comments._id": commentID,
	}, bson.M{
		"$set": bson.M{"comments.$.reply": r, "updated_at": time.Now()},
	})
	if err != nil {
		return models.Reply{}, err
	}
	if res.MatchedCount == 0 {
		return models.Reply{}, s.classifyCommentMiss(ctx, groupID, commentID, organizerID)
	}
	return r, nil
}

// RemoveReply clears the reply from a comment. Organizer only.
func (s *Store) RemoveReply(ctx context.Context, groupID, commentID, organizerID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{
		"_id":          groupID,
		"organizer_id": organizerID,
		"comments":     bson.M{"$elemMatch": bson.M{"_id": commentID, "reply": bson.M{"$ne": nil}}},
	}, bson.M{
		"$unset": bson.M{"comments.$.reply": ""},
		"$set":   bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if err := s.classifyCommentMiss(ctx, groupID, commentID, organizerID); err != nil {
			return err
		}
		return ErrReplyNotFound
	}
	return nil
}

// classifyCommentMiss distinguishes why a comment-scoped organizer write
// matched nothing. Returns nil when the group, organizer, and comment all
// check out (the miss was caused by another clause in the filter).
func (s *Store) classifyCommentMiss(ctx context.Context, groupID, commentID, organizerID primitive.ObjectID) error {
	g, err := s.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if g.OrganizerID != organizerID {
		return ErrNotOrganizer
	}
	if g.CommentByID(commentID) == nil {
		return ErrCommentNotFound
	}
	return nil
}

// Delete removes the group document. Cascading cleanup of member arrays
// and the chat room is the membership store's job.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
