// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Contact methods a group may advertise.
var ContactMethods = []string{"Line", "Discord", "Facebook"}

// GroupMember is one roster entry. The organizer is always present in the
// roster from creation; no user appears twice.
type GroupMember struct {
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	JoinDate time.Time          `bson:"join_date" json:"join_date"`
}

// Reply is the single organizer-authored reply on a comment. Author is
// the organizer's display name at the time of the reply.
type Reply struct {
	Author  string    `bson:"author" json:"author"`
	Message string    `bson:"message" json:"message"`
	Date    time.Time `bson:"date" json:"date"`
}

// Comment is an embedded comment on a group. At most one reply, and only
// the organizer may write or remove it.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Content   string             `bson:"content" json:"content"`
	Reply     *Reply             `bson:"reply,omitempty" json:"reply,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Group represents one organized gathering.
//
// Invariants (kept by the memberships store):
//   - organizer_id is immutable after creation and mirrored by an
//     organize_groups entry on the organizer's user document.
//   - member_count == len(groupMembers) and member_count <= member_limit.
//   - every non-organizer roster entry is mirrored by a join_groups entry
//     on that user's document.
type Group struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizerID primitive.ObjectID `bson:"organizer_id" json:"organizer_id"`
	Name        string             `bson:"name" json:"name"`
	Image       string             `bson:"image" json:"image"`
	Description string             `bson:"description" json:"description"`
	Content     string             `bson:"content" json:"content"`
	Type        string             `bson:"type" json:"type"`

	MemberCount int `bson:"member_count" json:"member_count"`
	MemberLimit int `bson:"member_limit" json:"member_limit"`

	ContactMethod string   `bson:"contact_method" json:"contact_method"`
	ContactInfo   string   `bson:"contact_info" json:"contact_info"`
	City          string   `bson:"city,omitempty" json:"city,omitempty"`
	Region        string   `bson:"region,omitempty" json:"region,omitempty"`
	Address       string   `bson:"address,omitempty" json:"address,omitempty"`
	Tags          []string `bson:"tags" json:"tags"`
	Time          string   `bson:"time" json:"time"`

	GroupMembers []GroupMember `bson:"groupMembers" json:"groupMembers"`
	Comments     []Comment     `bson:"comments" json:"comments"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasMember reports whether the roster contains the given user
// (organizer included).
func (g *Group) HasMember(userID primitive.ObjectID) bool {
	for _, m := range g.GroupMembers {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// CommentByID returns the embedded comment with the given id, or nil.
func (g *Group) CommentByID(commentID primitive.ObjectID) *Comment {
	for i := range g.Comments {
		if g.Comments[i].ID == commentID {
			return &g.Comments[i]
		}
	}
	return nil
}
