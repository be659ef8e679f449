// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles. Ordinary users organize and join groups; admins additionally
// manage other users, groups, and contact forms.
const (
	RoleUser  = 0
	RoleAdmin = 1
)

// GroupRef is a single entry in one of a user's relationship lists
// (organize_groups, join_groups, favorite_groups). Each list keeps
// insertion order for display; membership tests compare GroupID values.
type GroupRef struct {
	GroupID primitive.ObjectID `bson:"group_id" json:"group_id"`
}

// User represents a registered account.
//
// NOTE:
//   - The three relationship lists are embedded on the user document and
//     mirror state held on the group documents (organizer_id, groupMembers).
//     The memberships store is the only writer allowed to touch them.
//   - Tokens holds the currently-valid session tokens. Presence in this
//     list is the sole authority for token validity; multiple concurrent
//     sessions are allowed.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Account  string             `bson:"account" json:"account"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
	Name     string             `bson:"name" json:"name"`
	Gender   string             `bson:"gender,omitempty" json:"gender,omitempty"`
	Age      int                `bson:"age,omitempty" json:"age,omitempty"`
	Role     int                `bson:"role" json:"role"`
	Tags     []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Image    string             `bson:"image,omitempty" json:"image,omitempty"`

	OrganizeGroups []GroupRef `bson:"organize_groups" json:"organize_groups"`
	JoinGroups     []GroupRef `bson:"join_groups" json:"join_groups"`
	FavoriteGroups []GroupRef `bson:"favorite_groups" json:"favorite_groups"`

	Tokens []string `bson:"tokens" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Organizes reports whether the user's organize_groups list references
// the given group.
func (u *User) Organizes(groupID primitive.ObjectID) bool {
	return containsRef(u.OrganizeGroups, groupID)
}

// HasJoined reports whether the user's join_groups list references the
// given group.
func (u *User) HasJoined(groupID primitive.ObjectID) bool {
	return containsRef(u.JoinGroups, groupID)
}

// HasFavorite reports whether the user's favorite_groups list references
// the given group.
func (u *User) HasFavorite(groupID primitive.ObjectID) bool {
	return containsRef(u.FavoriteGroups, groupID)
}

func containsRef(refs []GroupRef, groupID primitive.ObjectID) bool {
	for _, ref := range refs {
		if ref.GroupID == groupID {
			return true
		}
	}
	return false
}
