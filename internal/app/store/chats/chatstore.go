package chatstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/gatherhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/gatherhub/internal/app/system/inputval"
	"github.com/dalemusser/gatherhub/internal/app/system/paging"
	"github.com/dalemusser/gatherhub/internal/domain/models"
)

type Store struct {
	c      *mongo.Collection
	users  *mongo.Collection
	groups *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:      db.Collection("chats"),
		users:  db.Collection("users"),
		groups: db.Collection("groups"),
	}
}

var (
	// ErrChatExists is returned when the group already has a chat room.
	ErrChatExists = errors.New("group already has a chat room")
	// ErrGroupNotFound is returned when the group does not exist.
	ErrGroupNotFound = errors.New("group not found")
	// ErrNotMember is returned when the user is not on the group roster.
	ErrNotMember = errors.New("user is not a member of this group")
	// ErrEmptyMessage is returned when a message is blank after sanitizing.
	ErrEmptyMessage error = &inputval.FieldError{Field: "text", Code: "textRequired"}
)

// Create opens the chat room for a group. Each group has exactly one
// room, enforced by the unique group_id index. Only roster members may
// open it.
func (s *Store) Create(ctx context.Context, userID, groupID primitive.ObjectID) (*models.Chat, error) {
	if err := s.requireMember(ctx, userID, groupID); err != nil {
		return nil, err
	}

	now := time.Now()
	chat := models.Chat{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		Messages:  []models.ChatMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, chat); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrChatExists
		}
		return nil, err
	}
	return &chat, nil
}

// AppendMessage adds a message to the group's chat room. Only roster
// members may post. Text is stored as plain text.
func (s *Store) AppendMessage(ctx context.Context, userID, groupID primitive.ObjectID, text string) (models.ChatMessage, error) {
	if err := s.requireMember(ctx, userID, groupID); err != nil {
		return models.ChatMessage{}, err
	}

	text = htmlsanitize.Plain(text)
	if text == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}

	msg := models.ChatMessage{
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"group_id": groupID}, bson.M{
		"$push": bson.M{"messages": msg},
		"$set":  bson.M{"updated_at": msg.CreatedAt},
	})
	if err != nil {
		return models.ChatMessage{}, err
	}
	if res.MatchedCount == 0 {
		return models.ChatMessage{}, mongo.ErrNoDocuments
	}
	return msg, nil
}

// Message is a chat message with the author's display name resolved.
type Message struct {
	UserID    primitive.ObjectID `json:"user_id"`
	Name      string             `json:"name"`
	Text      string             `json:"text"`
	CreatedAt time.Time          `json:"created_at"`
}

// MessagePage is one page of chat history, newest first.
type MessagePage struct {
	Messages []Message `json:"messages"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Total    int       `json:"total"`
}

// Page reads one page of the group's chat history, newest message first,
// with author names resolved. Only roster members may read.
func (s *Store) Page(ctx context.Context, userID, groupID primitive.ObjectID, p paging.Page) (*MessagePage, error) {
	if err := s.requireMember(ctx, userID, groupID); err != nil {
		return nil, err
	}

	var chat models.Chat
	if err := s.c.FindOne(ctx, bson.M{"group_id": groupID}).Decode(&chat); err != nil {
		return nil, err
	}

	total := len(chat.Messages)
	page := &MessagePage{
		Messages: []Message{},
		Page:     p.Number,
		Limit:    p.Size,
		Total:    total,
	}

	// Messages are stored oldest first; pages run newest first.
	start := total - p.Offset()
	if start <= 0 {
		return page, nil
	}
	end := start - p.Size
	if end < 0 {
		end = 0
	}

	names, err := s.resolveNames(ctx, chat.Messages[end:start])
	if err != nil {
		return nil, err
	}
	for i := start - 1; i >= end; i-- {
		m := chat.Messages[i]
		page.Messages = append(page.Messages, Message{
			UserID:    m.UserID,
			Name:      names[m.UserID],
			Text:      m.Text,
			CreatedAt: m.CreatedAt,
		})
	}
	return page, nil
}

// DeleteByGroup removes the group's chat room, if any.
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"group_id": groupID})
	return err
}

// requireMember checks that the user is on the group roster. The
// organizer is always on the roster, so this covers them too.
func (s *Store) requireMember(ctx context.Context, userID, groupID primitive.ObjectID) error {
	err := s.groups.FindOne(ctx, bson.M{
		"_id":                  groupID,
		"groupMembers.user_id": userID,
	}).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	// Distinguish a missing group from a non-member.
	if err := s.groups.FindOne(ctx, bson.M{"_id": groupID}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrGroupNotFound
		}
		return err
	}
	return ErrNotMember
}

func (s *Store) resolveNames(ctx context.Context, msgs []models.ChatMessage) (map[primitive.ObjectID]string, error) {
	ids := make([]primitive.ObjectID, 0, len(msgs))
	seen := map[primitive.ObjectID]bool{}
	for _, m := range msgs {
		if !seen[m.UserID] {
			seen[m.UserID] = true
			ids = append(ids, m.UserID)
		}
	}

	names := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u struct {
			ID   primitive.ObjectID `bson:"_id"`
			Name string             `bson:"name"`
		}
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		names[u.ID] = u.Name
	}
	return names, cur.Err()
}
