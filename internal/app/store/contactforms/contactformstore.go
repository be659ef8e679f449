package contactformstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/gatherhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/gatherhub/internal/app/system/inputval"
	"github.com/dalemusser/gatherhub/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("contact_forms")}
}

var (
	errBadNickname error = &inputval.FieldError{Field: "nickname", Code: "nicknameRequired"}
	errBadEmail    error = &inputval.FieldError{Field: "email", Code: "emailInvalid"}
	errBadTitle    error = &inputval.FieldError{Field: "title", Code: "titleRequired"}
)

// Create stores a contact form submission. Submissions are anonymous, so
// every field is sanitized to plain text.
func (s *Store) Create(ctx context.Context, f models.ContactForm) (models.ContactForm, error) {
	f.ID = primitive.NewObjectID()
	f.Nickname = htmlsanitize.Plain(f.Nickname)
	f.Title = htmlsanitize.Plain(f.Title)
	f.Description = htmlsanitize.Plain(f.Description)

	if f.Nickname == "" {
		return models.ContactForm{}, errBadNickname
	}
	if !inputval.IsValidEmail(f.Email) {
		return models.ContactForm{}, errBadEmail
	}
	if f.Title == "" {
		return models.ContactForm{}, errBadTitle
	}

	now := time.Now()
	f.CreatedAt = now
	f.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return models.ContactForm{}, err
	}
	return f, nil
}

// ListAll returns every submission, newest first. Admin screens only.
func (s *Store) ListAll(ctx context.Context) ([]models.ContactForm, error) {
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var forms []models.ContactForm
	if err := cur.All(ctx, &forms); err != nil {
		return nil, err
	}
	return forms, nil
}

// GetByID loads one submission.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ContactForm, error) {
	var f models.ContactForm
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Delete removes a submission once it has been handled.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
