package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/dalemusser/gatherhub/internal/app/system/inputval"
	"github.com/dalemusser/gatherhub/internal/app/system/normalize"
	"github.com/dalemusser/gatherhub/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateAccount is returned when the account name is already taken.
	ErrDuplicateAccount = errors.New("a user with this account already exists")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrInvalidCredentials is returned by Authenticate for a bad email or password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	errBadAccount  error = &inputval.FieldError{Field: "account", Code: "accountInvalid"}
	errBadEmail    error = &inputval.FieldError{Field: "email", Code: "emailInvalid"}
	errBadPassword error = &inputval.FieldError{Field: "password", Code: "passwordTooShort"}
)

const bcryptCost = 10

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by normalized email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByAccount looks up a user by normalized account name.
func (s *Store) GetByAccount(ctx context.Context, account string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"account": normalize.Account(account)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListAll returns every user, newest first. Admin screens only.
func (s *Store) ListAll(ctx context.Context) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Create inserts a new user after normalizing and validating fields and
// hashing the plaintext password. Membership arrays start empty.
func (s *Store) Create(ctx context.Context, u models.User, password string) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Account = normalize.Account(u.Account)
	u.Email = normalize.Email(u.Email)
	u.Name = normalize.Name(u.Name)

	if len(u.Account) < 4 || len(u.Account) > 20 || !inputval.IsAlphanumeric(u.Account) {
		return models.User{}, errBadAccount
	}
	if !inputval.IsValidEmail(u.Email) {
		return models.User{}, errBadEmail
	}
	if len(password) < 8 {
		return models.User{}, errBadPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return models.User{}, err
	}
	u.Password = string(hash)

	u.OrganizeGroups = []models.GroupRef{}
	u.JoinGroups = []models.GroupRef{}
	u.FavoriteGroups = []models.GroupRef{}
	u.Tokens = []string{}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, classifyDup(err)
		}
		return models.User{}, err
	}
	return u, nil
}

// Authenticate verifies an email/password pair. Both a missing user and a
// wrong password return ErrInvalidCredentials so callers cannot probe for
// registered emails.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// ProfileUpdate holds the self-editable profile fields.
type ProfileUpdate struct {
	Name   string
	Gender string
	Age    int
	Tags   []string
	Image  string
}

// UpdateProfile updates a user's own profile fields.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	set := bson.M{
		"name":       normalize.Name(upd.Name),
		"gender":     upd.Gender,
		"age":        upd.Age,
		"tags":       upd.Tags,
		"updated_at": time.Now(),
	}
	if upd.Image != "" {
		set["image"] = upd.Image
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// PushToken appends a newly issued token to the user's tokens array.
func (s *Store) PushToken(ctx context.Context, id primitive.ObjectID, token string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"tokens": token},
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

// SwapToken atomically replaces oldToken with newToken in the user's
// tokens array. Returns mongo.ErrNoDocuments if the old token is no
// longer listed.
func (s *Store) SwapToken(ctx context.Context, id primitive.ObjectID, oldToken, newToken string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "tokens": oldToken},
		bson.M{
			"$set": bson.M{"tokens.$": newToken, "updated_at": time.Now()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// PullToken removes a token from the user's tokens array, revoking it.
func (s *Store) PullToken(ctx context.Context, id primitive.ObjectID, token string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{"tokens": token},
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

// Delete removes the user document. Cascading cleanup of groups and chats
// is the membership store's job.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// classifyDup maps a duplicate-key error to the field that collided,
// using the index names set in indexes.EnsureAll.
func classifyDup(err error) error {
	if strings.Contains(err.Error(), "account") {
		return ErrDuplicateAccount
	}
	return ErrDuplicateEmail
}
