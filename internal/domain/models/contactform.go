// internal/domain/models/contactform.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContactForm is a submitted "contact us" form. Created by anonymous
// visitors; listed and deleted by admins.
type ContactForm struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Nickname    string             `bson:"nickname" json:"nickname"`
	Email       string             `bson:"email" json:"email"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
