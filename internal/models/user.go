package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Username string `bson:"username" json:"username"` // stored lowercase, unique
	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email" json:"email"`     // stored lowercase, unique
	Password string `bson:"password_hash" json:"-"` // Don't return password in JSON

	Profile `bson:",inline"`
}

// Profile holds the researcher's free-text profile fields.
type Profile struct {
	Bio          string `bson:"bio" json:"bio"`
	Interests    string `bson:"interests" json:"interests"`
	Publications string `bson:"publications" json:"publications"`
	Projects     string `bson:"projects" json:"projects"`
	Affiliations string `bson:"affiliations" json:"affiliations"`
	Contact      string `bson:"contact" json:"contact"`
}

// ProfileUpdate carries optional profile changes; nil fields are left untouched.
type ProfileUpdate struct {
	Name         *string `json:"name,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	Interests    *string `json:"interests,omitempty"`
	Publications *string `json:"publications,omitempty"`
	Projects     *string `json:"projects,omitempty"`
	Affiliations *string `json:"affiliations,omitempty"`
	Contact      *string `json:"contact,omitempty"`
}

// Apply copies the set fields of u onto user.
func (u ProfileUpdate) Apply(user *User) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&user.Name, u.Name)
	set(&user.Bio, u.Bio)
	set(&user.Interests, u.Interests)
	set(&user.Publications, u.Publications)
	set(&user.Projects, u.Projects)
	set(&user.Affiliations, u.Affiliations)
	set(&user.Contact, u.Contact)
}

// UserSummary is the public identity shown next to connections, comments and notifications.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID.Hex(), Username: u.Username, Name: u.Name}
}

// DisplayName prefers the full name and falls back to the username.
func (s UserSummary) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Username
}
