package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookmarkType string

const (
	BookmarkForum      BookmarkType = "forum"
	BookmarkRepository BookmarkType = "repository"
)

func (t BookmarkType) Valid() bool {
	return t == BookmarkForum || t == BookmarkRepository
}

// Bookmark points a user at a forum post or repository item.
// Exactly one document per (user, type, item).
type Bookmark struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	User primitive.ObjectID `bson:"user" json:"user"`
	Type BookmarkType       `bson:"type" json:"type"`
	Item primitive.ObjectID `bson:"item" json:"item"`
}
