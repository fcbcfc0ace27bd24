package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PostType string

const (
	PostTypeIdea  PostType = "idea"
	PostTypeIssue PostType = "issue"
)

func (t PostType) Valid() bool {
	return t == PostTypeIdea || t == PostTypeIssue
}

type ForumPost struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	Author     primitive.ObjectID `bson:"author" json:"author"`
	AuthorName string             `bson:"author_name" json:"author_name"`
	Type       PostType           `bson:"type" json:"type"`
	Title      string             `bson:"title" json:"title"`
	Content    string             `bson:"content" json:"content"`

	Likes    []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments []Comment            `bson:"comments" json:"comments"`
}

// Comment is embedded in its forum post.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	UserName  string             `bson:"user_name" json:"user_name"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// LikedBy reports whether userID is in the post's like set.
func (p *ForumPost) LikedBy(userID primitive.ObjectID) bool {
	return ContainsID(p.Likes, userID)
}
