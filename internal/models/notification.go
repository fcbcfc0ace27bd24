package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationConnection NotificationType = "connection"
	NotificationProject    NotificationType = "project"
	NotificationEvent      NotificationType = "event"
	NotificationForum      NotificationType = "forum"
	NotificationSystem     NotificationType = "system"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	User    primitive.ObjectID `bson:"user" json:"user"` // recipient
	Type    NotificationType   `bson:"type" json:"type"`
	Message string             `bson:"message" json:"message"`
	Link    string             `bson:"link,omitempty" json:"link,omitempty"`
	Read    bool               `bson:"read" json:"read"`
}
