package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

type Connection struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Requester primitive.ObjectID `bson:"requester" json:"requester"`
	Recipient primitive.ObjectID `bson:"recipient" json:"recipient"`
	Status    ConnectionStatus   `bson:"status" json:"status"`
}

// Involves reports whether userID is either side of the connection.
func (c *Connection) Involves(userID primitive.ObjectID) bool {
	return c.Requester == userID || c.Recipient == userID
}

// ConnectionView is a connection with both sides resolved for display.
type ConnectionView struct {
	Connection
	RequesterUser UserSummary `json:"requester_user"`
	RecipientUser UserSummary `json:"recipient_user"`
}
