package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventType string

const (
	EventConference EventType = "conference"
	EventSeminar    EventType = "seminar"
	EventWorkshop   EventType = "workshop"
	EventDeadline   EventType = "deadline"
	EventOther      EventType = "other"
)

func (t EventType) Valid() bool {
	switch t {
	case EventConference, EventSeminar, EventWorkshop, EventDeadline, EventOther:
		return true
	}
	return false
}

type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Location    string    `bson:"location" json:"location"`
	Start       time.Time `bson:"start" json:"start"`
	End         time.Time `bson:"end" json:"end"`
	Type        EventType `bson:"type" json:"type"`

	CreatedBy    primitive.ObjectID   `bson:"created_by" json:"created_by"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"` // accepted
	Invited      []primitive.ObjectID `bson:"invited" json:"invited"`           // pending
}

// Event list fields addressable by MembershipChange.
const (
	FieldParticipants  = "participants"
	FieldInvited       = "invited"
	FieldCollaborators = "collaborators"
)

// EventView is an event with its creator and members resolved for display.
type EventView struct {
	Event
	CreatedByUser    UserSummary   `json:"created_by_user"`
	ParticipantUsers []UserSummary `json:"participant_users"`
	InvitedUsers     []UserSummary `json:"invited_users"`
}
