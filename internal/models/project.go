package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Project struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`

	Owner         primitive.ObjectID   `bson:"owner" json:"owner"`
	Collaborators []primitive.ObjectID `bson:"collaborators" json:"collaborators"` // owner always included
	Invited       []primitive.ObjectID `bson:"invited" json:"invited"`
}

// ProjectView is a project with its owner and members resolved for display.
type ProjectView struct {
	Project
	OwnerUser         UserSummary   `json:"owner_user"`
	CollaboratorUsers []UserSummary `json:"collaborator_users"`
	InvitedUsers      []UserSummary `json:"invited_users"`
}

// MembershipChange moves one user between the id lists of an event or project.
// AddTo and RemoveFrom name list fields (FieldParticipants, FieldInvited, FieldCollaborators).
type MembershipChange struct {
	UserID     primitive.ObjectID
	AddTo      []string
	RemoveFrom []string
}
