package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RepositoryItem is an uploaded research file with descriptive metadata.
type RepositoryItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	Title       string   `bson:"title" json:"title"`
	Description string   `bson:"description" json:"description"`
	Tags        []string `bson:"tags" json:"tags"`

	FileName    string `bson:"file_name" json:"file_name"` // original name as uploaded
	FilePath    string `bson:"file_path" json:"-"`         // storage key
	FileURL     string `bson:"file_url" json:"file_url"`
	ContentType string `bson:"content_type" json:"content_type"`
	Size        int64  `bson:"size" json:"size"`
	Checksum    string `bson:"checksum" json:"checksum"` // BLAKE3, hex
	Storage     string `bson:"storage" json:"storage"`   // "local" or "cloudinary"

	Owner primitive.ObjectID `bson:"owner" json:"owner"`
}
