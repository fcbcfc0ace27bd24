package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ContainsID reports whether id is in ids.
func ContainsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// AddID appends id unless it is already present.
func AddID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	if ContainsID(ids, id) {
		return ids
	}
	return append(ids, id)
}

// RemoveID returns ids without id.
func RemoveID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
