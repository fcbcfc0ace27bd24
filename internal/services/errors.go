package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/researchhive-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrUnauthorized means the caller is not (or no longer) authenticated.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the caller may not act on the addressed resource.
	ErrForbidden = errors.New("forbidden")

	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
)

// parseID decodes a hex ObjectID, reporting a validation error on field when malformed.
func parseID(field, hex string) (primitive.ObjectID, error) {
	if hex == "" {
		return primitive.NilObjectID, utils.Invalid(field, field+" is required")
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, utils.Invalid(field, "invalid "+field)
	}
	return id, nil
}

func requireSelf(actor primitive.ObjectID, userID string) (primitive.ObjectID, error) {
	id, err := parseID("userId", userID)
	if err != nil {
		return id, err
	}
	if id != actor {
		return id, ErrForbidden
	}
	return id, nil
}

// StorageTimeout bounds each storage call made on behalf of a request.
const StorageTimeout = 5 * time.Second
