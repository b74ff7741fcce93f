package domain

import (
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IsServerID reports whether id was assigned by the project service.
// The service issues ObjectID hex strings; anything else was minted locally.
func IsServerID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// NewServerID mints an id in the project service's format.
func NewServerID() string {
	return primitive.NewObjectID().Hex()
}

// NewLocalID mints an id for a node created on the client before the
// service has seen it.
func NewLocalID() string {
	return uuid.New().String()
}
