package services

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/resor-app/resor/pkg/apperr"
	"github.com/resor-app/resor/pkg/database"
)

// parseID turns a path parameter into an ObjectID. A malformed id cannot
// name an existing document, so it is reported as not found.
func parseID(raw string) (primitive.ObjectID, error) {
	id, ok := database.ParseID(raw)
	if !ok {
		return primitive.NilObjectID, apperr.NotFound("Not found")
	}
	return id, nil
}
