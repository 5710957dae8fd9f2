package mongo

import "go.mongodb.org/mongo-driver/bson/primitive"

// parseObjectID converts a hex id from a URL into an ObjectID. Malformed ids
// cannot match any document, so callers report them as not found.
func parseObjectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

func insertedHex(id interface{}) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return ""
}
