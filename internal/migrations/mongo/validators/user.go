package validators

import "go.mongodb.org/mongo-driver/bson"

// User validates the Users collection.
var User = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"name", "email", "role"},
		"properties": bson.M{
			"name":  bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
			"email": bson.M{"bsonType": "string"},
			"phone": bson.M{"bsonType": "string"},
			"role": bson.M{
				"enum": []string{"customer", "staff", "manager", "receptionist", "admin"},
			},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
