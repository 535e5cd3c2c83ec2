package validators

import "go.mongodb.org/mongo-driver/bson"

// Service validates the Services collection.
var Service = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"name", "category", "duration", "pricing", "active"},
		"properties": bson.M{
			"name":        bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
			"category":    bson.M{"bsonType": "string", "minLength": 2, "maxLength": 50},
			"description": bson.M{"bsonType": "string", "maxLength": 1000},
			"duration":    bson.M{"bsonType": "int", "minimum": 5, "maximum": 480},
			"pricing": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"label", "amount"},
					"properties": bson.M{
						"label":  bson.M{"bsonType": "string", "minLength": 1, "maxLength": 50},
						"amount": bson.M{"bsonType": []string{"double", "int", "long", "decimal"}, "minimum": 0},
					},
				},
			},
			"active":     bson.M{"bsonType": "bool"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}

// Package validates the Packages collection.
var Package = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"name", "total_duration", "price", "active"},
		"properties": bson.M{
			"name":        bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
			"description": bson.M{"bsonType": "string", "maxLength": 1000},
			"service_ids": bson.M{
				"bsonType": "array",
				"items":    bson.M{"bsonType": "string"},
			},
			"total_duration": bson.M{"bsonType": "int", "minimum": 5, "maximum": 960},
			"price":          bson.M{"bsonType": []string{"double", "int", "long", "decimal"}, "minimum": 0},
			"active":         bson.M{"bsonType": "bool"},
			"created_at":     bson.M{"bsonType": "date"},
		},
	},
}
