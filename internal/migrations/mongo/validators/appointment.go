// Package validators holds the $jsonSchema documents applied to each
// collection. Schema enforcement at the storage layer is the last line of
// defense behind application-level validation.
package validators

import "go.mongodb.org/mongo-driver/bson"

// Appointment validates the Appointments collection.
var Appointment = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"appointment_date", "time_slot", "subject", "customer", "status", "payment_status", "duration"},
		"properties": bson.M{
			"appointment_date": bson.M{"bsonType": "date"},
			"time_slot": bson.M{
				"bsonType": "string",
				"pattern":  `^(0[9]|1[0-9]|20):(00|30)$`,
			},
			"subject": bson.M{
				"bsonType": "object",
				"required": []string{"kind", "ref_id"},
				"properties": bson.M{
					"kind":         bson.M{"enum": []string{"service", "package"}},
					"ref_id":       bson.M{"bsonType": "string"},
					"display_name": bson.M{"bsonType": "string"},
				},
			},
			"customer": bson.M{
				"bsonType": "object",
				"required": []string{"name", "email", "phone"},
				"properties": bson.M{
					"user_id": bson.M{"bsonType": "string"},
					"name":    bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
					"email":   bson.M{"bsonType": "string"},
					"phone":   bson.M{"bsonType": "string"},
				},
			},
			"staff_id": bson.M{"bsonType": "string"},
			"duration": bson.M{"bsonType": "int", "minimum": 1},
			"price":    bson.M{"bsonType": []string{"double", "int", "long", "decimal"}, "minimum": 0},
			"notes":    bson.M{"bsonType": "string", "maxLength": 500},
			"payment_status": bson.M{
				"enum": []string{"unpaid", "paid", "refunded"},
			},
			"status": bson.M{
				"enum": []string{"pending", "confirmed", "completed", "cancelled", "no-show"},
			},
			"cancellation_reason": bson.M{"bsonType": "string", "maxLength": 500},
			"cancelled_at":        bson.M{"bsonType": "date"},
			"cancelled_by":        bson.M{"bsonType": "string"},
			"confirmed_at":        bson.M{"bsonType": "date"},
			"confirmed_by":        bson.M{"bsonType": "string"},
			"created_at":          bson.M{"bsonType": "date"},
			"updated_at":          bson.M{"bsonType": "date"},
		},
	},
}

// SlotLock validates the Slot_locks collection.
var SlotLock = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "expires_at"},
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"expires_at": bson.M{"bsonType": "date"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
