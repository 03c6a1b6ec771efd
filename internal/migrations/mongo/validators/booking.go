package validators

import "go.mongodb.org/mongo-driver/bson"

// BookingValidator mirrors model.Booking's bson layout. Room and hour bounds
// are deployment settings, so only their types are enforced here.
var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"room",
			"date",
			"hour",
			"booked_by",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"room": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"hour": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  23,
			},

			"booked_by": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
