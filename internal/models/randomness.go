package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RandomnessRequest tracks one oracle randomness round trip for a draw.
// At most one request exists per draw; Fulfilled is monotonic false -> true.
type RandomnessRequest struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RequestID      string             `bson:"requestId" json:"requestId"` // oracle-assigned
	DrawNumber     uint64             `bson:"drawNumber" json:"drawNumber"`
	Fulfilled      bool               `bson:"fulfilled" json:"fulfilled"`
	Seed           string             `bson:"seed,omitempty" json:"seed,omitempty"` // hex, set on fulfillment
	Values         []string           `bson:"values,omitempty" json:"values,omitempty"`
	Confirmations  int                `bson:"confirmations" json:"confirmations"`
	CallbackBudget int64              `bson:"callbackBudget" json:"callbackBudget"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	FulfilledAt    time.Time          `bson:"fulfilledAt,omitempty" json:"fulfilledAt,omitempty"`
}
