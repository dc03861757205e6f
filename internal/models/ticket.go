package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TicketTier annotates a ticket after winner selection
type TicketTier string

const (
	TicketTierNone      TicketTier = ""
	TicketTierGrand     TicketTier = "GRAND"
	TicketTierSecondary TicketTier = "SECONDARY"
)

// Ticket represents a single purchased entry in a draw. Ticket numbers are
// allocated from a global sequence and are strictly increasing.
type Ticket struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TicketNumber uint64             `bson:"ticketNumber" json:"ticketNumber"`
	DrawNumber   uint64             `bson:"drawNumber" json:"drawNumber"`
	Owner        string             `bson:"owner" json:"owner"`
	Tier         TicketTier         `bson:"tier,omitempty" json:"tier,omitempty"`
	IssuedAt     time.Time          `bson:"issuedAt" json:"issuedAt"`
}
