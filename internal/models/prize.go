package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrizeDistribution records how a completed draw's net pool was split.
// Invariant: GrandShare + SecondaryShare + TreasuryShare == NetPool exactly.
type PrizeDistribution struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	DrawNumber       uint64             `bson:"drawNumber" json:"drawNumber"`
	NetPool          int64              `bson:"netPool" json:"netPool"`
	GrandShare       int64              `bson:"grandShare" json:"grandShare"`
	SecondaryShare   int64              `bson:"secondaryShare" json:"secondaryShare"`
	TreasuryShare    int64              `bson:"treasuryShare" json:"treasuryShare"`
	GrandWinner      string             `bson:"grandWinner" json:"grandWinner"`
	SecondaryWinners []string           `bson:"secondaryWinners" json:"secondaryWinners"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

// ClaimableBalance is a recipient's accumulated, not-yet-withdrawn payout.
// Only the prize ledger mutates it.
type ClaimableBalance struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Account   string             `bson:"account" json:"account"`
	Amount    int64              `bson:"amount" json:"amount"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Ledger transaction types
const (
	TxTypeDeposit  = "DEPOSIT"
	TxTypeFee      = "FEE"
	TxTypeCredit   = "CREDIT"
	TxTypeClaim    = "CLAIM"
	TxTypeTreasury = "TREASURY"
)

// LedgerTransaction is an audit row for every movement of value through the
// prize ledger.
type LedgerTransaction struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Type       string             `bson:"type" json:"type"`
	DrawNumber uint64             `bson:"drawNumber,omitempty" json:"drawNumber,omitempty"`
	Account    string             `bson:"account,omitempty" json:"account,omitempty"`
	Amount     int64              `bson:"amount" json:"amount"`
	Reference  string             `bson:"reference,omitempty" json:"reference,omitempty"` // gateway transfer ref
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
