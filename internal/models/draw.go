package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DrawPhase represents the lifecycle phase of a draw
type DrawPhase string

const (
	DrawPhaseNotStarted DrawPhase = "NOT_STARTED"
	DrawPhaseSaleOpen   DrawPhase = "SALE_OPEN"
	DrawPhaseSaleClosed DrawPhase = "SALE_CLOSED"
	DrawPhaseDrawing    DrawPhase = "DRAWING"
	DrawPhaseCompleted  DrawPhase = "COMPLETED"
)

// Draw represents one complete sale cycle of the lottery. Draws are never
// deleted; a completed draw is kept as an immutable historical record.
type Draw struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	DrawNumber           uint64             `bson:"drawNumber" json:"drawNumber"`
	Phase                DrawPhase          `bson:"phase" json:"phase"`
	StartTime            time.Time          `bson:"startTime" json:"startTime"`
	EndTime              time.Time          `bson:"endTime" json:"endTime"`
	TicketPrice          int64              `bson:"ticketPrice" json:"ticketPrice"`
	Entries              []uint64           `bson:"entries" json:"entries"` // ticket numbers, append-only while SALE_OPEN
	OutstandingRequestID string             `bson:"outstandingRequestId,omitempty" json:"outstandingRequestId,omitempty"`
	WinningIndices       []int              `bson:"winningIndices,omitempty" json:"winningIndices,omitempty"`
	EmergencyStopped     bool               `bson:"emergencyStopped" json:"emergencyStopped"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}
