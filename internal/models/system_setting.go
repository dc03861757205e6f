package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Setting keys persisted by the administrative setters
const (
	SettingTicketPrice        = "ticket_price"
	SettingSalePeriodSeconds  = "sale_period_seconds"
	SettingFeeRateBps         = "fee_rate_bps"
	SettingDistributionRatios = "distribution_ratios"
)

// SystemSetting holds one runtime-adjustable configuration value
type SystemSetting struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Key         string             `bson:"key" json:"key"`
	Value       interface{}        `bson:"value" json:"value"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DistributionRatios is the value stored under SettingDistributionRatios.
// The three percentages must sum to 100.
type DistributionRatios struct {
	GrandPercent     int64 `bson:"grandPercent" json:"grandPercent"`
	SecondaryPercent int64 `bson:"secondaryPercent" json:"secondaryPercent"`
	TreasuryPercent  int64 `bson:"treasuryPercent" json:"treasuryPercent"`
}
