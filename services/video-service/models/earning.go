package models

import (
	"time"

	"github.com/google/uuid"
)

// Earning is one revenue line of a creator for a billing period. Rows are
// written by the billing side and only read here.
type Earning struct {
	Base
	CreatorID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"creator_id"`
	VideoID            *uuid.UUID `gorm:"type:uuid;index" json:"video_id,omitempty"`
	TotalRevenue       int64      `gorm:"not null;default:0" json:"total_revenue"`
	CreatorCommission  int64      `gorm:"not null;default:0" json:"creator_commission"`
	PlatformCommission int64      `gorm:"not null;default:0" json:"platform_commission"`
	PeriodMonth        time.Time  `gorm:"type:date;not null;index" json:"period_month"`
}

func (Earning) TableName() string {
	return "earnings"
}
