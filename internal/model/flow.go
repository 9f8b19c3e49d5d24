package model

import "github.com/callwise/flow-version-service/pkg/timex"

// Flow is the per-flow head-pointer record. Flow identity is owned by the
// surrounding system; this row exists only to track the current version with
// its own concurrency control, and is created lazily on first snapshot.
type Flow struct {
	ID             int64      `gorm:"primaryKey;autoIncrement"`
	FlowID         string     `gorm:"uniqueIndex;size:128;not null"`
	CurrentVersion int64      `gorm:"not null;default:0"`
	CreatedAt      timex.Time `gorm:"autoCreateTime:false"`
	UpdatedAt      timex.Time `gorm:"autoUpdateTime:false"`
}

func (Flow) TableName() string {
	return "flow"
}
