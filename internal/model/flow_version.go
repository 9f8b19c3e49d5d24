package model

import "github.com/callwise/flow-version-service/pkg/timex"

// Version origins.
const (
	OriginManual   = "MANUAL"
	OriginRollback = "ROLLBACK"
	OriginSystem   = "SYSTEM"
)

// FlowVersion is one immutable snapshot row. The composite unique index on
// (flow_id, version_number) is the safety net that turns an allocation race
// into a conflict error instead of a duplicate version.
type FlowVersion struct {
	ID             int64      `gorm:"primaryKey;autoIncrement"`
	FlowID         string     `gorm:"uniqueIndex:idx_flow_version,priority:1;size:128;not null"`
	VersionNumber  int64      `gorm:"uniqueIndex:idx_flow_version,priority:2;not null"`
	Payload        string     `gorm:"type:text"`
	PayloadHash    string     `gorm:"index;size:64"`
	CreatedBy      string     `gorm:"size:128"`
	Label          string     `gorm:"size:255"`
	Origin         string     `gorm:"size:16;not null;default:MANUAL"`
	RolledBackFrom int64      `gorm:"not null;default:0"`
	Archived       bool       `gorm:"not null;default:false"`
	ArchivedAt     timex.Time `gorm:"autoCreateTime:false"`
	Purged         bool       `gorm:"not null;default:false"`
	PurgedAt       timex.Time `gorm:"autoCreateTime:false"`
	CreatedAt      timex.Time `gorm:"autoCreateTime:false"`
}

func (FlowVersion) TableName() string {
	return "flow_version"
}
