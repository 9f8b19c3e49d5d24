// Package dto holds the request and response shapes of the API surface.
package dto

import (
	"encoding/json"

	"github.com/callwise/flow-version-service/pkg/timex"
)

// VersionDTO is a full snapshot including its payload.
type VersionDTO struct {
	FlowID         string          `json:"flowId"`
	VersionNumber  int64           `json:"versionNumber"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	PayloadHash    string          `json:"payloadHash"`
	CreatedBy      string          `json:"createdBy"`
	Label          string          `json:"label,omitempty"`
	Origin         string          `json:"origin"`
	RolledBackFrom int64           `json:"rolledBackFrom,omitempty"`
	Archived       bool            `json:"archived"`
	ArchivedAt     timex.Time      `json:"archivedAt,omitempty"`
	Purged         bool            `json:"purged,omitempty"`
	CreatedAt      timex.Time      `json:"createdAt"`
}

// VersionSummaryDTO is a history row without the payload body.
type VersionSummaryDTO struct {
	FlowID         string     `json:"flowId"`
	VersionNumber  int64      `json:"versionNumber"`
	PayloadHash    string     `json:"payloadHash"`
	CreatedBy      string     `json:"createdBy"`
	Label          string     `json:"label,omitempty"`
	Origin         string     `json:"origin"`
	RolledBackFrom int64      `json:"rolledBackFrom,omitempty"`
	Archived       bool       `json:"archived"`
	Purged         bool       `json:"purged,omitempty"`
	CreatedAt      timex.Time `json:"createdAt"`
}

// CreateVersionRequest creates a new manual version.
type CreateVersionRequest struct {
	FlowID  string          `json:"flowId" binding:"required,max=128"`
	Payload json.RawMessage `json:"payload" binding:"required"`
	Label   string          `json:"label" binding:"max=255"`
}

// HistoryListRequest lists version summaries, paginated via query params.
type HistoryListRequest struct {
	FlowID          string `form:"flowId" binding:"required,max=128"`
	IncludeArchived bool   `form:"includeArchived"`
}

// GetVersionRequest fetches one version with payload.
type GetVersionRequest struct {
	FlowID  string `form:"flowId" binding:"required,max=128"`
	Version int64  `form:"version" binding:"required,min=1"`
}

// CompareRequest diffs versionA against versionB.
type CompareRequest struct {
	FlowID   string `form:"flowId" binding:"required,max=128"`
	VersionA int64  `form:"versionA" binding:"required,min=1"`
	VersionB int64  `form:"versionB" binding:"required,min=1"`
}

// RollbackRequest replays a prior version as the new head.
type RollbackRequest struct {
	FlowID        string `json:"flowId" binding:"required,max=128"`
	TargetVersion int64  `json:"targetVersion" binding:"required,min=1"`
	Reason        string `json:"reason" binding:"max=255"`
}

// RollbackHistoryRequest lists rollback records of a flow.
type RollbackHistoryRequest struct {
	FlowID string `form:"flowId" binding:"required,max=128"`
}

// RollbackRecordDTO is one entry of the derived rollback history view.
type RollbackRecordDTO struct {
	RollbackVersion int64      `json:"rollbackVersion"`
	RolledBackFrom  int64      `json:"rolledBackFrom"`
	Actor           string     `json:"actor"`
	Reason          string     `json:"reason,omitempty"`
	Timestamp       timex.Time `json:"timestamp"`
}

// ArchivePolicyDTO configures one archival run.
type ArchivePolicyDTO struct {
	RetainLatestN          int  `json:"retainLatestN" binding:"min=0"`
	RetainDurationDays     int  `json:"retainDurationDays" binding:"min=0"`
	ProtectRollbackTargets bool `json:"protectRollbackTargets"`
}

// ArchiveRequest runs the archival policy against one flow.
type ArchiveRequest struct {
	FlowID string           `json:"flowId" binding:"required,max=128"`
	Policy ArchivePolicyDTO `json:"policy"`
}

// ArchiveReportDTO is the outcome of an archival run. Skipped lists candidate
// versions excluded by provenance protection.
type ArchiveReportDTO struct {
	FlowID        string  `json:"flowId"`
	ArchivedCount int     `json:"archivedCount"`
	Archived      []int64 `json:"archived,omitempty"`
	Skipped       []int64 `json:"skipped"`
}

// PurgeRequest irreversibly drops the payload of an archived version.
type PurgeRequest struct {
	FlowID  string `json:"flowId" binding:"required,max=128"`
	Version int64  `json:"version" binding:"required,min=1"`
}
