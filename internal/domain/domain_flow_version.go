package domain

import (
	"context"
	"errors"
	"time"
)

// Origin marks how a version came to exist.
type Origin string

const (
	OriginManual   Origin = "MANUAL"
	OriginRollback Origin = "ROLLBACK"
	OriginSystem   Origin = "SYSTEM"
)

// FlowVersion is one immutable snapshot of a flow.
type FlowVersion struct {
	FlowID         string
	VersionNumber  int64
	Payload        string
	PayloadHash    string
	CreatedBy      string
	Label          string
	Origin         Origin
	RolledBackFrom int64 // 0 means not a rollback
	Archived       bool
	ArchivedAt     time.Time
	Purged         bool
	PurgedAt       time.Time
	CreatedAt      time.Time
}

// FlowVersionSet is the write model for a new snapshot. VersionNumber is
// allocated by the store, never supplied by callers.
type FlowVersionSet struct {
	FlowID         string
	Payload        string
	PayloadHash    string
	CreatedBy      string
	Label          string
	Origin         Origin
	RolledBackFrom int64
}

// Storage-level sentinel errors; services translate these into catalog codes.
var (
	ErrFlowNotFound    = errors.New("flow not found")
	ErrVersionNotFound = errors.New("flow version not found")
	ErrVersionConflict = errors.New("version number allocation conflict")
	ErrHeadConflict    = errors.New("head pointer moved concurrently")
	ErrArchiveHead     = errors.New("current head cannot be archived")
	ErrNotArchived     = errors.New("version is not archived")
)

// FlowVersionRepository is the append-only snapshot store. Implementations
// must serialize version allocation per flow: concurrent Create calls for
// one flow never observe the same number, and numbering is gap-free from 1.
type FlowVersionRepository interface {
	// Create allocates the next version number for set.FlowID, persists the
	// snapshot and advances the head pointer in one transaction. Returns
	// ErrVersionConflict if the unique-index safety net fires.
	Create(ctx context.Context, set *FlowVersionSet) (*FlowVersion, error)

	// Get returns one version, or ErrVersionNotFound.
	Get(ctx context.Context, flowID string, versionNumber int64) (*FlowVersion, error)

	// GetLatest returns the highest-numbered version, or ErrVersionNotFound
	// when the flow has no versions at all.
	GetLatest(ctx context.Context, flowID string) (*FlowVersion, error)

	// List returns versions ordered by ascending version number.
	List(ctx context.Context, flowID string, includeArchived bool) ([]*FlowVersion, error)

	// ListPage returns a descending (latest first) page plus the total count.
	ListPage(ctx context.Context, flowID string, includeArchived bool, limit, offset int) ([]*FlowVersion, int64, error)

	// MarkArchived flags a version archived. Idempotent. Re-reads the head
	// pointer inside the transaction and returns ErrArchiveHead if the
	// target is (or just became) the current head.
	MarkArchived(ctx context.Context, flowID string, versionNumber int64) error

	// MarkActive clears the archived flag. Idempotent; rejects the head the
	// same way for symmetry.
	MarkActive(ctx context.Context, flowID string, versionNumber int64) error

	// Purge irreversibly drops the payload of an archived version, keeping
	// the row for numbering continuity. Returns ErrNotArchived unless the
	// version was archived first.
	Purge(ctx context.Context, flowID string, versionNumber int64) error
}
