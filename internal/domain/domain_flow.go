// Package domain defines the domain models and repository contracts.
package domain

import (
	"context"
	"time"
)

// Flow is the head-pointer record for one flow.
type Flow struct {
	FlowID         string
	CurrentVersion int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FlowRepository manages head-pointer rows. Head advancement during version
// creation happens inside FlowVersionRepository.Create; this interface covers
// reads and the reconcile path.
type FlowRepository interface {
	// Get returns the head record, or ErrFlowNotFound.
	Get(ctx context.Context, flowID string) (*Flow, error)

	// UpdateHead compare-and-swaps the head pointer. Returns
	// ErrHeadConflict when the stored head no longer equals from.
	UpdateHead(ctx context.Context, flowID string, from, to int64) error

	// ListFlowIDs returns every flow known to the version store. Used by the
	// archival sweep.
	ListFlowIDs(ctx context.Context) ([]string, error)
}
