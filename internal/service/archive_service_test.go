package service

import (
	"context"
	"testing"

	"github.com/callwise/flow-version-service/internal/dto"
	"github.com/callwise/flow-version-service/pkg/code"

	"github.com/stretchr/testify/require"
)

func TestArchiveRetainsLatestN(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedVersions(t, env, "flow-1", payloadV1, payloadV1, payloadV2)

	report, err := env.archiveSvc.Archive(ctx, &dto.ArchiveRequest{
		FlowID: "flow-1",
		Policy: dto.ArchivePolicyDTO{RetainLatestN: 1},
	})
	require.NoError(t, err)
	require.Equal(t, 2, report.ArchivedCount)
	require.Equal(t, []int64{1, 2}, report.Archived)
	require.Empty(t, report.Skipped)

	// head stays active
	head, err := env.versionSvc.Get(ctx, "flow-1", 3)
	require.NoError(t, err)
	require.False(t, head.Archived)
}

func TestArchiveNeverTouchesHead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedVersions(t, env, "flow-1", payloadV1, payloadV2)

	// the most aggressive possible policy
	report, err := env.archiveSvc.Archive(ctx, &dto.ArchiveRequest{
		FlowID: "flow-1",
		Policy: dto.ArchivePolicyDTO{},
	})
	require.NoError(t, err)
	require.Equal(t, []int64{1}, report.Archived)

	head, err := env.versionSvc.Get(ctx, "flow-1", 2)
	require.NoError(t, err)
	require.False(t, head.Archived)
}

func TestArchiveIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedVersions(t, env, "flow-1", payloadV1, payloadV1, payloadV2)

	req := &dto.ArchiveRequest{
		FlowID: "flow-1",
		Policy: dto.ArchivePolicyDTO{RetainLatestN: 1},
	}
	first, err := env.archiveSvc.Archive(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 2, first.ArchivedCount)

	second, err := env.archiveSvc.Archive(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 0, second.ArchivedCount)
	require.Empty(t, second.Skipped)
}

func TestArchiveProtectsRollbackTargets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedVersions(t, env, "flow-1", payloadV1, payloadV2)

	_, err := env.rollbackSvc.Rollback(ctx, &dto.RollbackRequest{
		FlowID:        "flow-1",
		TargetVersion: 1,
	}, "bob")
	require.NoError(t, err)

	// v3 is the head rollback pointing at v1; v1 must survive, v2 goes
	report, err := env.archiveSvc.Archive(ctx, &dto.ArchiveRequest{
		FlowID: "flow-1",
		Policy: dto.ArchivePolicyDTO{RetainLatestN: 1, ProtectRollbackTargets: true},
	})
	require.NoError(t, err)
	require.Equal(t, []int64{2}, report.Archived)
	require.Equal(t, []int64{1}, report.Skipped)

	v1, err := env.versionSvc.Get(ctx, "flow-1", 1)
	require.NoError(t, err)
	require.False(t, v1.Archived)
}

func TestArchiveWithoutProtectionArchivesTargets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedVersions(t, env, "flow-1", payloadV1, payloadV2)

	_, err := env.rollbackSvc.Rollback(ctx, &dto.RollbackRequest{
		FlowID:        "flow-1",
		TargetVersion: 1,
	}, "bob")
	require.NoError(t, err)

	report, err := env.archiveSvc.Archive(ctx, &dto.ArchiveRequest{
		FlowID: "flow-1",
		Policy: dto.ArchivePolicyDTO{RetainLatestN: 1},
	})
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, report.Archived)
	require.Empty(t, report.Skipped)
}

func TestArchiveRetainDuration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedVersions(t, env, "flow-1", payloadV1, payloadV1, payloadV2)

	// everything was created seconds ago, well inside the retention window
	report, err := env.archiveSvc.Archive(ctx, &dto.ArchiveRequest{
		FlowID: "flow-1",
		Policy: dto.ArchivePolicyDTO{RetainDurationDays: 30},
	})
	require.NoError(t, err)
	require.Equal(t, 0, report.ArchivedCount)
}

func TestArchiveUnknownFlow(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.archiveSvc.Archive(context.Background(), &dto.ArchiveRequest{
		FlowID: "missing",
		Policy: dto.ArchivePolicyDTO{RetainLatestN: 1},
	})
	require.True(t, code.ErrorFlowNotFound.Is(err))
}

func TestPurgeRequiresArchived(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedVersions(t, env, "flow-1", payloadV1, payloadV2)

	err := env.archiveSvc.Purge(ctx, &dto.PurgeRequest{FlowID: "flow-1", Version: 1})
	require.True(t, code.ErrorPurgeActive.Is(err))

	_, err = env.archiveSvc.Archive(ctx, &dto.ArchiveRequest{
		FlowID: "flow-1",
		Policy: dto.ArchivePolicyDTO{},
	})
	require.NoError(t, err)

	require.NoError(t, env.archiveSvc.Purge(ctx, &dto.PurgeRequest{FlowID: "flow-1", Version: 1}))
	// purging twice is a no-op
	require.NoError(t, env.archiveSvc.Purge(ctx, &dto.PurgeRequest{FlowID: "flow-1", Version: 1}))

	v, err := env.versionSvc.Get(ctx, "flow-1", 1)
	require.NoError(t, err)
	require.True(t, v.Purged)
	require.Empty(t, v.Payload)

	err = env.archiveSvc.Purge(ctx, &dto.PurgeRequest{FlowID: "flow-1", Version: 9})
	require.True(t, code.ErrorVersionNotFound.Is(err))
}

func TestSweepAllCoversEveryFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedVersions(t, env, "flow-a", payloadV1, payloadV2)
	seedVersions(t, env, "flow-b", payloadV1, payloadV1, payloadV2)

	reports, err := env.archiveSvc.SweepAll(ctx, dto.ArchivePolicyDTO{RetainLatestN: 1})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	byFlow := make(map[string]*dto.ArchiveReportDTO)
	for _, r := range reports {
		byFlow[r.FlowID] = r
	}
	require.Equal(t, 1, byFlow["flow-a"].ArchivedCount)
	require.Equal(t, 2, byFlow["flow-b"].ArchivedCount)
}
