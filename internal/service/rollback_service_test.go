package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/callwise/flow-version-service/internal/domain"
	"github.com/callwise/flow-version-service/internal/dto"
	"github.com/callwise/flow-version-service/pkg/app"
	"github.com/callwise/flow-version-service/pkg/code"

	"github.com/stretchr/testify/require"
)

func seedVersions(t *testing.T, env *testEnv, flowID string, payloads ...string) {
	t.Helper()
	ctx := context.Background()
	for _, p := range payloads {
		_, err := env.versionSvc.Create(ctx, &dto.CreateVersionRequest{
			FlowID:  flowID,
			Payload: json.RawMessage(p),
		}, "alice")
		require.NoError(t, err)
	}
}

func TestRollbackAppendsNewVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedVersions(t, env, "flow-1", payloadV1, payloadV2)

	v, err := env.rollbackSvc.Rollback(ctx, &dto.RollbackRequest{
		FlowID:        "flow-1",
		TargetVersion: 1,
		Reason:        "v2 broke the menu",
	}, "bob")
	require.NoError(t, err)
	require.Equal(t, int64(3), v.VersionNumber)
	require.Equal(t, string(domain.OriginRollback), v.Origin)
	require.Equal(t, int64(1), v.RolledBackFrom)
	require.JSONEq(t, payloadV1, string(v.Payload))

	// history keeps all three versions; nothing was rewritten
	list, count, err := env.versionSvc.History(ctx,
		&dto.HistoryListRequest{FlowID: "flow-1"},
		&app.Pager{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(3), count)
	require.Equal(t, int64(3), list[0].VersionNumber)

	// the rollback result is structurally identical to its target
	delta, err := env.versionSvc.Compare(ctx, "flow-1", 1, 3)
	require.NoError(t, err)
	require.True(t, delta.Empty())
}

func TestRollbackToHeadRejected(t *testing.T) {
	env := newTestEnv(t)
	seedVersions(t, env, "flow-1", payloadV1, payloadV2)

	_, err := env.rollbackSvc.Rollback(context.Background(), &dto.RollbackRequest{
		FlowID:        "flow-1",
		TargetVersion: 2,
	}, "bob")
	require.True(t, code.ErrorRollbackToHead.Is(err))
}

func TestRollbackMissingTarget(t *testing.T) {
	env := newTestEnv(t)
	seedVersions(t, env, "flow-1", payloadV1)

	_, err := env.rollbackSvc.Rollback(context.Background(), &dto.RollbackRequest{
		FlowID:        "flow-1",
		TargetVersion: 7,
	}, "bob")
	require.True(t, code.ErrorVersionNotFound.Is(err))

	_, err = env.rollbackSvc.Rollback(context.Background(), &dto.RollbackRequest{
		FlowID:        "no-such-flow",
		TargetVersion: 1,
	}, "bob")
	require.True(t, code.ErrorFlowNotFound.Is(err))
}

func TestRollbackPurgedTargetRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedVersions(t, env, "flow-1", payloadV1, payloadV2, payloadV2)

	require.NoError(t, env.versionRepo.MarkArchived(ctx, "flow-1", 1))
	require.NoError(t, env.versionRepo.Purge(ctx, "flow-1", 1))

	_, err := env.rollbackSvc.Rollback(ctx, &dto.RollbackRequest{
		FlowID:        "flow-1",
		TargetVersion: 1,
	}, "bob")
	require.True(t, code.ErrorVersionPurged.Is(err))
}

func TestRollbackUnarchivesTarget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedVersions(t, env, "flow-1", payloadV1, payloadV2, payloadV2)

	require.NoError(t, env.versionRepo.MarkArchived(ctx, "flow-1", 1))

	_, err := env.rollbackSvc.Rollback(ctx, &dto.RollbackRequest{
		FlowID:        "flow-1",
		TargetVersion: 1,
	}, "bob")
	require.NoError(t, err)

	v, err := env.versionSvc.Get(ctx, "flow-1", 1)
	require.NoError(t, err)
	require.False(t, v.Archived)
}

func TestRollbackHistoryView(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedVersions(t, env, "flow-1", payloadV1, payloadV2)

	_, err := env.rollbackSvc.Rollback(ctx, &dto.RollbackRequest{
		FlowID:        "flow-1",
		TargetVersion: 1,
		Reason:        "bad prompt",
	}, "bob")
	require.NoError(t, err)
	_, err = env.rollbackSvc.Rollback(ctx, &dto.RollbackRequest{
		FlowID:        "flow-1",
		TargetVersion: 2,
	}, "carol")
	require.NoError(t, err)

	records, err := env.rollbackSvc.History(ctx, &dto.RollbackHistoryRequest{FlowID: "flow-1"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	// most recent first
	require.Equal(t, int64(4), records[0].RollbackVersion)
	require.Equal(t, int64(2), records[0].RolledBackFrom)
	require.Equal(t, "carol", records[0].Actor)
	require.Equal(t, int64(3), records[1].RollbackVersion)
	require.Equal(t, "bad prompt", records[1].Reason)

	_, err = env.rollbackSvc.History(ctx, &dto.RollbackHistoryRequest{FlowID: "missing"})
	require.True(t, code.ErrorFlowNotFound.Is(err))
}
