package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/callwise/flow-version-service/internal/domain"
	"github.com/callwise/flow-version-service/internal/dto"
	"github.com/callwise/flow-version-service/pkg/app"
	"github.com/callwise/flow-version-service/pkg/code"
	"github.com/callwise/flow-version-service/pkg/flowgraph"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateAssignsContiguousNumbers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		v, err := env.versionSvc.Create(ctx, &dto.CreateVersionRequest{
			FlowID:  "flow-1",
			Payload: json.RawMessage(payloadV1),
		}, "alice")
		require.NoError(t, err)
		require.Equal(t, int64(i), v.VersionNumber)
		require.Equal(t, string(domain.OriginManual), v.Origin)
		require.NotEmpty(t, v.PayloadHash)
	}

	head, err := env.versionSvc.Head(ctx, "flow-1")
	require.NoError(t, err)
	require.Equal(t, int64(3), head.VersionNumber)
}

func TestCreateConcurrentNoGapsNoDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const writers = 16
	var wg sync.WaitGroup
	seen := make(chan int64, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := env.versionSvc.Create(ctx, &dto.CreateVersionRequest{
				FlowID:  "flow-race",
				Payload: json.RawMessage(payloadV1),
			}, "bot")
			if err != nil {
				t.Errorf("concurrent create failed: %v", err)
				return
			}
			seen <- v.VersionNumber
		}()
	}
	wg.Wait()
	close(seen)

	got := make(map[int64]bool)
	for n := range seen {
		require.False(t, got[n], "version %d assigned twice", n)
		got[n] = true
	}
	require.Len(t, got, writers)
	for i := int64(1); i <= writers; i++ {
		require.True(t, got[i], "gap at version %d", i)
	}

	head, err := env.versionSvc.Head(ctx, "flow-race")
	require.NoError(t, err)
	require.Equal(t, int64(writers), head.VersionNumber)
}

func TestCreateRejectsInvalidPayload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		payload string
	}{
		{"malformed json", `{"nodes": [`},
		{"empty nodes", `{"nodes": [], "edges": []}`},
		{"duplicate node id", `{"nodes": [{"id": "A", "type": "entry"}, {"id": "A", "type": "menu"}]}`},
		{"dangling edge", `{"nodes": [{"id": "A", "type": "entry"}], "edges": [{"source": "A", "target": "Z", "port": "next"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.versionSvc.Create(ctx, &dto.CreateVersionRequest{
				FlowID:  "flow-bad",
				Payload: json.RawMessage(tt.payload),
			}, "alice")
			require.Error(t, err)
			require.True(t, code.ErrorInvalidPayload.Is(err), "want invalid payload, got %v", err)
		})
	}

	// nothing was persisted for the flow
	_, err := env.versionSvc.Head(ctx, "flow-bad")
	require.True(t, code.ErrorFlowNotFound.Is(err))
}

func TestGetVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.versionSvc.Create(ctx, &dto.CreateVersionRequest{
		FlowID:  "flow-1",
		Payload: json.RawMessage(payloadV1),
		Label:   "first cut",
	}, "alice")
	require.NoError(t, err)

	v, err := env.versionSvc.Get(ctx, "flow-1", 1)
	require.NoError(t, err)
	require.Equal(t, "first cut", v.Label)
	require.JSONEq(t, payloadV1, string(v.Payload))

	_, err = env.versionSvc.Get(ctx, "flow-1", 99)
	require.True(t, code.ErrorVersionNotFound.Is(err))

	_, err = env.versionSvc.Get(ctx, "no-such-flow", 1)
	require.True(t, code.ErrorVersionNotFound.Is(err))
}

func TestHistoryPaginatedLatestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := env.versionSvc.Create(ctx, &dto.CreateVersionRequest{
			FlowID:  "flow-1",
			Payload: json.RawMessage(payloadV1),
		}, "alice")
		require.NoError(t, err)
	}

	list, count, err := env.versionSvc.History(ctx,
		&dto.HistoryListRequest{FlowID: "flow-1"},
		&app.Pager{Page: 1, PageSize: 3})
	require.NoError(t, err)
	require.Equal(t, int64(5), count)
	require.Len(t, list, 3)
	require.Equal(t, int64(5), list[0].VersionNumber)
	require.Equal(t, int64(3), list[2].VersionNumber)

	list, _, err = env.versionSvc.History(ctx,
		&dto.HistoryListRequest{FlowID: "flow-1"},
		&app.Pager{Page: 2, PageSize: 3})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, int64(2), list[0].VersionNumber)

	_, _, err = env.versionSvc.History(ctx,
		&dto.HistoryListRequest{FlowID: "missing"},
		&app.Pager{Page: 1, PageSize: 10})
	require.True(t, code.ErrorFlowNotFound.Is(err))
}

func TestHeadReconcilesStalePointer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.versionSvc.Create(ctx, &dto.CreateVersionRequest{
			FlowID:  "flow-1",
			Payload: json.RawMessage(payloadV1),
		}, "alice")
		require.NoError(t, err)
	}

	// simulate a crash that left the pointer behind the newest version
	require.NoError(t, env.flowRepo.UpdateHead(ctx, "flow-1", 3, 1))

	head, err := env.versionSvc.Head(ctx, "flow-1")
	require.NoError(t, err)
	require.Equal(t, int64(3), head.VersionNumber)

	flow, err := env.flowRepo.Get(ctx, "flow-1")
	require.NoError(t, err)
	require.Equal(t, int64(3), flow.CurrentVersion)
}

func TestCompareVersions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.versionSvc.Create(ctx, &dto.CreateVersionRequest{
		FlowID:  "flow-1",
		Payload: json.RawMessage(payloadV1),
	}, "alice")
	require.NoError(t, err)
	_, err = env.versionSvc.Create(ctx, &dto.CreateVersionRequest{
		FlowID:  "flow-1",
		Payload: json.RawMessage(payloadV2),
	}, "alice")
	require.NoError(t, err)

	delta, err := env.versionSvc.Compare(ctx, "flow-1", 1, 2)
	require.NoError(t, err)
	require.False(t, delta.Empty())

	var addedNode, addedEdge, modified bool
	for _, ch := range delta.Changes {
		switch {
		case ch.Op == flowgraph.OpAdded && ch.Kind == flowgraph.KindNode && ch.ID == "C":
			addedNode = true
		case ch.Op == flowgraph.OpAdded && ch.Kind == flowgraph.KindEdge:
			addedEdge = true
		case ch.Op == flowgraph.OpModified && ch.ID == "B":
			modified = true
		}
	}
	require.True(t, addedNode)
	require.True(t, addedEdge)
	require.True(t, modified)

	same, err := env.versionSvc.Compare(ctx, "flow-1", 1, 1)
	require.NoError(t, err)
	require.True(t, same.Empty())

	_, err = env.versionSvc.Compare(ctx, "flow-1", 1, 42)
	require.True(t, code.ErrorVersionNotFound.Is(err))
}

func TestCreateRetriesConflictOnce(t *testing.T) {
	lg, repo := zap.NewNop(), &conflictingRepo{failures: 1}
	svc := &versionService{versionRepo: repo, logger: lg}

	created, err := svc.createWithRetry(context.Background(), &domain.FlowVersionSet{FlowID: "f"})
	require.NoError(t, err)
	require.Equal(t, int64(1), created.VersionNumber)
	require.Equal(t, 2, repo.calls)

	repo = &conflictingRepo{failures: 2}
	svc = &versionService{versionRepo: repo, logger: lg}
	_, err = svc.createWithRetry(context.Background(), &domain.FlowVersionSet{FlowID: "f"})
	require.True(t, code.ErrorVersionConflict.Is(err))
	require.Equal(t, 2, repo.calls)
}

type conflictingRepo struct {
	domain.FlowVersionRepository
	failures int
	calls    int
}

func (m *conflictingRepo) Create(ctx context.Context, set *domain.FlowVersionSet) (*domain.FlowVersion, error) {
	m.calls++
	if m.calls <= m.failures {
		return nil, domain.ErrVersionConflict
	}
	return &domain.FlowVersion{FlowID: set.FlowID, VersionNumber: 1}, nil
}
