package service

import (
	"testing"

	"github.com/callwise/flow-version-service/internal/dao"
	"github.com/callwise/flow-version-service/internal/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	versionRepo domain.FlowVersionRepository
	flowRepo    domain.FlowRepository
	versionSvc  VersionService
	rollbackSvc RollbackService
	archiveSvc  ArchiveService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := dao.NewDBEngine(dao.DatabaseConfig{
		Type:         "sqlite",
		Path:         ":memory:",
		AutoMigrate:  true,
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	})
	require.NoError(t, err)

	d := dao.New(db, zap.NewNop())
	env := &testEnv{
		versionRepo: dao.NewFlowVersionRepository(d),
		flowRepo:    dao.NewFlowRepository(d),
	}
	env.versionSvc = NewVersionService(env.versionRepo, env.flowRepo, zap.NewNop())
	env.rollbackSvc = NewRollbackService(env.versionRepo, env.versionSvc, zap.NewNop())
	env.archiveSvc = NewArchiveService(env.versionRepo, env.flowRepo, zap.NewNop())
	return env
}

// payloads used across service tests

const payloadV1 = `{
	"nodes": [
		{"id": "A", "type": "entry", "attrs": {"greeting": "hello"}},
		{"id": "B", "type": "menu", "attrs": {"prompt": "press one"}}
	],
	"edges": [
		{"source": "A", "target": "B", "port": "next"}
	]
}`

const payloadV2 = `{
	"nodes": [
		{"id": "A", "type": "entry", "attrs": {"greeting": "hello"}},
		{"id": "B", "type": "menu", "attrs": {"prompt": "press one or two"}},
		{"id": "C", "type": "hangup"}
	],
	"edges": [
		{"source": "A", "target": "B", "port": "next"},
		{"source": "B", "target": "C", "port": "2"}
	]
}`
