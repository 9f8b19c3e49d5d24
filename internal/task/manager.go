package task

import (
	"github.com/callwise/flow-version-service/internal/app"
	"github.com/callwise/flow-version-service/pkg/safe_close"

	"go.uber.org/zap"
)

// Manager creates and owns all background tasks.
type Manager struct {
	scheduler *Scheduler
	app       *app.App
	logger    *zap.Logger
}

// NewManager creates a task manager.
func NewManager(a *app.App, logger *zap.Logger, sc *safe_close.SafeClose) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger, sc),
		app:       a,
		logger:    logger,
	}
}

// RegisterTasks registers every enabled task.
func (m *Manager) RegisterTasks() error {
	sweepTask, err := NewArchiveSweepTask(m.app)
	if err != nil {
		m.logger.Warn("failed to create archive sweep task", zap.Error(err))
		return err
	}

	if sweepTask != nil {
		m.scheduler.AddTask(sweepTask)
	} else {
		m.logger.Info("archive sweep task is disabled")
	}

	return nil
}

// Start launches all registered tasks.
func (m *Manager) Start() {
	m.scheduler.Start()
}
