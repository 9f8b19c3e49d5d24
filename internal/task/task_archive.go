package task

import (
	"context"

	"github.com/callwise/flow-version-service/internal/app"
	"github.com/callwise/flow-version-service/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronParser accepts six-field expressions with a seconds column.
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ArchiveSweepTask runs the configured archival policy against every flow on
// a cron schedule.
type ArchiveSweepTask struct {
	app      *app.App
	schedule cron.Schedule
}

// NewArchiveSweepTask creates the sweep task, or nil when the sweep is
// disabled in config.
func NewArchiveSweepTask(a *app.App) (*ArchiveSweepTask, error) {
	cfg := a.Config().Archive
	if !cfg.Enabled {
		return nil, nil
	}
	schedule, err := cronParser.Parse(cfg.Cron)
	if err != nil {
		return nil, err
	}
	return &ArchiveSweepTask{app: a, schedule: schedule}, nil
}

// Name returns the task name.
func (t *ArchiveSweepTask) Name() string {
	return "ArchiveSweep"
}

// Schedule returns the parsed cron schedule.
func (t *ArchiveSweepTask) Schedule() cron.Schedule {
	return t.schedule
}

// IsStartupRun returns false; the sweep waits for its first scheduled slot.
func (t *ArchiveSweepTask) IsStartupRun() bool {
	return false
}

// Run sweeps every flow with the default policy and logs the outcome.
func (t *ArchiveSweepTask) Run(ctx context.Context) error {
	opDone := t.app.TrackOperation()
	defer opDone()

	reports, err := t.app.ArchiveService.SweepAll(ctx, t.app.DefaultArchivePolicy())
	if err != nil {
		return err
	}

	var archived, skipped int
	for _, r := range reports {
		archived += r.ArchivedCount
		skipped += len(r.Skipped)
	}
	t.app.Logger().Info("archive sweep finished",
		zap.String(logger.FieldTask, t.Name()),
		zap.Int("flows", len(reports)),
		zap.Int("archived", archived),
		zap.Int("skipped", skipped),
	)
	return nil
}

var _ Task = (*ArchiveSweepTask)(nil)
