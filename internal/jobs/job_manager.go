package jobs

import (
	"fmt"

	"go.uber.org/zap"
)

// Config carries the cron schedules (seconds field included) and batch sizes.
// An empty schedule disables that job.
type Config struct {
	BidExpirySchedule   string
	BidExpiryBatch      int
	AwardRepairSchedule string
	AwardRepairBatch    int
}

func DefaultConfig() Config {
	return Config{
		BidExpirySchedule:   "*/30 * * * * *",
		BidExpiryBatch:      100,
		AwardRepairSchedule: "0 */5 * * * *",
		AwardRepairBatch:    50,
	}
}

type job interface {
	Start() error
	Stop()
}

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	jobs []job
}

// NewJobManager creates the enabled jobs. Jobs with an empty schedule are left out.
func NewJobManager(cfg Config, expirer BidExpirer, repairer ArtifactRepairer, logger *zap.Logger) *JobManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	jm := &JobManager{}
	if cfg.BidExpirySchedule != "" && expirer != nil {
		jm.jobs = append(jm.jobs, NewBidExpiryJob(expirer, cfg.BidExpirySchedule, cfg.BidExpiryBatch, logger))
	}
	if cfg.AwardRepairSchedule != "" && repairer != nil {
		jm.jobs = append(jm.jobs, NewAwardRepairJob(repairer, cfg.AwardRepairSchedule, cfg.AwardRepairBatch, logger))
	}
	return jm
}

func (jm *JobManager) Len() int { return len(jm.jobs) }

// StartAll starts all scheduled jobs.
// A failed start stops the jobs already running.
func (jm *JobManager) StartAll() error {
	for i, j := range jm.jobs {
		if err := j.Start(); err != nil {
			for _, started := range jm.jobs[:i] {
				started.Stop()
			}
			return fmt.Errorf("failed to start job %d: %w", i, err)
		}
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	for _, j := range jm.jobs {
		j.Stop()
	}
}
