package jobs

import (
	"context"

	"freight/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type ArtifactRepairer interface {
	Handle(ctx context.Context, command commands.RepairAwardArtifactsCommand) ([]commands.RepairOutcome, error)
}

// AwardRepairJob sweeps awarded loads that are missing an invoice or a due
// shipment and recreates them.
type AwardRepairJob struct {
	handler  ArtifactRepairer
	schedule string
	batch    int
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewAwardRepairJob(handler ArtifactRepairer, schedule string, batch int, logger *zap.Logger) *AwardRepairJob {
	if batch <= 0 {
		batch = DefaultConfig().AwardRepairBatch
	}
	return &AwardRepairJob{
		handler:  handler,
		schedule: schedule,
		batch:    batch,
		cron:     newCron(),
		logger:   logger.With(zap.String("component", "award_repair_job")),
	}
}

// Run performs one sweep. Outcomes that still carry warnings are logged so a
// persistent failure stays visible between sweeps.
func (j *AwardRepairJob) Run(ctx context.Context) ([]commands.RepairOutcome, error) {
	cmd, err := commands.NewRepairAllAwardArtifactsCommand(j.batch)
	if err != nil {
		return nil, err
	}
	outcomes, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		return nil, err
	}
	for _, o := range outcomes {
		for _, w := range o.Warnings {
			j.logger.Warn("award artifact still missing",
				zap.String("load_id", o.LoadID.String()),
				zap.Error(w),
			)
		}
	}
	return outcomes, nil
}

func (j *AwardRepairJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		if _, err := j.Run(context.Background()); err != nil {
			j.logger.Error("award repair job failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("award repair job started", zap.String("schedule", j.schedule))
	return nil
}

func (j *AwardRepairJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("award repair job stopped")
}
