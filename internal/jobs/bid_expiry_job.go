package jobs

import (
	"context"
	"time"

	"freight/internal/core/application/usecases/commands"
	"freight/internal/core/domain/model/bid"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type BidExpirer interface {
	Handle(ctx context.Context, command commands.ExpireBidsCommand) ([]*bid.Bid, error)
}

// BidExpiryJob closes active bids whose TTL has passed.
type BidExpiryJob struct {
	handler  BidExpirer
	schedule string
	batch    int
	now      func() time.Time
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewBidExpiryJob(handler BidExpirer, schedule string, batch int, logger *zap.Logger) *BidExpiryJob {
	if batch <= 0 {
		batch = DefaultConfig().BidExpiryBatch
	}
	return &BidExpiryJob{
		handler:  handler,
		schedule: schedule,
		batch:    batch,
		now:      func() time.Time { return time.Now().UTC() },
		cron:     newCron(),
		logger:   logger.With(zap.String("component", "bid_expiry_job")),
	}
}

// Run performs one pass and returns how many bids were expired.
func (j *BidExpiryJob) Run(ctx context.Context) (int, error) {
	cmd, err := commands.NewExpireBidsCommand(j.now(), j.batch)
	if err != nil {
		return 0, err
	}
	expired, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		return 0, err
	}
	return len(expired), nil
}

func (j *BidExpiryJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		n, err := j.Run(context.Background())
		if err != nil {
			j.logger.Error("bid expiry job failed", zap.Error(err))
			return
		}
		if n > 0 {
			j.logger.Debug("bids expired", zap.Int("count", n))
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("bid expiry job started", zap.String("schedule", j.schedule))
	return nil
}

// Stop waits for a running pass to finish.
func (j *BidExpiryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("bid expiry job stopped")
}

// newCron runs jobs with a seconds field and skips a tick while the previous
// pass is still working.
func newCron() *cron.Cron {
	return cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
}
