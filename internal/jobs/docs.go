// Package jobs provides scheduled background tasks for the freight engine.
//
// Jobs are cron-driven via github.com/robfig/cron/v3 with a seconds field.
// A tick is skipped while the previous pass of the same job is still running.
//
// # Available Jobs
//
//  1. BidExpiryJob - expires active bids whose TTL has passed, in batches
//  2. AwardRepairJob - recreates invoices and due shipments missing from awarded loads
//
// # Usage
//
//	jobManager := jobs.NewJobManager(cfg, expireHandler, repairHandler, logger)
//	if err := jobManager.StartAll(); err != nil {
//		logger.Fatal("failed to start jobs", zap.Error(err))
//	}
//	defer jobManager.StopAll()
//
// Both handlers are idempotent, so several instances may run the jobs at
// once; the loser of a race simply finds nothing left to do.
package jobs
