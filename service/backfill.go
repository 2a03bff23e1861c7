package service

import (
	"context"

	"github.com/apex/log"
	"github.com/robfig/cron/v3"

	"defect-classify-pipeline/models"
)

// StartBackfillScheduler starts the cron-based sweep that finds
// uploads with sections but no successful rules run and processes
// them. The schedule is a standard 5-field cron expression.
func (s *Service) StartBackfillScheduler() (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(s.cfg.BackfillSchedule, s.SweepBackfill)
	if err != nil {
		return nil, err
	}
	c.Start()
	log.WithField("schedule", s.cfg.BackfillSchedule).Info("backfill sweep scheduled")
	return c, nil
}

// SweepBackfill runs one backfill pass.
func (s *Service) SweepBackfill() {
	uploads, err := s.db.GetUploadsMissingSuccessfulRun(s.cfg.BackfillBatch)
	if err != nil {
		log.WithError(err).Error("backfill sweep could not list uploads")
		return
	}
	if len(uploads) == 0 {
		return
	}

	log.Infof("backfill sweep found %d upload(s) without a successful run", len(uploads))
	for _, uploadID := range uploads {
		run, err := s.StartRun(context.Background(), uploadID)
		if err != nil {
			log.WithError(err).WithField("upload_id", uploadID).Error("backfill run could not start")
			continue
		}
		if run.Status != models.RunStatusSuccess {
			log.WithField("upload_id", uploadID).
				WithField("rules_run_id", run.ID).
				Warnf("backfill run finished with status %s", run.Status)
		}
	}
}
