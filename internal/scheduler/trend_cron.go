package cron

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/vistara-apps/healthsync/internal/jobs"
)

// StartTrendCronJobs schedules the hourly trend-ingestion scan.
func StartTrendCronJobs(scanner *jobs.TrendScanner) {
	c := cron.New()

	c.AddFunc("@hourly", func() {
		if err := scanner.RunScan(context.Background()); err != nil {
			logrus.WithError(err).Error("Trend scan failed")
		}
	})

	c.Start()
	logrus.Info("Trend cron jobs started")
}
