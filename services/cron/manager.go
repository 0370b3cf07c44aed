package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionSweeper removes expired sessions
type SessionSweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// CatalogueInitializer restores a missing or outdated catalogue
type CatalogueInitializer interface {
	Initialize(ctx context.Context)
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron      *cron.Cron
	sessions  SessionSweeper
	catalogue CatalogueInitializer
	log       *zap.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(sessions SessionSweeper, catalogue CatalogueInitializer, logger *zap.Logger) *CronManager {
	// seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:      c,
		sessions:  sessions,
		catalogue: catalogue,
		log:       logger.Named("cron"),
	}
}

// Start registers the jobs and starts the scheduler
func (m *CronManager) Start() error {
	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()
	m.log.Info("cron jobs started", zap.Int("jobs", len(m.cron.Entries())))
	return nil
}

// Stop waits for running jobs to finish
func (m *CronManager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.log.Info("cron jobs stopped")
}

func (m *CronManager) registerJobs() error {
	// Every 15 minutes: drop expired sessions
	if _, err := m.cron.AddFunc("0 */15 * * * *", m.SweepSessions); err != nil {
		return err
	}

	// Hourly: re-seed the catalogue if it went missing or got corrupted
	if _, err := m.cron.AddFunc("0 5 * * * *", m.CheckCatalogue); err != nil {
		return err
	}

	return nil
}

func (m *CronManager) logJobStart(jobName string) time.Time {
	m.log.Debug("job started", zap.String("job", jobName))
	return time.Now()
}

func (m *CronManager) logJobComplete(jobName string, started time.Time, fields ...zap.Field) {
	fields = append(fields,
		zap.String("job", jobName),
		zap.Duration("took", time.Since(started)))
	m.log.Info("job completed", fields...)
}

func (m *CronManager) logJobError(jobName string, started time.Time, err error) {
	m.log.Error("job failed",
		zap.String("job", jobName),
		zap.Duration("took", time.Since(started)),
		zap.Error(err))
}
