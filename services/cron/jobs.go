package cron

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SweepSessions deletes session records past their expiry
func (m *CronManager) SweepSessions() {
	const jobName = "sweep_sessions"
	started := m.logJobStart(jobName)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	removed, err := m.sessions.SweepExpired(ctx)
	if err != nil {
		m.logJobError(jobName, started, err)
		return
	}
	m.logJobComplete(jobName, started, zap.Int("removed", removed))
}

// CheckCatalogue runs the idempotent catalogue initialisation
func (m *CronManager) CheckCatalogue() {
	const jobName = "check_catalogue"
	started := m.logJobStart(jobName)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	m.catalogue.Initialize(ctx)
	m.logJobComplete(jobName, started)
}
