package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSweeper struct {
	calls int
	err   error
}

func (f *fakeSweeper) SweepExpired(context.Context) (int, error) {
	f.calls++
	return 3, f.err
}

type fakeCatalogue struct {
	calls int
}

func (f *fakeCatalogue) Initialize(context.Context) {
	f.calls++
}

func TestJobsCallServices(t *testing.T) {
	sweeper := &fakeSweeper{}
	catalogue := &fakeCatalogue{}
	m := NewCronManager(sweeper, catalogue, zap.NewNop())

	m.SweepSessions()
	m.CheckCatalogue()

	assert.Equal(t, 1, sweeper.calls)
	assert.Equal(t, 1, catalogue.calls)
}

func TestSweepSessionsSurvivesErrors(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("backend down")}
	m := NewCronManager(sweeper, &fakeCatalogue{}, zap.NewNop())

	assert.NotPanics(t, m.SweepSessions)
	assert.Equal(t, 1, sweeper.calls)
}

func TestStartRegistersJobs(t *testing.T) {
	m := NewCronManager(&fakeSweeper{}, &fakeCatalogue{}, zap.NewNop())

	require.NoError(t, m.Start())
	defer m.Stop()

	assert.Len(t, m.cron.Entries(), 2)
}
