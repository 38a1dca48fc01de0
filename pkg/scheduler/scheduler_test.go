package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirasaad/finanze/pkg/scheduler"
	"github.com/amirasaad/finanze/pkg/service/snapshot"
	"github.com/amirasaad/finanze/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCapturer struct {
	mock.Mock
}

func (m *MockCapturer) CaptureAll(ctx context.Context) (*snapshot.CaptureResult, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*snapshot.CaptureResult)
	return res, args.Error(1)
}

type countingJob struct {
	runs atomic.Int32
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	j.runs.Add(1)
	return nil
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	s := scheduler.New(testutils.NewTestLogger(), time.Minute)
	job := &countingJob{}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := scheduler.New(testutils.NewTestLogger(), 0)
	// five fields are rejected, the parser expects seconds first
	assert.Error(t, s.AddJob("0 23 * * *", &countingJob{}))
	assert.NoError(t, s.AddJob("0 0 23 * * *", &countingJob{}))
}

func TestSnapshotJob(t *testing.T) {
	logger := testutils.NewTestLogger()
	s := scheduler.New(logger, time.Minute)

	t.Run("success", func(t *testing.T) {
		m := new(MockCapturer)
		m.On("CaptureAll", mock.Anything).Return(&snapshot.CaptureResult{Users: 2, Created: 1, Updated: 1}, nil).Once()
		assert.NoError(t, s.RunNow(scheduler.NewSnapshotJob(m, logger)))
		m.AssertExpectations(t)
	})

	t.Run("partial failure is logged only", func(t *testing.T) {
		m := new(MockCapturer)
		m.On("CaptureAll", mock.Anything).Return(&snapshot.CaptureResult{Users: 2, Created: 1, Failed: 1}, nil).Once()
		assert.NoError(t, s.RunNow(scheduler.NewSnapshotJob(m, logger)))
	})

	t.Run("every user failed", func(t *testing.T) {
		m := new(MockCapturer)
		m.On("CaptureAll", mock.Anything).Return(&snapshot.CaptureResult{Users: 2, Failed: 2}, nil).Once()
		assert.Error(t, s.RunNow(scheduler.NewSnapshotJob(m, logger)))
	})

	t.Run("price unavailable", func(t *testing.T) {
		m := new(MockCapturer)
		m.On("CaptureAll", mock.Anything).Return(nil, errors.New("price unavailable")).Once()
		assert.EqualError(t, s.RunNow(scheduler.NewSnapshotJob(m, logger)), "price unavailable")
	})
}
