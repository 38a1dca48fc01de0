package scheduler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/amirasaad/finanze/pkg/service/snapshot"
)

// SnapshotCapturer captures the daily snapshot of every portfolio owner.
type SnapshotCapturer interface {
	CaptureAll(ctx context.Context) (*snapshot.CaptureResult, error)
}

// SnapshotJob stores today's snapshot for every user with DCA holdings.
type SnapshotJob struct {
	svc    SnapshotCapturer
	logger *slog.Logger
}

func NewSnapshotJob(svc SnapshotCapturer, logger *slog.Logger) *SnapshotJob {
	return &SnapshotJob{svc: svc, logger: logger}
}

func (j *SnapshotJob) Name() string { return "daily-snapshot" }

func (j *SnapshotJob) Run(ctx context.Context) error {
	res, err := j.svc.CaptureAll(ctx)
	if err != nil {
		return err
	}
	j.logger.Info("Snapshots captured",
		"users", res.Users,
		"created", res.Created,
		"updated", res.Updated,
		"failed", res.Failed,
	)
	if res.Failed > 0 && res.Failed == res.Users {
		return errors.New("snapshot capture failed for every user")
	}
	return nil
}
