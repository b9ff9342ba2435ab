package services

import (
	"context"
	"sync"
)

// recordingScheduler runs jobs synchronously through an attacher, or just records them.
type recordingScheduler struct {
	mu       sync.Mutex
	jobs     []TagJob
	attacher *TagAttacher
	err      error
}

func (r *recordingScheduler) Schedule(ctx context.Context, job TagJob) error {
	r.mu.Lock()
	r.jobs = append(r.jobs, job)
	r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.attacher != nil {
		_, err := r.attacher.Attach(ctx, job)
		return err
	}
	return nil
}
