// Package task blocks on an asynchronous vSphere task until it reaches a
// terminal state, forwarding progress to the caller.
package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jbweber/vmclone/internal/status"
)

// ErrCloneFailed is returned when the task ends in the error state.
var ErrCloneFailed = errors.New("failed to clone VM")

// destroyTimeout bounds subscription cleanup, which must run even after the
// caller's context is done.
const destroyTimeout = 30 * time.Second

// Subscription is a change feed on a single task's state and progress.
//
// In production this is satisfied by *vsphere.TaskSubscription.
// In tests it is satisfied by scripted fakes.
type Subscription interface {
	// Next blocks until the task changes after the given stream version and
	// returns the task's current snapshot and the new version. The empty
	// version requests the initial state.
	Next(ctx context.Context, version string) (status.TaskSnapshot, string, error)

	// Destroy releases the server-side filter.
	Destroy(ctx context.Context) error
}

// ProgressReporter receives progress for non-terminal updates.
type ProgressReporter interface {
	ReportProgress(current, total int)
	ClearLine()
}

// Waiter drives a Subscription to a terminal state.
type Waiter struct {
	timeout time.Duration
}

// Option configures a Waiter.
type Option func(*Waiter)

// WithTimeout bounds the total wait. Zero waits until the task finishes or
// the context is cancelled.
func WithTimeout(d time.Duration) Option {
	return func(w *Waiter) {
		w.timeout = d
	}
}

// NewWaiter creates a Waiter.
func NewWaiter(opts ...Option) *Waiter {
	w := &Waiter{}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Wait blocks until the subscribed task succeeds or fails. The subscription
// is destroyed exactly once before Wait returns, whatever the outcome.
//
// Returns nil on success and an error wrapping ErrCloneFailed when the task
// ends in the error state.
func (w *Waiter) Wait(ctx context.Context, sub Subscription, progress ProgressReporter) error {
	defer destroy(ctx, sub)

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	final, err := w.loop(ctx, sub, progress)
	if err != nil {
		return err
	}

	if final.State == status.TaskError {
		if final.Fault != "" {
			return fmt.Errorf("%w: %s", ErrCloneFailed, final.Fault)
		}
		return ErrCloneFailed
	}

	return nil
}

func (w *Waiter) loop(ctx context.Context, sub Subscription, progress ProgressReporter) (status.TaskSnapshot, error) {
	// Each wait must resume from the version returned by the previous one,
	// otherwise updates (including the terminal one) can be skipped.
	version := ""

	for {
		snapshot, next, err := sub.Next(ctx, version)
		if err != nil {
			return status.TaskSnapshot{}, fmt.Errorf("failed waiting for task updates: %w", err)
		}
		version = next

		log.WithFields(log.Fields{
			"state":    snapshot.State,
			"progress": snapshot.Progress,
			"version":  version,
		}).Debug("Task update")

		if snapshot.IsTerminal() {
			return snapshot, nil
		}

		progress.ClearLine()
		progress.ReportProgress(int(status.ClampProgress(snapshot.Progress)), 100)
	}
}

func destroy(ctx context.Context, sub Subscription) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), destroyTimeout)
	defer cancel()

	if err := sub.Destroy(dctx); err != nil {
		log.Warnf("Failed to destroy task subscription: %v", err)
	}
}
