package vsphere

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/methods"
	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/jbweber/vmclone/internal/status"
	"github.com/jbweber/vmclone/internal/task"
)

const (
	taskStatePath    = "info.state"
	taskProgressPath = "info.progress"
	taskErrorPath    = "info.error"
)

// maxWaitSeconds bounds a single server-side wait. A wait that times out
// with no changes is retried with the same version.
var maxWaitSeconds int32 = 60

// TaskSubscription follows one task's state and progress through a
// dedicated property collector.
type TaskSubscription struct {
	vim       *vim25.Client
	collector *property.Collector
	filter    vimtypes.ManagedObjectReference

	snapshot    status.TaskSnapshot
	destroyOnce sync.Once
	destroyErr  error
}

var _ task.Subscription = (*TaskSubscription)(nil)

// SubscribeTask registers a filter on the task's state and progress.
// The subscription must be released with Destroy.
func (c *Client) SubscribeTask(ctx context.Context, ref vimtypes.ManagedObjectReference) (task.Subscription, error) {
	pc, err := property.DefaultCollector(c.vim).Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create property collector: %w", err)
	}

	req := vimtypes.CreateFilter{
		This: pc.Reference(),
		Spec: vimtypes.PropertyFilterSpec{
			ObjectSet: []vimtypes.ObjectSpec{{Obj: ref}},
			PropSet: []vimtypes.PropertySpec{{
				Type:    ref.Type,
				PathSet: []string{taskStatePath, taskProgressPath, taskErrorPath},
			}},
		},
		PartialUpdates: false,
	}

	res, err := methods.CreateFilter(ctx, c.vim, &req)
	if err != nil {
		_ = pc.Destroy(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("failed to create filter on task %s: %w", ref.Value, translate(err))
	}

	return &TaskSubscription{
		vim:       c.vim,
		collector: pc,
		filter:    res.Returnval,
	}, nil
}

// Next waits for changes after version and returns the folded snapshot
// together with the version to pass on the following call.
func (s *TaskSubscription) Next(ctx context.Context, version string) (status.TaskSnapshot, string, error) {
	for {
		req := vimtypes.WaitForUpdatesEx{
			This:    s.collector.Reference(),
			Version: version,
			Options: &vimtypes.WaitOptions{MaxWaitSeconds: &maxWaitSeconds},
		}

		res, err := methods.WaitForUpdatesEx(ctx, s.vim, &req)
		if err != nil {
			return s.snapshot, version, err
		}

		set := res.Returnval
		if set == nil {
			continue
		}

		if err := s.apply(set); err != nil {
			return s.snapshot, set.Version, err
		}

		return s.snapshot, set.Version, nil
	}
}

func (s *TaskSubscription) apply(set *vimtypes.UpdateSet) error {
	for _, fs := range set.FilterSet {
		if fs.Filter != s.filter {
			continue
		}
		for _, obj := range fs.ObjectSet {
			for _, change := range obj.ChangeSet {
				if err := s.applyChange(change); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *TaskSubscription) applyChange(change vimtypes.PropertyChange) error {
	switch change.Name {
	case taskStatePath:
		v, ok := change.Val.(vimtypes.TaskInfoState)
		if !ok {
			return fmt.Errorf("unexpected %s value %T", taskStatePath, change.Val)
		}
		state, err := status.FromTaskInfoState(v)
		if err != nil {
			return err
		}
		s.snapshot.State = state

	case taskProgressPath:
		// Unset once the task leaves the running state.
		p, _ := change.Val.(int32)
		s.snapshot.Progress = p

	case taskErrorPath:
		switch f := change.Val.(type) {
		case vimtypes.LocalizedMethodFault:
			s.snapshot.Fault = f.LocalizedMessage
		case *vimtypes.LocalizedMethodFault:
			s.snapshot.Fault = f.LocalizedMessage
		}
	}
	return nil
}

// Destroy removes the filter and the collector. Calls after the first
// return the first call's result.
func (s *TaskSubscription) Destroy(ctx context.Context) error {
	s.destroyOnce.Do(func() {
		_, ferr := methods.DestroyPropertyFilter(ctx, s.vim, &vimtypes.DestroyPropertyFilter{This: s.filter})
		if ferr != nil {
			ferr = fmt.Errorf("failed to destroy property filter: %w", ferr)
		}
		cerr := s.collector.Destroy(ctx)
		if cerr != nil {
			cerr = fmt.Errorf("failed to destroy property collector: %w", cerr)
		}
		s.destroyErr = errors.Join(ferr, cerr)
	})
	return s.destroyErr
}
