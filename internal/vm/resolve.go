package vm

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/vmware/govmomi/object"

	"github.com/jbweber/vmclone/api/v1alpha1"
)

// Resource kinds as shown to the user.
const (
	KindResourcePool = "Resource Pool"
	KindDatastore    = "Datastore"
	KindTargetFolder = "Target Folder"
	KindTemplate     = "Template"
)

// ResourceFailure is a lookup that did not produce an object.
type ResourceFailure struct {
	Kind string
	Path string
	Err  error
}

func (f ResourceFailure) Error() string {
	return f.Kind + ": " + f.Path
}

func (f ResourceFailure) Unwrap() error {
	return f.Err
}

// ResourcesNotFoundError lists every placement resource that could not be
// found, in lookup order.
type ResourcesNotFoundError struct {
	Failures []ResourceFailure
}

func (e *ResourcesNotFoundError) Error() string {
	lines := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		lines[i] = f.Error()
	}
	return "There were errors when finding:\n" + strings.Join(lines, "\n")
}

func (e *ResourcesNotFoundError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// Resources are the inventory objects a clone is placed with.
type Resources struct {
	Pool      *object.ResourcePool
	Datastore *object.Datastore
	Folder    *object.Folder
	Template  *object.VirtualMachine
}

// capture runs one lookup and turns any error into a failure record so the
// remaining lookups still run.
func capture[T any](ctx context.Context, kind, path string, find func(context.Context, string) (T, error)) (T, *ResourceFailure) {
	v, err := find(ctx, path)
	if err != nil {
		log.WithFields(log.Fields{"kind": kind, "path": path}).Debugf("Lookup failed: %v", err)
		var zero T
		return zero, &ResourceFailure{Kind: kind, Path: path, Err: err}
	}
	return v, nil
}

// resolveResources looks up all four placement resources. It always
// attempts every lookup and reports all failures together.
func resolveResources(ctx context.Context, p platform, u userInterface, spec *v1alpha1.VirtualMachineCloneSpec) (*Resources, error) {
	var (
		res      Resources
		failures []ResourceFailure
		failure  *ResourceFailure
	)
	collect := func(f *ResourceFailure) {
		if f != nil {
			failures = append(failures, *f)
		}
	}

	u.Info("Validating existence of Resource Pool: " + spec.TargetResourcePool)
	res.Pool, failure = capture(ctx, KindResourcePool, spec.TargetResourcePool, p.FindResourcePool)
	collect(failure)

	u.Info("Validating existence of Datastore: " + spec.TargetDatastore)
	res.Datastore, failure = capture(ctx, KindDatastore, spec.TargetDatastore, p.FindDatastore)
	collect(failure)

	u.Info("Validating existence of Target Folder: " + spec.TargetFolder)
	res.Folder, failure = capture(ctx, KindTargetFolder, spec.TargetFolder, p.FindFolder)
	collect(failure)

	u.Info("Validating existence of Template: " + spec.Template)
	res.Template, failure = capture(ctx, KindTemplate, spec.Template, p.FindVirtualMachine)
	collect(failure)

	if len(failures) > 0 {
		return nil, &ResourcesNotFoundError{Failures: failures}
	}

	return &res, nil
}

// IsResourcesNotFound reports whether err came from resource validation.
func IsResourcesNotFound(err error) bool {
	var e *ResourcesNotFoundError
	return errors.As(err, &e)
}
