package vm

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jbweber/vmclone/api/v1alpha1"
	"github.com/jbweber/vmclone/internal/loader"
	"github.com/jbweber/vmclone/internal/metadata"
	"github.com/jbweber/vmclone/internal/naming"
	"github.com/jbweber/vmclone/internal/progress"
	"github.com/jbweber/vmclone/internal/task"
	"github.com/jbweber/vmclone/internal/vsphere"
)

// Options tune a provisioning run. The zero value is usable.
type Options struct {
	// Principal requests the machine when the definition has no username,
	// normally the login user from config.Connection.Principal.
	Principal string

	// Timeout bounds the wait for the clone task. Zero waits indefinitely.
	Timeout time.Duration

	// Out receives narration and progress. Defaults to os.Stdout.
	Out io.Writer

	// Rand draws name suffixes. Nil uses the global source.
	Rand *rand.Rand

	// Now stamps the record. Defaults to time.Now.
	Now func() time.Time

	// OnComplete runs after the record is stored, as the next step of the
	// caller's pipeline.
	OnComplete func(ctx context.Context, r *Result) error
}

// Result describes a provisioned machine.
type Result struct {
	MachineName string
	Path        string
	Record      *v1alpha1.ProvisioningRecord
	RecordPath  string
	// RecordJSON holds the exact bytes written to the annotation and file.
	RecordJSON []byte
}

// Provision clones the machine described by def.
//
// This orchestrates the entire clone:
//  1. Resolve the resource pool, datastore, target folder and template
//  2. Allocate an unused machine name
//  3. Start the clone with the template's customization spec, if any
//  4. Wait for the clone task, reporting progress
//  5. Record the machine in its annotation and in the local data directory
//
// The caller owns client and its session. Partially created VMs are left
// in place on failure.
func Provision(ctx context.Context, def *loader.Definition, client *vsphere.Client, opts Options) (*Result, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return provisionWithDeps(ctx, def, client, progress.NewConsole(out), opts)
}

// provisionWithDeps provisions with injected dependencies.
// This allows for testing by accepting interfaces instead of concrete types.
func provisionWithDeps(ctx context.Context, def *loader.Definition, p platform, u userInterface, opts Options) (*Result, error) {
	spec := &def.Clone.Spec

	principal := spec.Username
	if principal == "" {
		principal = opts.Principal
	}
	if principal == "" {
		return nil, fmt.Errorf("no username to name the machine after: set spec.username or the connection username")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	res, err := resolveResources(ctx, p, u, spec)
	if err != nil {
		return nil, err
	}

	log.Debugf("Allocating a name in %s for %s...", spec.TargetFolder, principal)
	name, err := naming.NewAllocator(p.VirtualMachineExists, opts.Rand).Allocate(ctx, spec.TargetFolder, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate machine name: %w", err)
	}
	path := def.Clone.VMPath(name)

	u.Info("Provisioning vm at: " + path)
	u.ReportProgress(0, 100)

	ref, err := startClone(ctx, p, u, res, name)
	if err != nil {
		return nil, fmt.Errorf("failed to start clone: %w", err)
	}

	sub, err := p.SubscribeTask(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to watch clone task: %w", err)
	}
	if err := task.NewWaiter(task.WithTimeout(opts.Timeout)).Wait(ctx, sub, u); err != nil {
		return nil, err
	}

	log.Debugf("Looking up clone at %s...", path)
	vm, err := p.FindVirtualMachine(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to find cloned VM %s: %w", path, err)
	}

	id, err := p.InstanceUUID(ctx, vm)
	if err != nil {
		return nil, err
	}

	rec := metadata.NewRecord(
		metadata.Identity{MachineName: name, MoRef: vm.Reference().Value, InstanceID: id},
		def.SourceRef,
		principal,
		now(),
	)

	recordPath := def.Clone.MetadataPath()
	data, err := metadata.Store(ctx, p, vm, recordPath, rec)
	if err != nil {
		return nil, err
	}

	u.ClearLine()
	u.ReportProgress(100, 100)
	u.Info("Completed clone")

	result := &Result{
		MachineName: name,
		Path:        path,
		Record:      rec,
		RecordPath:  recordPath,
		RecordJSON:  data,
	}

	if opts.OnComplete != nil {
		if err := opts.OnComplete(ctx, result); err != nil {
			return result, err
		}
	}

	return result, nil
}
