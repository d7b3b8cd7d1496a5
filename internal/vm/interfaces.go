package vm

import (
	"context"

	"github.com/vmware/govmomi/object"
	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/jbweber/vmclone/internal/task"
)

// platform defines the vCenter operations needed to provision a clone.
//
// In production, this is satisfied by *vsphere.Client.
// In tests, this is satisfied by mock implementations.
type platform interface {
	// FindResourcePool looks up a resource pool by inventory path
	FindResourcePool(ctx context.Context, path string) (*object.ResourcePool, error)

	// FindDatastore looks up a datastore by name or path
	FindDatastore(ctx context.Context, path string) (*object.Datastore, error)

	// FindFolder looks up a VM folder by inventory path
	FindFolder(ctx context.Context, path string) (*object.Folder, error)

	// FindVirtualMachine looks up a VM or template by inventory path
	FindVirtualMachine(ctx context.Context, path string) (*object.VirtualMachine, error)

	// VirtualMachineExists reports whether a VM occupies the path
	VirtualMachineExists(ctx context.Context, path string) (bool, error)

	// FindCustomizationSpec fetches a guest customization spec by name
	FindCustomizationSpec(ctx context.Context, name string) (*vimtypes.CustomizationSpecItem, error)

	// CloneVM starts a clone and returns its task without waiting
	CloneVM(ctx context.Context, template *object.VirtualMachine, folder *object.Folder, name string, spec vimtypes.VirtualMachineCloneSpec) (vimtypes.ManagedObjectReference, error)

	// SubscribeTask opens a change feed on a task
	SubscribeTask(ctx context.Context, ref vimtypes.ManagedObjectReference) (task.Subscription, error)

	// InstanceUUID returns the VM's instance UUID
	InstanceUUID(ctx context.Context, vm *object.VirtualMachine) (string, error)

	// SetAnnotation replaces the VM's annotation and waits for the change
	SetAnnotation(ctx context.Context, vm *object.VirtualMachine, annotation string) error
}

// userInterface receives narration and progress for the person running the
// clone.
//
// In production, this is satisfied by *progress.Console.
// In tests, this is satisfied by a recorder.
type userInterface interface {
	Info(msg string)
	Warn(msg string)
	ReportProgress(current, total int)
	ClearLine()
}
