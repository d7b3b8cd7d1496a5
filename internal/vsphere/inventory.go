package vsphere

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25/mo"
	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// FindResourcePool looks up a resource pool by inventory path.
func (c *Client) FindResourcePool(ctx context.Context, path string) (*object.ResourcePool, error) {
	pool, err := c.finder.ResourcePool(ctx, path)
	if err != nil {
		return nil, translate(err)
	}
	return pool, nil
}

// FindDatastore looks up a datastore by name or inventory path.
func (c *Client) FindDatastore(ctx context.Context, path string) (*object.Datastore, error) {
	ds, err := c.finder.Datastore(ctx, path)
	if err != nil {
		return nil, translate(err)
	}
	return ds, nil
}

// FindFolder looks up a folder by inventory path.
func (c *Client) FindFolder(ctx context.Context, path string) (*object.Folder, error) {
	folder, err := c.finder.Folder(ctx, path)
	if err != nil {
		return nil, translate(err)
	}
	return folder, nil
}

// FindVirtualMachine looks up a VM or template by inventory path. The
// result carries its InventoryPath.
func (c *Client) FindVirtualMachine(ctx context.Context, path string) (*object.VirtualMachine, error) {
	vm, err := c.finder.VirtualMachine(ctx, path)
	if err != nil {
		return nil, translate(err)
	}
	return vm, nil
}

// VirtualMachineExists reports whether a VM occupies the inventory path.
func (c *Client) VirtualMachineExists(ctx context.Context, path string) (bool, error) {
	_, err := c.FindVirtualMachine(ctx, path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// FindCustomizationSpec fetches a guest customization spec by name.
func (c *Client) FindCustomizationSpec(ctx context.Context, name string) (*vimtypes.CustomizationSpecItem, error) {
	m := object.NewCustomizationSpecManager(c.vim)

	exists, err := m.DoesCustomizationSpecExist(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check customization spec %q: %w", name, err)
	}
	if !exists {
		return nil, &notFoundError{err: fmt.Errorf("customization spec %q not found", name)}
	}

	item, err := m.GetCustomizationSpec(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get customization spec %q: %w", name, translate(err))
	}

	return item, nil
}

// CloneVM starts cloning template into folder and returns the clone task.
// It does not wait for the task.
func (c *Client) CloneVM(ctx context.Context, template *object.VirtualMachine, folder *object.Folder, name string, spec vimtypes.VirtualMachineCloneSpec) (vimtypes.ManagedObjectReference, error) {
	task, err := template.Clone(ctx, folder, name, spec)
	if err != nil {
		return vimtypes.ManagedObjectReference{}, fmt.Errorf("failed to start clone of %s: %w", template.InventoryPath, err)
	}
	return task.Reference(), nil
}

// InstanceUUID returns the vCenter-assigned instance UUID of vm.
func (c *Client) InstanceUUID(ctx context.Context, vm *object.VirtualMachine) (string, error) {
	var props mo.VirtualMachine
	if err := vm.Properties(ctx, vm.Reference(), []string{"config.instanceUuid"}, &props); err != nil {
		return "", fmt.Errorf("failed to read instance UUID: %w", translate(err))
	}
	if props.Config == nil || props.Config.InstanceUuid == "" {
		return "", fmt.Errorf("VM %s has no instance UUID", vm.Reference().Value)
	}

	id, err := uuid.Parse(props.Config.InstanceUuid)
	if err != nil {
		return "", fmt.Errorf("VM %s has malformed instance UUID %q: %w", vm.Reference().Value, props.Config.InstanceUuid, err)
	}

	return id.String(), nil
}

// SetAnnotation replaces the VM's annotation and waits for the reconfigure
// task to finish.
func (c *Client) SetAnnotation(ctx context.Context, vm *object.VirtualMachine, annotation string) error {
	task, err := vm.Reconfigure(ctx, vimtypes.VirtualMachineConfigSpec{Annotation: annotation})
	if err != nil {
		return fmt.Errorf("failed to reconfigure VM annotation: %w", translate(err))
	}

	if err := task.Wait(ctx); err != nil {
		return fmt.Errorf("failed to set VM annotation: %w", err)
	}

	return nil
}

// Annotation returns the VM's current annotation.
func (c *Client) Annotation(ctx context.Context, vm *object.VirtualMachine) (string, error) {
	var props mo.VirtualMachine
	if err := vm.Properties(ctx, vm.Reference(), []string{"config.annotation"}, &props); err != nil {
		return "", fmt.Errorf("failed to read VM annotation: %w", translate(err))
	}
	if props.Config == nil {
		return "", nil
	}
	return props.Config.Annotation, nil
}
