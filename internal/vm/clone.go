package vm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/jbweber/vmclone/internal/vsphere"
)

// CustomizationSpecName derives the customization spec name for a template
// from its inventory path: the segments after the first "vm" folder,
// joined with "/".
//
// Example: /DC0/vm/templates/centos7 → templates/centos7
func CustomizationSpecName(inventoryPath string) (string, error) {
	segments := strings.Split(strings.Trim(inventoryPath, "/"), "/")

	for i, s := range segments {
		if s != "vm" {
			continue
		}
		rest := segments[i+1:]
		if len(rest) == 0 {
			return "", fmt.Errorf("template path %q ends at the vm folder", inventoryPath)
		}
		return strings.Join(rest, "/"), nil
	}

	return "", fmt.Errorf("template path %q is not under a vm folder", inventoryPath)
}

// buildCloneSpec places the clone on the resolved pool and datastore. The
// clone is left powered off and is not marked as a template.
func buildCloneSpec(res *Resources, customization *vimtypes.CustomizationSpec) vimtypes.VirtualMachineCloneSpec {
	pool := res.Pool.Reference()
	ds := res.Datastore.Reference()

	return vimtypes.VirtualMachineCloneSpec{
		Location: vimtypes.VirtualMachineRelocateSpec{
			Datastore:    &ds,
			Pool:         &pool,
			DiskMoveType: string(vimtypes.VirtualMachineRelocateDiskMoveOptionsMoveChildMostDiskBacking),
		},
		Config:        &vimtypes.VirtualMachineConfigSpec{},
		Customization: customization,
		PowerOn:       false,
		Template:      false,
	}
}

// findCustomization returns the template's customization spec, or nil when
// none is defined for it.
func findCustomization(ctx context.Context, p platform, u userInterface, res *Resources) (*vimtypes.CustomizationSpec, error) {
	name, err := CustomizationSpecName(res.Template.InventoryPath)
	if err != nil {
		return nil, err
	}

	item, err := p.FindCustomizationSpec(ctx, name)
	if errors.Is(err, vsphere.ErrNotFound) {
		u.Warn(fmt.Sprintf("No customization spec named %q, cloning without customization", name))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	log.WithField("spec", name).Debug("Using customization spec")
	return &item.Spec, nil
}

// startClone issues the clone request and returns the task reference.
func startClone(ctx context.Context, p platform, u userInterface, res *Resources, name string) (vimtypes.ManagedObjectReference, error) {
	customization, err := findCustomization(ctx, p, u, res)
	if err != nil {
		return vimtypes.ManagedObjectReference{}, fmt.Errorf("failed to look up customization spec: %w", err)
	}

	spec := buildCloneSpec(res, customization)

	ref, err := p.CloneVM(ctx, res.Template, res.Folder, name, spec)
	if err != nil {
		return vimtypes.ManagedObjectReference{}, err
	}

	log.WithFields(log.Fields{"task": ref.Value, "name": name}).Debug("Clone task started")
	return ref, nil
}
