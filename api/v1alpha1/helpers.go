package v1alpha1

import (
	"path/filepath"
	"strings"
)

const (
	// GroupName is the API group for vmclone resources.
	GroupName = "vmclone.cofront.xyz"

	// Version is the API version.
	Version = "v1alpha1"

	// VirtualMachineCloneKind is the kind string for VirtualMachineClone resources.
	VirtualMachineCloneKind = "VirtualMachineClone"

	// DefaultMetadataFile is the record file name inside a machine's data directory.
	DefaultMetadataFile = "metadata.json"

	// DefaultDataDirName is the directory, next to the definition file, under
	// which per-machine data directories are created.
	DefaultDataDirName = ".vmclone"
)

// NewVirtualMachineClone creates a new VirtualMachineClone with TypeMeta and
// ObjectMeta defaults.
func NewVirtualMachineClone(name string) *VirtualMachineClone {
	return &VirtualMachineClone{
		TypeMeta: TypeMeta{
			APIVersion: GroupName + "/" + Version,
			Kind:       VirtualMachineCloneKind,
		},
		ObjectMeta: ObjectMeta{
			Name: name,
		},
		Spec: VirtualMachineCloneSpec{
			MetadataFile: DefaultMetadataFile,
		},
	}
}

// SetDefaultAPIVersion ensures the definition has the correct apiVersion and kind.
func SetDefaultAPIVersion(c *VirtualMachineClone) {
	if c.APIVersion == "" {
		c.APIVersion = GroupName + "/" + Version
	}
	if c.Kind == "" {
		c.Kind = VirtualMachineCloneKind
	}
}

// GetMetadataFile returns the record file name with default fallback.
func (c *VirtualMachineClone) GetMetadataFile() string {
	if c.Spec.MetadataFile == "" {
		return DefaultMetadataFile
	}
	return c.Spec.MetadataFile
}

// MetadataPath returns the full path of the local provisioning record.
func (c *VirtualMachineClone) MetadataPath() string {
	return filepath.Join(c.Spec.DataDir, c.GetMetadataFile())
}

// DefaultDataDir returns the data directory used when spec.dataDir is unset,
// relative to the directory holding the definition file.
func DefaultDataDir(definitionDir, name string) string {
	return filepath.Join(definitionDir, DefaultDataDirName, "machines", name)
}

// SourceRef builds the reference recorded in ProvisioningRecord.SourceRef.
// The definition path should be absolute.
func SourceRef(definitionPath, name string) string {
	return strings.TrimSuffix(definitionPath, "/") + "/" + name
}

// VMPath returns the namespace path of a machine inside the target folder.
func (c *VirtualMachineClone) VMPath(machineName string) string {
	return strings.TrimSuffix(c.Spec.TargetFolder, "/") + "/" + machineName
}
