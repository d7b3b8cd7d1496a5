package v1alpha1

// VirtualMachineClone describes one machine to be cloned from a vSphere
// template. A definition file holds exactly one of these.
//
// +kubebuilder:object:root=true
// +kubebuilder:resource:shortName=vmc
type VirtualMachineClone struct {
	// TypeMeta contains the API version and kind.
	TypeMeta `json:",inline" yaml:",inline"`

	// ObjectMeta contains metadata like name, labels, annotations.
	ObjectMeta `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Spec defines where and from what the machine is cloned.
	Spec VirtualMachineCloneSpec `json:"spec" yaml:"spec"`
}

// VirtualMachineCloneSpec holds the placement of a clone.
type VirtualMachineCloneSpec struct {
	// Username is the principal requesting the machine, e.g.
	// "jane.doe@example.com". The machine name is derived from it.
	// Defaults to the vSphere login user when empty.
	// +optional
	Username string `json:"username,omitempty" yaml:"username,omitempty"`

	// TargetFolder is the inventory path of the VM folder receiving the
	// clone, e.g. "/dc1/vm/dev".
	TargetFolder string `json:"targetFolder" yaml:"targetFolder"`

	// TargetResourcePool is the resource pool the clone is placed in.
	TargetResourcePool string `json:"targetResourcePool" yaml:"targetResourcePool"`

	// TargetDatastore is the datastore receiving the clone's disks.
	TargetDatastore string `json:"targetDatastore" yaml:"targetDatastore"`

	// Template is the inventory path (or datacenter-relative path) of the
	// source template.
	Template string `json:"template" yaml:"template"`

	// DataDir is the local directory holding per-machine state.
	// Defaults to ".vmclone/machines/<name>" next to the definition file.
	// +optional
	DataDir string `json:"dataDir,omitempty" yaml:"dataDir,omitempty"`

	// MetadataFile is the file name of the provisioning record inside DataDir.
	// +optional
	// +kubebuilder:default=metadata.json
	MetadataFile string `json:"metadataFile,omitempty" yaml:"metadataFile,omitempty"`
}

// DeepCopy creates a deep copy of VirtualMachineClone.
func (in *VirtualMachineClone) DeepCopy() *VirtualMachineClone {
	if in == nil {
		return nil
	}
	out := new(VirtualMachineClone)
	*out = *in
	out.ObjectMeta = *in.ObjectMeta.DeepCopy()
	return out
}
