package v1alpha1

// RecordState is the lifecycle state stored in a ProvisioningRecord.
type RecordState string

const (
	// RecordStateDeployedOff means the clone finished and the machine has
	// never been powered on.
	RecordStateDeployedOff RecordState = "deployed-off"
)

// ProvisioningRecord identifies a machine produced by a clone. It is written
// once, right after the clone task succeeds, to both the VM's annotation and
// the machine's local data directory.
//
// The JSON keys are snake_case so the annotation stays readable in the
// vSphere client.
type ProvisioningRecord struct {
	// MachineName is the allocated VM name.
	MachineName string `json:"machine_name" yaml:"machine_name"`

	// State is the machine lifecycle state.
	State RecordState `json:"state" yaml:"state"`

	// MoRef is the managed object ID of the VM, e.g. "vm-1234".
	MoRef string `json:"mo_ref" yaml:"mo_ref"`

	// SourceRef points at the definition the machine was cloned from:
	// "<absolute definition path>/<definition name>".
	SourceRef string `json:"source_ref" yaml:"source_ref"`

	// ID is the VM's instance UUID.
	ID string `json:"id" yaml:"id"`

	// CreatedOn is the UTC time the record was created.
	CreatedOn Time `json:"created_on" yaml:"created_on"`

	// CreatedBy is the principal that requested the machine, unnormalized.
	CreatedBy string `json:"created_by" yaml:"created_by"`
}
