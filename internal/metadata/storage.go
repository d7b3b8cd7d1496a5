// Package metadata records which machine a clone produced. The record is
// stored twice with identical bytes: as the VM's annotation so it travels
// with the VM, and as a JSON file in the machine's local data directory.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vmware/govmomi/object"

	"github.com/jbweber/vmclone/api/v1alpha1"
)

// ErrNoRecord is returned when an annotation holds no record.
var ErrNoRecord = errors.New("no provisioning record")

// AnnotationWriter sets a VM's annotation.
//
// In production this is satisfied by *vsphere.Client.
// In tests it is satisfied by mocks.
type AnnotationWriter interface {
	SetAnnotation(ctx context.Context, vm *object.VirtualMachine, annotation string) error
}

// Identity is what the platform knows about a freshly cloned VM.
type Identity struct {
	MachineName string
	MoRef       string
	InstanceID  string
}

// NewRecord builds the record for a machine created at now.
func NewRecord(id Identity, sourceRef, createdBy string, now time.Time) *v1alpha1.ProvisioningRecord {
	return &v1alpha1.ProvisioningRecord{
		MachineName: id.MachineName,
		State:       v1alpha1.RecordStateDeployedOff,
		MoRef:       id.MoRef,
		SourceRef:   sourceRef,
		ID:          id.InstanceID,
		CreatedOn:   v1alpha1.NewTime(now),
		CreatedBy:   createdBy,
	}
}

// Marshal serializes a record to compact JSON.
func Marshal(rec *v1alpha1.ProvisioningRecord) ([]byte, error) {
	if rec == nil {
		return nil, fmt.Errorf("record is nil")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal provisioning record: %w", err)
	}
	return data, nil
}

// Store writes rec to the VM annotation and then to path, replacing any
// previous content of either. Both receive the same bytes. The file is not
// written when the annotation update fails.
func Store(ctx context.Context, w AnnotationWriter, vm *object.VirtualMachine, path string, rec *v1alpha1.ProvisioningRecord) ([]byte, error) {
	data, err := Marshal(rec)
	if err != nil {
		return nil, err
	}

	if err := w.SetAnnotation(ctx, vm, string(data)); err != nil {
		return nil, fmt.Errorf("failed to store record in VM annotation: %w", err)
	}

	if err := WriteFile(path, data); err != nil {
		return nil, err
	}

	return data, nil
}

// WriteFile writes data to path, creating parent directories and
// truncating an existing file.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write record file %s: %w", path, err)
	}

	return nil
}

// LoadFile reads a record previously written by Store.
func LoadFile(path string) (*v1alpha1.ProvisioningRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	rec, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse record file %s: %w", path, err)
	}

	return rec, nil
}

// ParseAnnotation decodes a record from a VM annotation. Returns
// ErrNoRecord when the annotation is empty.
func ParseAnnotation(annotation string) (*v1alpha1.ProvisioningRecord, error) {
	if strings.TrimSpace(annotation) == "" {
		return nil, ErrNoRecord
	}

	rec, err := decode([]byte(annotation))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoRecord, err)
	}

	return rec, nil
}

func decode(data []byte) (*v1alpha1.ProvisioningRecord, error) {
	var rec v1alpha1.ProvisioningRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec.MachineName == "" {
		return nil, fmt.Errorf("machine_name is missing")
	}
	return &rec, nil
}
