// Package loader provides functions for loading VirtualMachineClone
// definitions from YAML files.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/vmclone/api/v1alpha1"
)

// Definition is a loaded definition together with where it came from.
type Definition struct {
	Clone *v1alpha1.VirtualMachineClone

	// Path is the absolute path of the definition file.
	Path string

	// SourceRef is "<Path>/<metadata.name>".
	SourceRef string
}

// LoadFromFile loads a VirtualMachineClone definition from a YAML file.
// Relative and defaulted data directories are resolved against the
// definition's directory.
func LoadFromFile(path string) (*Definition, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	c, err := LoadFromYAML(data)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(abs)
	switch {
	case c.Spec.DataDir == "":
		c.Spec.DataDir = v1alpha1.DefaultDataDir(dir, c.Name)
	case !filepath.IsAbs(c.Spec.DataDir):
		c.Spec.DataDir = filepath.Join(dir, c.Spec.DataDir)
	}

	return &Definition{
		Clone:     c,
		Path:      abs,
		SourceRef: v1alpha1.SourceRef(abs, c.Name),
	}, nil
}

// LoadFromYAML loads a VirtualMachineClone from YAML bytes.
// The YAML must be in the vmclone.cofront.xyz/v1alpha1 format.
func LoadFromYAML(data []byte) (*v1alpha1.VirtualMachineClone, error) {
	var c v1alpha1.VirtualMachineClone
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	if c.APIVersion == "" {
		return nil, fmt.Errorf("missing required field: apiVersion")
	}
	if c.Kind == "" {
		return nil, fmt.Errorf("missing required field: kind")
	}

	expectedAPIVersion := v1alpha1.GroupName + "/" + v1alpha1.Version
	if c.APIVersion != expectedAPIVersion {
		return nil, fmt.Errorf("unsupported apiVersion: %s (expected: %s)", c.APIVersion, expectedAPIVersion)
	}
	if c.Kind != v1alpha1.VirtualMachineCloneKind {
		return nil, fmt.Errorf("unsupported kind: %s (expected: %s)", c.Kind, v1alpha1.VirtualMachineCloneKind)
	}

	applyDefaults(&c)

	if err := validateSpec(&c); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &c, nil
}

// SaveToFile saves a VirtualMachineClone definition to a YAML file.
// apiVersion and kind are defaulted in the written copy; c is not modified.
func SaveToFile(c *v1alpha1.VirtualMachineClone, path string) error {
	c = c.DeepCopy()
	v1alpha1.SetDefaultAPIVersion(c)

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal definition to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}

// applyDefaults sets default values for optional fields.
func applyDefaults(c *v1alpha1.VirtualMachineClone) {
	if c.Spec.MetadataFile == "" {
		c.Spec.MetadataFile = v1alpha1.DefaultMetadataFile
	}

	c.Spec.Username = strings.TrimSpace(c.Spec.Username)
	c.Spec.TargetFolder = strings.TrimSuffix(c.Spec.TargetFolder, "/")
}

// validateSpec checks required fields and consistency.
func validateSpec(c *v1alpha1.VirtualMachineClone) error {
	if c.Name == "" {
		return fmt.Errorf("metadata.name is required")
	}
	if strings.ContainsAny(c.Name, `/\`) {
		return fmt.Errorf("metadata.name %q must not contain path separators", c.Name)
	}

	required := []struct {
		field, value string
	}{
		{"spec.targetFolder", c.Spec.TargetFolder},
		{"spec.targetResourcePool", c.Spec.TargetResourcePool},
		{"spec.targetDatastore", c.Spec.TargetDatastore},
		{"spec.template", c.Spec.Template},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s is required", r.field)
		}
	}

	if strings.ContainsAny(c.Spec.MetadataFile, `/\`) {
		return fmt.Errorf("spec.metadataFile %q must be a file name", c.Spec.MetadataFile)
	}

	return nil
}
