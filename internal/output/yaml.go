package output

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/vmclone/api/v1alpha1"
)

// YAMLFormatter formats records as YAML.
type YAMLFormatter struct{}

// FormatRecord formats a single record as YAML.
func (f *YAMLFormatter) FormatRecord(rec *v1alpha1.ProvisioningRecord) (string, error) {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record to YAML: %w", err)
	}

	return string(data), nil
}

// FormatRecordList formats records as a YAML stream (documents separated
// by ---).
func (f *YAMLFormatter) FormatRecordList(recs []*v1alpha1.ProvisioningRecord) (string, error) {
	var buf bytes.Buffer

	for i, rec := range recs {
		data, err := yaml.Marshal(rec)
		if err != nil {
			return "", fmt.Errorf("failed to marshal record %s to YAML: %w", rec.MachineName, err)
		}

		if i > 0 {
			buf.WriteString("---\n")
		}
		buf.Write(data)
	}

	return buf.String(), nil
}
