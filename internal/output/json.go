package output

import (
	"encoding/json"
	"fmt"

	"github.com/jbweber/vmclone/api/v1alpha1"
)

// JSONFormatter formats records as indented JSON.
type JSONFormatter struct{}

// FormatRecord formats a single record as JSON.
func (f *JSONFormatter) FormatRecord(rec *v1alpha1.ProvisioningRecord) (string, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal record to JSON: %w", err)
	}

	return string(data) + "\n", nil
}

// FormatRecordList formats records as a JSON array.
func (f *JSONFormatter) FormatRecordList(recs []*v1alpha1.ProvisioningRecord) (string, error) {
	if len(recs) == 0 {
		return "[]\n", nil
	}

	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal records to JSON: %w", err)
	}

	return string(data) + "\n", nil
}
