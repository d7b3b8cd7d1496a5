package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/jbweber/vmclone/api/v1alpha1"
)

// TableFormatter formats records as human-readable tables.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool
}

// FormatRecord formats a single record as a table row.
func (f *TableFormatter) FormatRecord(rec *v1alpha1.ProvisioningRecord) (string, error) {
	return f.FormatRecordList([]*v1alpha1.ProvisioningRecord{rec})
}

// FormatRecordList formats records as a table.
func (f *TableFormatter) FormatRecordList(recs []*v1alpha1.ProvisioningRecord) (string, error) {
	if len(recs) == 0 {
		return "No machines found\n", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "NAME\tSTATE\tMOREF\tID\tCREATED BY\tAGE")
	}

	for _, rec := range recs {
		age := "-"
		if !rec.CreatedOn.IsZero() {
			age = formatAge(time.Since(rec.CreatedOn.Time))
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			orDash(rec.MachineName),
			orDash(string(rec.State)),
			orDash(rec.MoRef),
			orDash(rec.ID),
			orDash(rec.CreatedBy),
			age)
	}

	_ = w.Flush()
	return buf.String(), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatAge formats a duration as a human-readable age string.
// Examples: "5s", "2m", "3h", "4d", "2w", "1y"
func formatAge(d time.Duration) string {
	if d < 0 {
		return "unknown"
	}

	seconds := int(d.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}

	days := hours / 24
	if days < 7 {
		return fmt.Sprintf("%dd", days)
	}

	weeks := days / 7
	if weeks < 8 {
		return fmt.Sprintf("%dw", weeks)
	}

	if years := days / 365; years > 0 {
		return fmt.Sprintf("%dy", years)
	}

	return fmt.Sprintf("%dd", days)
}
