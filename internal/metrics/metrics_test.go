package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveProvision(t *testing.T) {
	r := NewRecorder()

	r.ObserveProvision(30*time.Second, nil)
	r.ObserveProvision(45*time.Second, nil)
	r.ObserveProvision(2*time.Second, errors.New("clone failed"))

	assert.Equal(t, float64(2), testutil.ToFloat64(r.provisionTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.provisionTotal.WithLabelValues(ResultFailed)))
	assert.Equal(t, 2, testutil.CollectAndCount(r.provisionDuration))
	assert.Greater(t, testutil.ToFloat64(r.lastSuccess), float64(0))
}

func TestObserveProvision_FailureLeavesLastSuccessUnset(t *testing.T) {
	r := NewRecorder()

	r.ObserveProvision(time.Second, errors.New("boom"))

	assert.Equal(t, float64(0), testutil.ToFloat64(r.lastSuccess))
}

func TestProvisionTotal_Exposition(t *testing.T) {
	r := NewRecorder()
	r.ObserveProvision(time.Minute, nil)

	expected := `
# HELP vmclone_provision_total Total number of provisioning runs by result
# TYPE vmclone_provision_total counter
vmclone_provision_total{result="success"} 1
`
	require.NoError(t, testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "vmclone_provision_total"))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveProvision(time.Minute, nil)

	path := filepath.Join(t.TempDir(), "vmclone.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `vmclone_provision_total{result="success"} 1`)
	assert.Contains(t, string(data), "vmclone_provision_duration_seconds_bucket")
}

func TestWriteTextfile_BadPath(t *testing.T) {
	err := NewRecorder().WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "vmclone.prom"))
	assert.Error(t, err)
}
