// Package status models the states of a vSphere task as observed through
// property collector updates.
package status

import (
	"fmt"

	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// TaskState is the coarse state of an asynchronous task.
type TaskState string

const (
	// TaskRunning covers both queued and running tasks.
	TaskRunning TaskState = "running"
	// TaskSuccess is terminal.
	TaskSuccess TaskState = "success"
	// TaskError is terminal.
	TaskError TaskState = "error"
)

// TaskSnapshot is the latest observed state of a task.
type TaskSnapshot struct {
	State TaskState
	// Progress is the completion percentage, 0-100. vSphere only reports it
	// while the task is running.
	Progress int32
	// Fault is the localized error message of a failed task, if known.
	Fault string
}

// FromTaskInfoState converts a govmomi task state.
func FromTaskInfoState(s vimtypes.TaskInfoState) (TaskState, error) {
	switch s {
	case vimtypes.TaskInfoStateQueued, vimtypes.TaskInfoStateRunning:
		return TaskRunning, nil
	case vimtypes.TaskInfoStateSuccess:
		return TaskSuccess, nil
	case vimtypes.TaskInfoStateError:
		return TaskError, nil
	default:
		return "", fmt.Errorf("unknown task state %q", s)
	}
}

// IsTerminal returns true once the task will not transition any further.
func IsTerminal(state TaskState) bool {
	return state == TaskSuccess || state == TaskError
}

// IsTerminal reports whether the snapshot holds a terminal state.
func (s TaskSnapshot) IsTerminal() bool {
	return IsTerminal(s.State)
}

// ClampProgress bounds a reported percentage to [0,100].
func ClampProgress(p int32) int32 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
