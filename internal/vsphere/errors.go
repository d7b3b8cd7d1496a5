package vsphere

import (
	"errors"

	"github.com/vmware/govmomi/fault"
	"github.com/vmware/govmomi/find"
	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// ErrNotFound is matched by errors from lookups that found no object.
var ErrNotFound = errors.New("not found")

type notFoundError struct {
	err error
}

func (e *notFoundError) Error() string {
	return e.err.Error()
}

func (e *notFoundError) Unwrap() []error {
	return []error{ErrNotFound, e.err}
}

// translate marks finder misses and stale references as ErrNotFound.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var nf *find.NotFoundError
	if errors.As(err, &nf) || fault.Is(err, &vimtypes.ManagedObjectNotFound{}) {
		return &notFoundError{err: err}
	}

	return err
}

// IsNotAuthenticated reports whether err is a NotAuthenticated fault.
func IsNotAuthenticated(err error) bool {
	return fault.Is(err, &vimtypes.NotAuthenticated{})
}

// IsInvalidLogin reports whether err is an InvalidLogin fault.
func IsInvalidLogin(err error) bool {
	return fault.Is(err, &vimtypes.InvalidLogin{})
}
