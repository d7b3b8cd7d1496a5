// Package vm provisions virtual machines by cloning vSphere templates.
//
// This package orchestrates the lower-level components (vsphere, naming,
// task, metadata) into a single operation:
//   - Provision: clone a machine from a definition and record it
//
// Error Handling:
//
// Placement lookups are all attempted before failing, and every missing
// resource is reported in one ResourcesNotFoundError. A clone task that
// ends in error yields task.ErrCloneFailed. No cleanup of a partially
// created VM is attempted.
//
// Context Support:
//
// All operations accept a context.Context for cancellation. Task
// subscriptions are released even when the context is cancelled.
package vm
