// Package vsphere provides a client wrapper for interacting with vCenter.
//
// This package wraps github.com/vmware/govmomi to provide:
//   - Connection management (connect, logout, ping)
//   - Inventory lookups by path (resource pools, datastores, folders, VMs)
//   - Cloning, annotation and instance UUID access for virtual machines
//   - Task change feeds driven by property collector version tokens
//
// Connection Management:
//
//	client, err := vsphere.Connect(ctx, conn)
//	if err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
// Lookups that find nothing return an error matching ErrNotFound:
//
//	vm, err := client.FindVirtualMachine(ctx, "/DC0/vm/templates/centos7")
//	if errors.Is(err, vsphere.ErrNotFound) {
//	    ...
//	}
//
// Consumer-Side Interfaces:
//
// This package does not define interfaces. Consumers (internal/vm,
// internal/metadata) define their own interfaces specifying only the
// operations they need, and *Client satisfies them implicitly.
package vsphere
