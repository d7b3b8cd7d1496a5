package vm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vmware/govmomi/object"
	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/jbweber/vmclone/internal/status"
	"github.com/jbweber/vmclone/internal/task"
	"github.com/jbweber/vmclone/internal/vsphere"
)

const (
	testPool      = "/DC0/host/DC0_C0/Resources"
	testDatastore = "LocalDS_0"
	testFolder    = "/DC0/vm/dev"
	testTemplate  = "/DC0/vm/templates/centos7"
	testInstance  = "5012c4c9-2a1b-4b3e-9f1d-0a7e3c1e9b20"
)

func ref(kind, value string) vimtypes.ManagedObjectReference {
	return vimtypes.ManagedObjectReference{Type: kind, Value: value}
}

func notFound(kind, path string) error {
	return fmt.Errorf("%w: %s '%s'", vsphere.ErrNotFound, kind, path)
}

// mockPlatform is a mock implementation of the platform interface for testing.
type mockPlatform struct {
	mu sync.Mutex

	// Configurable behavior
	findResourcePoolFunc      func(ctx context.Context, path string) (*object.ResourcePool, error)
	findDatastoreFunc         func(ctx context.Context, path string) (*object.Datastore, error)
	findFolderFunc            func(ctx context.Context, path string) (*object.Folder, error)
	findVirtualMachineFunc    func(ctx context.Context, path string) (*object.VirtualMachine, error)
	virtualMachineExistsFunc  func(ctx context.Context, path string) (bool, error)
	findCustomizationSpecFunc func(ctx context.Context, name string) (*vimtypes.CustomizationSpecItem, error)
	cloneVMFunc               func(ctx context.Context, template *object.VirtualMachine, folder *object.Folder, name string, spec vimtypes.VirtualMachineCloneSpec) (vimtypes.ManagedObjectReference, error)
	subscribeTaskFunc         func(ctx context.Context, ref vimtypes.ManagedObjectReference) (task.Subscription, error)
	instanceUUIDFunc          func(ctx context.Context, vm *object.VirtualMachine) (string, error)
	setAnnotationFunc         func(ctx context.Context, vm *object.VirtualMachine, annotation string) error

	// Call tracking
	lookupCalls        []string
	existsCalls        []string
	customizationCalls []string
	cloneCalls         []cloneCall
	subscribeCalls     []vimtypes.ManagedObjectReference
	annotationCalls    []string
	subscription       *fakeSubscription
}

type cloneCall struct {
	template *object.VirtualMachine
	folder   *object.Folder
	name     string
	spec     vimtypes.VirtualMachineCloneSpec
}

// newMockPlatform creates a platform where every placement resource exists,
// no VM names are taken, and the clone succeeds after two progress updates.
func newMockPlatform() *mockPlatform {
	m := &mockPlatform{
		subscription: newFakeSubscription(
			status.TaskSnapshot{State: status.TaskRunning, Progress: 10},
			status.TaskSnapshot{State: status.TaskRunning, Progress: 55},
			status.TaskSnapshot{State: status.TaskSuccess},
		),
	}

	m.findResourcePoolFunc = func(ctx context.Context, path string) (*object.ResourcePool, error) {
		return object.NewResourcePool(nil, ref("ResourcePool", "resgroup-9")), nil
	}
	m.findDatastoreFunc = func(ctx context.Context, path string) (*object.Datastore, error) {
		return object.NewDatastore(nil, ref("Datastore", "datastore-11")), nil
	}
	m.findFolderFunc = func(ctx context.Context, path string) (*object.Folder, error) {
		return object.NewFolder(nil, ref("Folder", "group-v3")), nil
	}
	m.findVirtualMachineFunc = func(ctx context.Context, path string) (*object.VirtualMachine, error) {
		vm := object.NewVirtualMachine(nil, ref("VirtualMachine", "vm-42"))
		if path == testTemplate {
			vm = object.NewVirtualMachine(nil, ref("VirtualMachine", "vm-7"))
		}
		vm.InventoryPath = path
		return vm, nil
	}
	m.virtualMachineExistsFunc = func(ctx context.Context, path string) (bool, error) {
		return false, nil
	}
	m.findCustomizationSpecFunc = func(ctx context.Context, name string) (*vimtypes.CustomizationSpecItem, error) {
		return &vimtypes.CustomizationSpecItem{
			Info: vimtypes.CustomizationSpecInfo{Name: name},
			Spec: vimtypes.CustomizationSpec{
				Identity: &vimtypes.CustomizationLinuxPrep{Domain: "example.com"},
			},
		}, nil
	}
	m.cloneVMFunc = func(ctx context.Context, template *object.VirtualMachine, folder *object.Folder, name string, spec vimtypes.VirtualMachineCloneSpec) (vimtypes.ManagedObjectReference, error) {
		return ref("Task", "task-100"), nil
	}
	m.subscribeTaskFunc = func(ctx context.Context, r vimtypes.ManagedObjectReference) (task.Subscription, error) {
		return m.subscription, nil
	}
	m.instanceUUIDFunc = func(ctx context.Context, vm *object.VirtualMachine) (string, error) {
		return testInstance, nil
	}
	m.setAnnotationFunc = func(ctx context.Context, vm *object.VirtualMachine, annotation string) error {
		return nil
	}

	return m
}

func (m *mockPlatform) track(calls *[]string, v string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*calls = append(*calls, v)
}

func (m *mockPlatform) FindResourcePool(ctx context.Context, path string) (*object.ResourcePool, error) {
	m.track(&m.lookupCalls, "pool:"+path)
	return m.findResourcePoolFunc(ctx, path)
}

func (m *mockPlatform) FindDatastore(ctx context.Context, path string) (*object.Datastore, error) {
	m.track(&m.lookupCalls, "datastore:"+path)
	return m.findDatastoreFunc(ctx, path)
}

func (m *mockPlatform) FindFolder(ctx context.Context, path string) (*object.Folder, error) {
	m.track(&m.lookupCalls, "folder:"+path)
	return m.findFolderFunc(ctx, path)
}

func (m *mockPlatform) FindVirtualMachine(ctx context.Context, path string) (*object.VirtualMachine, error) {
	m.track(&m.lookupCalls, "vm:"+path)
	return m.findVirtualMachineFunc(ctx, path)
}

func (m *mockPlatform) VirtualMachineExists(ctx context.Context, path string) (bool, error) {
	m.track(&m.existsCalls, path)
	return m.virtualMachineExistsFunc(ctx, path)
}

func (m *mockPlatform) FindCustomizationSpec(ctx context.Context, name string) (*vimtypes.CustomizationSpecItem, error) {
	m.track(&m.customizationCalls, name)
	return m.findCustomizationSpecFunc(ctx, name)
}

func (m *mockPlatform) CloneVM(ctx context.Context, template *object.VirtualMachine, folder *object.Folder, name string, spec vimtypes.VirtualMachineCloneSpec) (vimtypes.ManagedObjectReference, error) {
	m.mu.Lock()
	m.cloneCalls = append(m.cloneCalls, cloneCall{template: template, folder: folder, name: name, spec: spec})
	m.mu.Unlock()
	return m.cloneVMFunc(ctx, template, folder, name, spec)
}

func (m *mockPlatform) SubscribeTask(ctx context.Context, r vimtypes.ManagedObjectReference) (task.Subscription, error) {
	m.mu.Lock()
	m.subscribeCalls = append(m.subscribeCalls, r)
	m.mu.Unlock()
	return m.subscribeTaskFunc(ctx, r)
}

func (m *mockPlatform) InstanceUUID(ctx context.Context, vm *object.VirtualMachine) (string, error) {
	return m.instanceUUIDFunc(ctx, vm)
}

func (m *mockPlatform) SetAnnotation(ctx context.Context, vm *object.VirtualMachine, annotation string) error {
	m.track(&m.annotationCalls, annotation)
	return m.setAnnotationFunc(ctx, vm, annotation)
}

// fakeSubscription replays task snapshots in order.
type fakeSubscription struct {
	mu           sync.Mutex
	script       []status.TaskSnapshot
	destroyCalls int
}

func newFakeSubscription(script ...status.TaskSnapshot) *fakeSubscription {
	return &fakeSubscription{script: script}
}

func (s *fakeSubscription) Next(ctx context.Context, version string) (status.TaskSnapshot, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.script) == 0 {
		return status.TaskSnapshot{}, version, fmt.Errorf("script exhausted")
	}
	snapshot := s.script[0]
	s.script = s.script[1:]
	return snapshot, version + "+", nil
}

func (s *fakeSubscription) Destroy(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyCalls++
	return nil
}

// recordingUI records everything shown to the user as one event per call.
type recordingUI struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingUI) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingUI) Info(msg string)                   { r.add("info:" + msg) }
func (r *recordingUI) Warn(msg string)                   { r.add("warn:" + msg) }
func (r *recordingUI) ReportProgress(current, total int) { r.add(fmt.Sprintf("progress:%d/%d", current, total)) }
func (r *recordingUI) ClearLine()                        { r.add("clear") }

func (r *recordingUI) filter(prefix string) []string {
	var out []string
	for _, e := range r.events {
		if strings.HasPrefix(e, prefix) {
			out = append(out, e)
		}
	}
	return out
}
