package compute

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v4"

	"github.com/Azure/azure-mcp/internal/components/common"
	"github.com/Azure/azure-mcp/internal/config"
	"github.com/Azure/azure-mcp/internal/registry"
)

type mockVMClient struct {
	pages   [][]*armcompute.VirtualMachine
	listErr error
	opErr   error
	calls   []string
}

func (m *mockVMClient) NewListAllPager(_ *armcompute.VirtualMachinesClientListAllOptions) *runtime.Pager[armcompute.VirtualMachinesClientListAllResponse] {
	page := 0
	return runtime.NewPager(runtime.PagingHandler[armcompute.VirtualMachinesClientListAllResponse]{
		More: func(armcompute.VirtualMachinesClientListAllResponse) bool {
			return page < len(m.pages)
		},
		Fetcher: func(context.Context, *armcompute.VirtualMachinesClientListAllResponse) (armcompute.VirtualMachinesClientListAllResponse, error) {
			var resp armcompute.VirtualMachinesClientListAllResponse
			if m.listErr != nil {
				return resp, m.listErr
			}
			if page < len(m.pages) {
				resp.Value = m.pages[page]
				page++
			}
			return resp, nil
		},
	})
}

func (m *mockVMClient) record(op, resourceGroupName, vmName string) error {
	m.calls = append(m.calls, op+":"+resourceGroupName+"/"+vmName)
	return m.opErr
}

func (m *mockVMClient) DeleteAndWait(ctx context.Context, resourceGroupName, vmName string) error {
	return m.record("delete", resourceGroupName, vmName)
}

func (m *mockVMClient) RestartAndWait(ctx context.Context, resourceGroupName, vmName string) error {
	return m.record("restart", resourceGroupName, vmName)
}

func (m *mockVMClient) StartAndWait(ctx context.Context, resourceGroupName, vmName string) error {
	return m.record("start", resourceGroupName, vmName)
}

func (m *mockVMClient) PowerOffAndWait(ctx context.Context, resourceGroupName, vmName string) error {
	return m.record("powerOff", resourceGroupName, vmName)
}

func newTestHandlers(mock *mockVMClient) (*Handlers, *[]string) {
	var subscriptions []string
	h := NewHandlers(func(ctx context.Context, subscriptionID string) (VirtualMachinesClient, error) {
		subscriptions = append(subscriptions, subscriptionID)
		return mock, nil
	})
	return h, &subscriptions
}

func TestStopVM(t *testing.T) {
	mock := &mockVMClient{}
	h, subscriptions := newTestHandlers(mock)

	result, err := h.StopVM(context.Background(), map[string]interface{}{
		"subscriptionId":    "s1",
		"resourceGroupName": "rg1",
		"vmName":            "vm1",
	}, nil)
	if err != nil {
		t.Fatalf("StopVM returned error: %v", err)
	}

	want := LifecycleResult{Status: "stopped", VMName: "vm1"}
	if result != want {
		t.Errorf("StopVM() = %#v, want %#v", result, want)
	}
	if !reflect.DeepEqual(*subscriptions, []string{"s1"}) {
		t.Errorf("client built for %v, want [s1]", *subscriptions)
	}
	if !reflect.DeepEqual(mock.calls, []string{"powerOff:rg1/vm1"}) {
		t.Errorf("calls = %v, want [powerOff:rg1/vm1]", mock.calls)
	}
}

func TestLifecycleOperations(t *testing.T) {
	params := map[string]interface{}{"subscriptionId": "s1", "resourceGroupName": "rg1", "vmName": "vm1"}

	tests := []struct {
		name       string
		handler    func(*Handlers) func(context.Context, map[string]interface{}, *config.ConfigData) (interface{}, error)
		wantStatus string
		wantCall   string
	}{
		{"delete", func(h *Handlers) func(context.Context, map[string]interface{}, *config.ConfigData) (interface{}, error) { return h.DeleteVM }, "deleted", "delete:rg1/vm1"},
		{"restart", func(h *Handlers) func(context.Context, map[string]interface{}, *config.ConfigData) (interface{}, error) { return h.RestartVM }, "restarted", "restart:rg1/vm1"},
		{"start", func(h *Handlers) func(context.Context, map[string]interface{}, *config.ConfigData) (interface{}, error) { return h.StartVM }, "started", "start:rg1/vm1"},
		{"stop", func(h *Handlers) func(context.Context, map[string]interface{}, *config.ConfigData) (interface{}, error) { return h.StopVM }, "stopped", "powerOff:rg1/vm1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockVMClient{}
			h, _ := newTestHandlers(mock)

			result, err := tt.handler(h)(context.Background(), params, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := result.(LifecycleResult); got.Status != tt.wantStatus || got.VMName != "vm1" {
				t.Errorf("result = %#v, want status %q", got, tt.wantStatus)
			}
			if len(mock.calls) != 1 || mock.calls[0] != tt.wantCall {
				t.Errorf("calls = %v, want [%s]", mock.calls, tt.wantCall)
			}
		})
	}
}

func TestLifecycle_Validation(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]interface{}
		wantErr string
	}{
		{"empty", map[string]interface{}{}, msgSubscriptionRequired},
		{"missing resource group", map[string]interface{}{"subscriptionId": "s1", "vmName": "vm1"}, msgResourceGroupRequired},
		{"missing vm name", map[string]interface{}{"subscriptionId": "s1", "resourceGroupName": "rg1"}, msgVMNameRequired},
		{"empty vm name", map[string]interface{}{"subscriptionId": "s1", "resourceGroupName": "rg1", "vmName": ""}, msgVMNameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockVMClient{}
			h, subscriptions := newTestHandlers(mock)

			_, err := h.DeleteVM(context.Background(), tt.params, nil)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if err.Error() != tt.wantErr {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
			}
			if !common.IsValidationError(err) {
				t.Errorf("expected a validation error, got %T", err)
			}
			if len(*subscriptions) != 0 || len(mock.calls) != 0 {
				t.Errorf("no client should be built, got %v / %v", *subscriptions, mock.calls)
			}
		})
	}
}

func TestLifecycle_OperationErrorIsRaised(t *testing.T) {
	h, _ := newTestHandlers(&mockVMClient{opErr: errors.New("OperationNotAllowed")})

	_, err := h.RestartVM(context.Background(), map[string]interface{}{"subscriptionId": "s1", "resourceGroupName": "rg1", "vmName": "vm1"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "virtual machine vm1 could not be restarted: OperationNotAllowed"; err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestListVMs(t *testing.T) {
	mock := &mockVMClient{pages: [][]*armcompute.VirtualMachine{
		{
			{Name: to.Ptr("vm-a"), ID: to.Ptr("/subscriptions/s1/resourceGroups/rg1/providers/Microsoft.Compute/virtualMachines/vm-a")},
			nil,
		},
		{
			{Name: to.Ptr("vm-b"), ID: to.Ptr("/subscriptions/s1/resourceGroups/rg2/providers/Microsoft.Compute/virtualMachines/vm-b")},
			{Name: to.Ptr("vm-c"), ID: to.Ptr("/subscriptions/s1/resourceGroups/rg2/providers/Microsoft.Compute/virtualMachines/vm-c")},
		},
	}}
	h, _ := newTestHandlers(mock)

	result, err := h.ListVMs(context.Background(), map[string]interface{}{"subscriptionId": "s1"}, nil)
	if err != nil {
		t.Fatalf("ListVMs returned error: %v", err)
	}

	vms := result.([]VMSummary)
	var names []string
	for _, vm := range vms {
		names = append(names, *vm.Name)
	}
	if !reflect.DeepEqual(names, []string{"vm-a", "vm-b", "vm-c"}) {
		t.Errorf("names = %v, want [vm-a vm-b vm-c]", names)
	}
}

func TestListVMs_Errors(t *testing.T) {
	h, subscriptions := newTestHandlers(&mockVMClient{listErr: errors.New("AuthorizationFailed")})

	if _, err := h.ListVMs(context.Background(), map[string]interface{}{}, nil); err == nil || err.Error() != msgSubscriptionRequired {
		t.Errorf("expected %q, got %v", msgSubscriptionRequired, err)
	}
	if len(*subscriptions) != 0 {
		t.Errorf("no client should be built without a subscription")
	}

	_, err := h.ListVMs(context.Background(), map[string]interface{}{"subscriptionId": "s1"}, nil)
	if err == nil || err.Error() != "failed to list virtual machines: AuthorizationFailed" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRegisterTools(t *testing.T) {
	reg := registry.NewToolRegistry()
	RegisterTools(reg, NewHandlers(nil), config.NewConfig())

	defs := reg.GetToolsByCategory(registry.CategoryCompute)
	if len(defs) != 5 {
		t.Fatalf("expected 5 tools, got %d", len(defs))
	}

	for _, def := range defs {
		wantReadOnly := def.Tool.Name == "azure_vms_list"
		if def.ReadOnly != wantReadOnly {
			t.Errorf("%s: ReadOnly = %v, want %v", def.Tool.Name, def.ReadOnly, wantReadOnly)
		}
		if def.Tool.Name != "azure_vms_list" && len(def.Tool.InputSchema.Required) != 3 {
			t.Errorf("%s: required = %v", def.Tool.Name, def.Tool.InputSchema.Required)
		}
	}

	del, _ := reg.GetTool("azure_vms_delete")
	if del.Tool.Annotations.DestructiveHint == nil || !*del.Tool.Annotations.DestructiveHint {
		t.Errorf("azure_vms_delete should be marked destructive")
	}
}
