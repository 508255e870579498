// Package compute implements the Virtual Machine tools. Lifecycle tools wait
// for the long-running operation to finish before returning.
package compute

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/Azure/azure-mcp/internal/components/common"
	"github.com/Azure/azure-mcp/internal/config"
	"github.com/Azure/azure-mcp/internal/logger"
)

const (
	msgSubscriptionRequired  = "Subscription ID is required for this operation."
	msgResourceGroupRequired = "Resource Group name is required for this operation."
	msgVMNameRequired        = "Virtual Machine name is required for this operation."
)

// VMSummary is one entry of azure_vms_list
type VMSummary struct {
	Name *string `json:"name,omitempty"`
	ID   *string `json:"id,omitempty"`
}

// LifecycleResult is the result of delete, restart, start and stop
type LifecycleResult struct {
	Status string `json:"status"`
	VMName string `json:"vmName"`
}

// Handlers implements the Virtual Machine tools
type Handlers struct {
	newClient ClientFactory
}

// NewHandlers creates the Virtual Machine handlers
func NewHandlers(factory ClientFactory) *Handlers {
	return &Handlers{newClient: factory}
}

// ListVMs handles azure_vms_list
func (h *Handlers) ListVMs(ctx context.Context, params map[string]interface{}, _ *config.ConfigData) (interface{}, error) {
	subscriptionID, err := common.RequireString(params, "subscriptionId", msgSubscriptionRequired)
	if err != nil {
		return nil, err
	}

	client, err := h.newClient(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	vms := make([]VMSummary, 0)
	pager := client.NewListAllPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to list virtual machines")
		}
		for _, vm := range page.Value {
			if vm == nil {
				continue
			}
			vms = append(vms, VMSummary{Name: vm.Name, ID: vm.ID})
		}
	}

	logger.Debugf("Listed %d virtual machines in subscription %s", len(vms), subscriptionID)
	return vms, nil
}

// DeleteVM handles azure_vms_delete
func (h *Handlers) DeleteVM(ctx context.Context, params map[string]interface{}, _ *config.ConfigData) (interface{}, error) {
	return h.lifecycle(ctx, params, "deleted", VirtualMachinesClient.DeleteAndWait)
}

// RestartVM handles azure_vms_restart
func (h *Handlers) RestartVM(ctx context.Context, params map[string]interface{}, _ *config.ConfigData) (interface{}, error) {
	return h.lifecycle(ctx, params, "restarted", VirtualMachinesClient.RestartAndWait)
}

// StartVM handles azure_vms_start
func (h *Handlers) StartVM(ctx context.Context, params map[string]interface{}, _ *config.ConfigData) (interface{}, error) {
	return h.lifecycle(ctx, params, "started", VirtualMachinesClient.StartAndWait)
}

// StopVM handles azure_vms_stop. The VM is powered off, not deallocated.
func (h *Handlers) StopVM(ctx context.Context, params map[string]interface{}, _ *config.ConfigData) (interface{}, error) {
	return h.lifecycle(ctx, params, "stopped", VirtualMachinesClient.PowerOffAndWait)
}

func (h *Handlers) lifecycle(
	ctx context.Context,
	params map[string]interface{},
	status string,
	op func(VirtualMachinesClient, context.Context, string, string) error,
) (interface{}, error) {
	subscriptionID, err := common.RequireString(params, "subscriptionId", msgSubscriptionRequired)
	if err != nil {
		return nil, err
	}
	resourceGroup, err := common.RequireString(params, "resourceGroupName", msgResourceGroupRequired)
	if err != nil {
		return nil, err
	}
	vmName, err := common.RequireString(params, "vmName", msgVMNameRequired)
	if err != nil {
		return nil, err
	}

	client, err := h.newClient(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	logger.Debugf("Virtual machine %s/%s: waiting until %s", resourceGroup, vmName, status)
	if err := op(client, ctx, resourceGroup, vmName); err != nil {
		return nil, errors.Wrapf(err, "virtual machine %s could not be %s", vmName, status)
	}

	return LifecycleResult{Status: status, VMName: vmName}, nil
}
