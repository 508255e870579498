package compute

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v4"
	"github.com/cockroachdb/errors"

	"github.com/Azure/azure-mcp/internal/azureclient"
)

// VirtualMachinesClient lists VMs and runs lifecycle operations to completion
type VirtualMachinesClient interface {
	NewListAllPager(options *armcompute.VirtualMachinesClientListAllOptions) *runtime.Pager[armcompute.VirtualMachinesClientListAllResponse]
	DeleteAndWait(ctx context.Context, resourceGroupName, vmName string) error
	RestartAndWait(ctx context.Context, resourceGroupName, vmName string) error
	StartAndWait(ctx context.Context, resourceGroupName, vmName string) error
	PowerOffAndWait(ctx context.Context, resourceGroupName, vmName string) error
}

// ClientFactory builds a VirtualMachinesClient for one subscription
type ClientFactory func(ctx context.Context, subscriptionID string) (VirtualMachinesClient, error)

// NewClientFactory returns a factory creating a new armcompute client per call
func NewClientFactory(creds azureclient.CredentialProvider) ClientFactory {
	return func(ctx context.Context, subscriptionID string) (VirtualMachinesClient, error) {
		cred, err := creds.GetCredential(ctx)
		if err != nil {
			return nil, err
		}
		client, err := armcompute.NewVirtualMachinesClient(subscriptionID, cred, azureclient.ARMClientOptions())
		if err != nil {
			return nil, errors.Wrap(err, "failed to create Virtual Machines client")
		}
		return &vmClient{VirtualMachinesClient: client}, nil
	}
}

// vmClient blocks on the long-running operations of armcompute.VirtualMachinesClient
type vmClient struct {
	*armcompute.VirtualMachinesClient
}

var _ VirtualMachinesClient = (*vmClient)(nil)

func pollUntilDone[T any](ctx context.Context, poller *runtime.Poller[T], err error) error {
	if err != nil {
		return err
	}
	_, err = poller.PollUntilDone(ctx, nil)
	return err
}

func (c *vmClient) DeleteAndWait(ctx context.Context, resourceGroupName, vmName string) error {
	poller, err := c.BeginDelete(ctx, resourceGroupName, vmName, nil)
	return pollUntilDone(ctx, poller, err)
}

func (c *vmClient) RestartAndWait(ctx context.Context, resourceGroupName, vmName string) error {
	poller, err := c.BeginRestart(ctx, resourceGroupName, vmName, nil)
	return pollUntilDone(ctx, poller, err)
}

func (c *vmClient) StartAndWait(ctx context.Context, resourceGroupName, vmName string) error {
	poller, err := c.BeginStart(ctx, resourceGroupName, vmName, nil)
	return pollUntilDone(ctx, poller, err)
}

func (c *vmClient) PowerOffAndWait(ctx context.Context, resourceGroupName, vmName string) error {
	poller, err := c.BeginPowerOff(ctx, resourceGroupName, vmName, nil)
	return pollUntilDone(ctx, poller, err)
}
