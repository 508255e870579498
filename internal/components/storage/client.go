package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/streaming"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"
	"github.com/cockroachdb/errors"

	"github.com/Azure/azure-mcp/internal/azureclient"
)

// ContainerProperties is the JSON view of a container's service properties
type ContainerProperties struct {
	LastModified          *time.Time `json:"lastModified,omitempty"`
	ETag                  *string    `json:"etag,omitempty"`
	LeaseStatus           *string    `json:"leaseStatus,omitempty"`
	LeaseState            *string    `json:"leaseState,omitempty"`
	PublicAccess          *string    `json:"publicAccess,omitempty"`
	HasImmutabilityPolicy *bool      `json:"hasImmutabilityPolicy,omitempty"`
	HasLegalHold          *bool      `json:"hasLegalHold,omitempty"`
}

// ContainerItem is one container of an account listing
type ContainerItem struct {
	Name       *string              `json:"name,omitempty"`
	Properties *ContainerProperties `json:"properties,omitempty"`
}

// BlobItem is one blob of a container listing as reported by the service
type BlobItem struct {
	Name          *string
	ContentType   *string
	ContentLength *int64
	LastModified  *time.Time
	BlobType      *string
}

// RequestInfo carries the identifiers the service returns for a request
type RequestInfo struct {
	RequestID *string
	Date      *time.Time
}

// UploadInfo is returned by a block blob upload
type UploadInfo struct {
	ETag         *string
	LastModified *time.Time
	RequestID    *string
}

// Download is an open blob body. The caller closes Body.
type Download struct {
	Body          io.ReadCloser
	ContentType   *string
	ContentLength *int64
}

// AccountClient is the set of Blob Storage calls the tools make against one account
type AccountClient interface {
	ListContainers(ctx context.Context) ([]ContainerItem, error)
	ContainerExists(ctx context.Context, containerName string) (bool, error)
	CreateContainer(ctx context.Context, containerName string) (RequestInfo, error)
	DeleteContainer(ctx context.Context, containerName string) (RequestInfo, error)
	ListBlobs(ctx context.Context, containerName string, maxPageSize int32) ([]BlobItem, error)
	BlobExists(ctx context.Context, containerName, blobName string) (bool, error)
	UploadBlob(ctx context.Context, containerName, blobName, content string) (UploadInfo, error)
	DownloadBlob(ctx context.Context, containerName, blobName string) (Download, error)
	DeleteBlob(ctx context.Context, containerName, blobName string) error
}

// ClientFactory builds an AccountClient for one storage account
type ClientFactory func(ctx context.Context, accountName string) (AccountClient, error)

// AccountURL is the blob endpoint of a storage account
func AccountURL(accountName string) string {
	return fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
}

// NewClientFactory returns a factory creating a new azblob client per call
func NewClientFactory(creds azureclient.CredentialProvider) ClientFactory {
	return func(ctx context.Context, accountName string) (AccountClient, error) {
		cred, err := creds.GetCredential(ctx)
		if err != nil {
			return nil, err
		}
		client, err := azblob.NewClient(AccountURL(accountName), cred, &azblob.ClientOptions{
			ClientOptions: azureclient.ClientOptions(),
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create Blob Storage client")
		}
		return &azureAccount{svc: client.ServiceClient()}, nil
	}
}

// azureAccount implements AccountClient with the azblob SDK
type azureAccount struct {
	svc *service.Client
}

var _ AccountClient = (*azureAccount)(nil)

func stringOf[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	return to.Ptr(string(*v))
}

func (a *azureAccount) ListContainers(ctx context.Context) ([]ContainerItem, error) {
	items := make([]ContainerItem, 0)
	pager := a.svc.NewListContainersPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range page.ContainerItems {
			if c == nil {
				continue
			}
			item := ContainerItem{Name: c.Name}
			if p := c.Properties; p != nil {
				item.Properties = &ContainerProperties{
					LastModified:          p.LastModified,
					ETag:                  stringOf(p.ETag),
					LeaseStatus:           stringOf(p.LeaseStatus),
					LeaseState:            stringOf(p.LeaseState),
					PublicAccess:          stringOf(p.PublicAccess),
					HasImmutabilityPolicy: p.HasImmutabilityPolicy,
					HasLegalHold:          p.HasLegalHold,
				}
			}
			items = append(items, item)
		}
	}
	return items, nil
}

func (a *azureAccount) ContainerExists(ctx context.Context, containerName string) (bool, error) {
	_, err := a.svc.NewContainerClient(containerName).GetProperties(ctx, nil)
	if err == nil {
		return true, nil
	}
	if bloberror.HasCode(err, bloberror.ContainerNotFound, bloberror.ContainerBeingDeleted) {
		return false, nil
	}
	return false, err
}

func (a *azureAccount) CreateContainer(ctx context.Context, containerName string) (RequestInfo, error) {
	resp, err := a.svc.NewContainerClient(containerName).Create(ctx, nil)
	if err != nil {
		return RequestInfo{}, err
	}
	return RequestInfo{RequestID: resp.RequestID, Date: resp.Date}, nil
}

func (a *azureAccount) DeleteContainer(ctx context.Context, containerName string) (RequestInfo, error) {
	resp, err := a.svc.NewContainerClient(containerName).Delete(ctx, nil)
	if err != nil {
		return RequestInfo{}, err
	}
	return RequestInfo{RequestID: resp.RequestID, Date: resp.Date}, nil
}

func (a *azureAccount) ListBlobs(ctx context.Context, containerName string, maxPageSize int32) ([]BlobItem, error) {
	var opts *container.ListBlobsFlatOptions
	if maxPageSize > 0 {
		opts = &container.ListBlobsFlatOptions{MaxResults: to.Ptr(maxPageSize)}
	}

	items := make([]BlobItem, 0)
	pager := a.svc.NewContainerClient(containerName).NewListBlobsFlatPager(opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		if page.Segment == nil {
			continue
		}
		for _, b := range page.Segment.BlobItems {
			if b == nil {
				continue
			}
			item := BlobItem{Name: b.Name}
			if p := b.Properties; p != nil {
				item.ContentType = p.ContentType
				item.ContentLength = p.ContentLength
				item.LastModified = p.LastModified
				item.BlobType = stringOf(p.BlobType)
			}
			items = append(items, item)
		}
	}
	return items, nil
}

func (a *azureAccount) blobClient(containerName, blobName string) *blob.Client {
	return a.svc.NewContainerClient(containerName).NewBlobClient(blobName)
}

func (a *azureAccount) BlobExists(ctx context.Context, containerName, blobName string) (bool, error) {
	_, err := a.blobClient(containerName, blobName).GetProperties(ctx, nil)
	if err == nil {
		return true, nil
	}
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return false, nil
	}
	return false, err
}

func (a *azureAccount) UploadBlob(ctx context.Context, containerName, blobName, content string) (UploadInfo, error) {
	client := a.svc.NewContainerClient(containerName).NewBlockBlobClient(blobName)
	resp, err := client.Upload(ctx, streaming.NopCloser(strings.NewReader(content)), nil)
	if err != nil {
		return UploadInfo{}, err
	}
	return UploadInfo{
		ETag:         stringOf(resp.ETag),
		LastModified: resp.LastModified,
		RequestID:    resp.RequestID,
	}, nil
}

func (a *azureAccount) DownloadBlob(ctx context.Context, containerName, blobName string) (Download, error) {
	resp, err := a.blobClient(containerName, blobName).DownloadStream(ctx, nil)
	if err != nil {
		return Download{}, err
	}
	return Download{
		Body:          resp.Body,
		ContentType:   resp.ContentType,
		ContentLength: resp.ContentLength,
	}, nil
}

func (a *azureAccount) DeleteBlob(ctx context.Context, containerName, blobName string) error {
	_, err := a.blobClient(containerName, blobName).Delete(ctx, nil)
	return err
}
