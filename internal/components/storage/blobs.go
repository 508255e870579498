package storage

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/cockroachdb/errors"

	"github.com/Azure/azure-mcp/internal/components/common"
	"github.com/Azure/azure-mcp/internal/config"
	"github.com/Azure/azure-mcp/internal/logger"
)

// Operations accepted by azure_blobs
const (
	OpListContainers  = "listContainers"
	OpCreateContainer = "createContainer"
	OpListBlobs       = "listBlobs"
	OpUploadBlob      = "uploadBlob"
	OpDownloadBlob    = "downloadBlob"
	OpDeleteBlob      = "deleteBlob"
)

// BlobOperations lists the azure_blobs operations in schema order
var BlobOperations = []string{
	OpListContainers,
	OpCreateContainer,
	OpListBlobs,
	OpUploadBlob,
	OpDownloadBlob,
	OpDeleteBlob,
}

var mutatingOperations = map[string]bool{
	OpCreateContainer: true,
	OpUploadBlob:      true,
	OpDeleteBlob:      true,
}

const maxBlobPageSize = 50

type blobRequest struct {
	operation     string
	containerName string
	blobName      string
	content       string
}

// BlobsDispatcher handles azure_blobs. Unlike the per-operation tools it skips
// existence checks and raises every failure.
type BlobsDispatcher struct {
	newClient ClientFactory
}

// NewBlobsDispatcher creates the azure_blobs handler
func NewBlobsDispatcher(factory ClientFactory) *BlobsDispatcher {
	return &BlobsDispatcher{newClient: factory}
}

// Handle implements tools.ResourceHandler
func (d *BlobsDispatcher) Handle(ctx context.Context, params map[string]interface{}, cfg *config.ConfigData) (interface{}, error) {
	result, err := d.dispatch(ctx, params, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "Azure Blob Storage error")
	}
	return result, nil
}

func (d *BlobsDispatcher) dispatch(ctx context.Context, params map[string]interface{}, cfg *config.ConfigData) (interface{}, error) {
	req := blobRequest{
		operation:     common.GetString(params, "operation"),
		containerName: common.GetString(params, "containerName"),
		blobName:      common.GetString(params, "blobName"),
		content:       common.GetString(params, "content"),
	}

	if mutatingOperations[req.operation] && cfg != nil && cfg.IsReadOnly() {
		return nil, errors.Newf("operation %s is not allowed with readonly access level", req.operation)
	}

	accountName, err := common.RequireString(params, "accountName", msgAccountRequired)
	if err != nil {
		return nil, err
	}
	client, err := d.newClient(ctx, accountName)
	if err != nil {
		return nil, err
	}

	logger.Debugf("azure_blobs %s on account %s", req.operation, accountName)
	switch req.operation {
	case OpListContainers:
		containers, err := client.ListContainers(ctx)
		if err != nil {
			return nil, err
		}
		return ContainerList{Containers: containers}, nil
	case OpCreateContainer:
		return d.createContainer(ctx, client, req)
	case OpListBlobs:
		return d.listBlobs(ctx, client, req)
	case OpUploadBlob:
		return d.uploadBlob(ctx, client, req)
	case OpDownloadBlob:
		return d.downloadBlob(ctx, client, req)
	case OpDeleteBlob:
		return d.deleteBlob(ctx, client, req)
	default:
		return nil, errors.Newf("Unsupported operation: %s", req.operation)
	}
}

func requireFor(op, field, value string) error {
	if value != "" {
		return nil
	}
	var msg string
	switch field {
	case "containerName":
		msg = fmt.Sprintf("Container name is required for %s operation", op)
	case "blobName":
		msg = fmt.Sprintf("Blob name is required for %s operation", op)
	default:
		msg = fmt.Sprintf("Content is required for %s operation", op)
	}
	return common.NewValidationError(field, msg)
}

func (r blobRequest) require(blob bool) error {
	if err := requireFor(r.operation, "containerName", r.containerName); err != nil {
		return err
	}
	if blob {
		return requireFor(r.operation, "blobName", r.blobName)
	}
	return nil
}

func (d *BlobsDispatcher) createContainer(ctx context.Context, client AccountClient, req blobRequest) (interface{}, error) {
	if err := req.require(false); err != nil {
		return nil, err
	}
	info, err := client.CreateContainer(ctx, req.containerName)
	if err != nil {
		return nil, err
	}
	return ContainerResult{ContainerName: req.containerName, Created: to.Ptr(true), RequestID: info.RequestID, Date: info.Date}, nil
}

func (d *BlobsDispatcher) listBlobs(ctx context.Context, client AccountClient, req blobRequest) (interface{}, error) {
	if err := req.require(false); err != nil {
		return nil, err
	}
	items, err := client.ListBlobs(ctx, req.containerName, maxBlobPageSize)
	if err != nil {
		return nil, errors.Wrap(err, "Error listing blobs")
	}
	return BlobList{ContainerName: req.containerName, Blobs: summarizeBlobs(items)}, nil
}

func (d *BlobsDispatcher) uploadBlob(ctx context.Context, client AccountClient, req blobRequest) (interface{}, error) {
	if err := req.require(true); err != nil {
		return nil, err
	}
	if err := requireFor(req.operation, "content", req.content); err != nil {
		return nil, err
	}
	info, err := client.UploadBlob(ctx, req.containerName, req.blobName, req.content)
	if err != nil {
		return nil, err
	}
	return BlobResult{
		ContainerName: req.containerName,
		BlobName:      req.blobName,
		ETag:          info.ETag,
		LastModified:  info.LastModified,
		RequestID:     info.RequestID,
	}, nil
}

func (d *BlobsDispatcher) downloadBlob(ctx context.Context, client AccountClient, req blobRequest) (interface{}, error) {
	if err := req.require(true); err != nil {
		return nil, err
	}
	download, err := client.DownloadBlob(ctx, req.containerName, req.blobName)
	if err != nil {
		return nil, err
	}
	content, err := streamToString(download.Body)
	if err != nil {
		return nil, err
	}
	return BlobResult{
		ContainerName: req.containerName,
		BlobName:      req.blobName,
		Content:       &content,
		ContentType:   download.ContentType,
		ContentLength: download.ContentLength,
	}, nil
}

func (d *BlobsDispatcher) deleteBlob(ctx context.Context, client AccountClient, req blobRequest) (interface{}, error) {
	if err := req.require(true); err != nil {
		return nil, err
	}
	if err := client.DeleteBlob(ctx, req.containerName, req.blobName); err != nil {
		return nil, err
	}
	return BlobResult{ContainerName: req.containerName, BlobName: req.blobName, Deleted: to.Ptr(true)}, nil
}
