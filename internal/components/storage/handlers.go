// Package storage implements the Blob Storage tools: one tool per operation,
// which report failures inside their results, and the azure_blobs dispatcher,
// which raises them.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/cockroachdb/errors"

	"github.com/Azure/azure-mcp/internal/components/common"
	"github.com/Azure/azure-mcp/internal/config"
	"github.com/Azure/azure-mcp/internal/logger"
)

const (
	msgAccountRequired   = "Storage account name is required for this operation."
	msgContainerRequired = "Container name is required for this operation."
	msgBlobRequired      = "Blob name is required for this operation."
	msgContentRequired   = "Content is required for this operation."

	msgContainerExists  = "Container already exists"
	msgContainerMissing = "Container does not exist"
	msgBlobMissing      = "Blob does not exist"
)

// Failure holds the error of a per-operation tool and, unless hidden, the
// stack recorded when it was raised.
type Failure struct {
	Error string `json:"error,omitempty"`
	Stack string `json:"stack,omitempty"`
}

// ContainerResult is the result of create and delete container
type ContainerResult struct {
	ContainerName string     `json:"containerName"`
	Created       *bool      `json:"created,omitempty"`
	Deleted       *bool      `json:"deleted,omitempty"`
	RequestID     *string    `json:"requestId,omitempty"`
	Date          *time.Time `json:"date,omitempty"`
	Failure
}

// ContainerList is the result of azure_list_containers
type ContainerList struct {
	Containers []ContainerItem `json:"containers"`
	Failure
}

// BlobSummary is one entry of a blob listing with service gaps filled in
type BlobSummary struct {
	Name          string    `json:"name"`
	ContentType   string    `json:"contentType"`
	ContentLength int64     `json:"contentLength"`
	LastModified  time.Time `json:"lastModified"`
	BlobType      string    `json:"blobType"`
}

// BlobList is the result of azure_list_blobs
type BlobList struct {
	ContainerName string        `json:"containerName"`
	Blobs         []BlobSummary `json:"blobs"`
	Failure
}

// BlobResult is the result of upload, download and delete blob
type BlobResult struct {
	ContainerName string     `json:"containerName"`
	BlobName      string     `json:"blobName"`
	ETag          *string    `json:"etag,omitempty"`
	LastModified  *time.Time `json:"lastModified,omitempty"`
	RequestID     *string    `json:"requestId,omitempty"`
	Content       *string    `json:"content,omitempty"`
	ContentType   *string    `json:"contentType,omitempty"`
	ContentLength *int64     `json:"contentLength,omitempty"`
	Deleted       *bool      `json:"deleted,omitempty"`
	Failure
}

// Handlers implements the Blob Storage tools
type Handlers struct {
	newClient ClientFactory
}

// NewHandlers creates the Blob Storage handlers
func NewHandlers(factory ClientFactory) *Handlers {
	return &Handlers{newClient: factory}
}

// caught converts err into a Failure carrying prefix
func caught(cfg *config.ConfigData, prefix string, err error) Failure {
	logger.Debugf("Blob Storage call failed: %v", err)
	f := Failure{Error: prefix + common.ErrorMessage(err)}
	if cfg == nil || !cfg.HideStackTraces {
		f.Stack = common.StackTrace(err)
	}
	return f
}

var requiredMessages = map[string]string{
	"accountName":   msgAccountRequired,
	"containerName": msgContainerRequired,
	"blobName":      msgBlobRequired,
}

// require validates the named fields in order and stops at the first missing one
func require(params map[string]interface{}, keys ...string) error {
	for _, key := range keys {
		if _, err := common.RequireString(params, key, requiredMessages[key]); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handlers) account(ctx context.Context, params map[string]interface{}) (AccountClient, error) {
	if err := require(params, "accountName"); err != nil {
		return nil, err
	}
	return h.newClient(ctx, common.GetString(params, "accountName"))
}

// containerTarget builds the account client and checks the container exists.
// params must already be validated.
func (h *Handlers) containerTarget(ctx context.Context, params map[string]interface{}) (AccountClient, bool, error) {
	client, err := h.account(ctx, params)
	if err != nil {
		return nil, false, err
	}

	containerName := common.GetString(params, "containerName")
	logger.Debugf("Checking if container exists: %s", containerName)
	exists, err := client.ContainerExists(ctx, containerName)
	if err != nil {
		return nil, false, errors.WithStack(err)
	}
	return client, exists, nil
}

// CreateContainer handles azure_create_container
func (h *Handlers) CreateContainer(ctx context.Context, params map[string]interface{}, cfg *config.ConfigData) (interface{}, error) {
	containerName := common.GetString(params, "containerName")
	fail := func(err error) (interface{}, error) {
		return ContainerResult{ContainerName: containerName, Created: to.Ptr(false), Failure: caught(cfg, "Error creating container: ", err)}, nil
	}

	if err := require(params, "accountName", "containerName"); err != nil {
		return fail(err)
	}
	client, exists, err := h.containerTarget(ctx, params)
	if err != nil {
		return fail(err)
	}
	if exists {
		return ContainerResult{ContainerName: containerName, Created: to.Ptr(false), Failure: Failure{Error: msgContainerExists}}, nil
	}

	info, err := client.CreateContainer(ctx, containerName)
	if err != nil {
		return fail(err)
	}
	logger.Debugf("Container created: %s", containerName)
	return ContainerResult{ContainerName: containerName, Created: to.Ptr(true), RequestID: info.RequestID, Date: info.Date}, nil
}

// DeleteContainer handles azure_delete_container
func (h *Handlers) DeleteContainer(ctx context.Context, params map[string]interface{}, cfg *config.ConfigData) (interface{}, error) {
	containerName := common.GetString(params, "containerName")
	fail := func(err error) (interface{}, error) {
		return ContainerResult{ContainerName: containerName, Deleted: to.Ptr(false), Failure: caught(cfg, "Error deleting container: ", err)}, nil
	}

	if err := require(params, "accountName", "containerName"); err != nil {
		return fail(err)
	}
	client, exists, err := h.containerTarget(ctx, params)
	if err != nil {
		return fail(err)
	}
	if !exists {
		return ContainerResult{ContainerName: containerName, Failure: Failure{Error: msgContainerMissing}}, nil
	}

	info, err := client.DeleteContainer(ctx, containerName)
	if err != nil {
		return fail(err)
	}
	logger.Debugf("Container deleted: %s", containerName)
	return ContainerResult{ContainerName: containerName, Deleted: to.Ptr(true), RequestID: info.RequestID, Date: info.Date}, nil
}

// ListContainers handles azure_list_containers
func (h *Handlers) ListContainers(ctx context.Context, params map[string]interface{}, cfg *config.ConfigData) (interface{}, error) {
	fail := func(err error) (interface{}, error) {
		return ContainerList{Containers: []ContainerItem{}, Failure: caught(cfg, "Error listing containers: ", err)}, nil
	}

	client, err := h.account(ctx, params)
	if err != nil {
		return fail(err)
	}
	containers, err := client.ListContainers(ctx)
	if err != nil {
		return fail(err)
	}
	logger.Debugf("Found %d containers", len(containers))
	return ContainerList{Containers: containers}, nil
}

// ListBlobs handles azure_list_blobs
func (h *Handlers) ListBlobs(ctx context.Context, params map[string]interface{}, cfg *config.ConfigData) (interface{}, error) {
	containerName := common.GetString(params, "containerName")
	fail := func(err error) (interface{}, error) {
		return BlobList{ContainerName: containerName, Blobs: []BlobSummary{}, Failure: caught(cfg, "Error listing blobs: ", err)}, nil
	}

	if err := require(params, "accountName", "containerName"); err != nil {
		return fail(err)
	}
	client, exists, err := h.containerTarget(ctx, params)
	if err != nil {
		return fail(err)
	}
	if !exists {
		return BlobList{ContainerName: containerName, Blobs: []BlobSummary{}, Failure: Failure{Error: msgContainerMissing}}, nil
	}

	items, err := client.ListBlobs(ctx, containerName, 0)
	if err != nil {
		return fail(err)
	}
	blobs := summarizeBlobs(items)
	logger.Debugf("Found %d blobs in container %s", len(blobs), containerName)
	return BlobList{ContainerName: containerName, Blobs: blobs}, nil
}

// summarizeBlobs fills in the fields the service left out
func summarizeBlobs(items []BlobItem) []BlobSummary {
	blobs := make([]BlobSummary, 0, len(items))
	for _, item := range items {
		contentType := common.Deref(item.ContentType)
		if contentType == "" {
			contentType = "unknown"
		}
		blobType := common.Deref(item.BlobType)
		if blobType == "" {
			blobType = "unknown"
		}
		blobs = append(blobs, BlobSummary{
			Name:          common.Deref(item.Name),
			ContentType:   contentType,
			ContentLength: common.DerefOr(item.ContentLength, 0),
			LastModified:  common.TimeOrNow(item.LastModified),
			BlobType:      blobType,
		})
	}
	return blobs
}

// blobTarget checks the container and, when checkBlob is set, the blob exist.
// missing names the absent resource.
func (h *Handlers) blobTarget(ctx context.Context, params map[string]interface{}, checkBlob bool) (client AccountClient, missing string, err error) {
	client, exists, err := h.containerTarget(ctx, params)
	if err != nil {
		return nil, "", err
	}
	if !exists {
		return nil, msgContainerMissing, nil
	}
	if !checkBlob {
		return client, "", nil
	}

	containerName := common.GetString(params, "containerName")
	blobName := common.GetString(params, "blobName")
	logger.Debugf("Checking if blob exists: %s", blobName)
	exists, err = client.BlobExists(ctx, containerName, blobName)
	if err != nil {
		return nil, "", errors.WithStack(err)
	}
	if !exists {
		return nil, msgBlobMissing, nil
	}
	return client, "", nil
}

// UploadBlob handles azure_upload_blob
func (h *Handlers) UploadBlob(ctx context.Context, params map[string]interface{}, cfg *config.ConfigData) (interface{}, error) {
	containerName := common.GetString(params, "containerName")
	blobName := common.GetString(params, "blobName")
	result := BlobResult{ContainerName: containerName, BlobName: blobName}
	fail := func(err error) (interface{}, error) {
		result.Failure = caught(cfg, "Error uploading blob: ", err)
		return result, nil
	}

	if err := require(params, "accountName", "containerName", "blobName"); err != nil {
		return fail(err)
	}
	content, ok := params["content"].(string)
	if !ok {
		return fail(common.NewValidationError("content", msgContentRequired))
	}

	client, missing, err := h.blobTarget(ctx, params, false)
	if err != nil {
		return fail(err)
	}
	if missing != "" {
		result.Error = missing
		return result, nil
	}

	logger.Debugf("Uploading blob %s, size: %d bytes", blobName, len(content))
	info, err := client.UploadBlob(ctx, containerName, blobName, content)
	if err != nil {
		return fail(err)
	}
	result.ETag = info.ETag
	result.LastModified = info.LastModified
	result.RequestID = info.RequestID
	return result, nil
}

// DownloadBlob handles azure_download_blob
func (h *Handlers) DownloadBlob(ctx context.Context, params map[string]interface{}, cfg *config.ConfigData) (interface{}, error) {
	result := BlobResult{
		ContainerName: common.GetString(params, "containerName"),
		BlobName:      common.GetString(params, "blobName"),
	}
	fail := func(err error) (interface{}, error) {
		result.Failure = caught(cfg, "Error downloading blob: ", err)
		return result, nil
	}

	if err := require(params, "accountName", "containerName", "blobName"); err != nil {
		return fail(err)
	}
	client, missing, err := h.blobTarget(ctx, params, true)
	if err != nil {
		return fail(err)
	}
	if missing != "" {
		result.Error = missing
		return result, nil
	}

	download, err := client.DownloadBlob(ctx, result.ContainerName, result.BlobName)
	if err != nil {
		return fail(err)
	}
	content, err := streamToString(download.Body)
	if err != nil {
		return fail(err)
	}
	logger.Debugf("Blob content retrieved, size: %d bytes", len(content))

	result.Content = &content
	result.ContentType = download.ContentType
	result.ContentLength = download.ContentLength
	return result, nil
}

// DeleteBlob handles azure_delete_blob
func (h *Handlers) DeleteBlob(ctx context.Context, params map[string]interface{}, cfg *config.ConfigData) (interface{}, error) {
	result := BlobResult{
		ContainerName: common.GetString(params, "containerName"),
		BlobName:      common.GetString(params, "blobName"),
	}
	fail := func(err error) (interface{}, error) {
		result.Deleted = to.Ptr(false)
		result.Failure = caught(cfg, "Error deleting blob: ", err)
		return result, nil
	}

	if err := require(params, "accountName", "containerName", "blobName"); err != nil {
		return fail(err)
	}
	client, missing, err := h.blobTarget(ctx, params, true)
	if err != nil {
		return fail(err)
	}
	if missing != "" {
		result.Error = missing
		return result, nil
	}

	if err := client.DeleteBlob(ctx, result.ContainerName, result.BlobName); err != nil {
		return fail(err)
	}
	result.Deleted = to.Ptr(true)
	return result, nil
}

// streamToString reads body to the end as UTF-8 and closes it. A nil body is empty.
func streamToString(body io.ReadCloser) (string, error) {
	if body == nil {
		return "", nil
	}
	defer body.Close()

	b, err := io.ReadAll(body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read blob content")
	}
	return string(b), nil
}
