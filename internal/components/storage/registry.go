package storage

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Azure/azure-mcp/internal/config"
	"github.com/Azure/azure-mcp/internal/registry"
	"github.com/Azure/azure-mcp/internal/tools"
)

func accountParam() mcp.ToolOption {
	return mcp.WithString("accountName",
		mcp.Description("Azure Storage account name"),
		mcp.Required(),
	)
}

func containerParam(description string) mcp.ToolOption {
	return mcp.WithString("containerName",
		mcp.Description(description),
		mcp.Required(),
	)
}

func blobParam(description string) mcp.ToolOption {
	return mcp.WithString("blobName",
		mcp.Description(description),
		mcp.Required(),
	)
}

func newStorageTool(name, description, title string, readOnly bool, opts ...mcp.ToolOption) mcp.Tool {
	all := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithTitleAnnotation(title),
		mcp.WithReadOnlyHintAnnotation(readOnly),
		mcp.WithOpenWorldHintAnnotation(true),
	}
	return mcp.NewTool(name, append(all, opts...)...)
}

// RegisterCreateContainerTool defines azure_create_container
func RegisterCreateContainerTool() mcp.Tool {
	return newStorageTool("azure_create_container",
		"Create a new container in an Azure Storage account", "Create Storage Container", false,
		mcp.WithDestructiveHintAnnotation(false),
		accountParam(),
		containerParam("Name of the container to create"),
	)
}

// RegisterDeleteContainerTool defines azure_delete_container
func RegisterDeleteContainerTool() mcp.Tool {
	return newStorageTool("azure_delete_container",
		"Delete a container from an Azure Storage account", "Delete Storage Container", false,
		mcp.WithDestructiveHintAnnotation(true),
		accountParam(),
		containerParam("Name of the container to delete"),
	)
}

// RegisterListContainersTool defines azure_list_containers
func RegisterListContainersTool() mcp.Tool {
	return newStorageTool("azure_list_containers",
		"List all containers in an Azure Storage account", "List Storage Containers", true,
		accountParam(),
	)
}

// RegisterListBlobsTool defines azure_list_blobs
func RegisterListBlobsTool() mcp.Tool {
	return newStorageTool("azure_list_blobs",
		"List all blobs in a container", "List Blobs", true,
		accountParam(),
		containerParam("Name of the container"),
	)
}

// RegisterUploadBlobTool defines azure_upload_blob
func RegisterUploadBlobTool() mcp.Tool {
	return newStorageTool("azure_upload_blob",
		"Upload a blob to a container in Azure Storage", "Upload Blob", false,
		mcp.WithDestructiveHintAnnotation(true),
		accountParam(),
		containerParam("Name of the container"),
		blobParam("Name of the blob to create or overwrite"),
		mcp.WithString("content",
			mcp.Description("Text content of the blob"),
			mcp.Required(),
		),
	)
}

// RegisterDownloadBlobTool defines azure_download_blob
func RegisterDownloadBlobTool() mcp.Tool {
	return newStorageTool("azure_download_blob",
		"Download a blob from a container in Azure Storage", "Download Blob", true,
		accountParam(),
		containerParam("Name of the container"),
		blobParam("Name of the blob to download"),
	)
}

// RegisterDeleteBlobTool defines azure_delete_blob
func RegisterDeleteBlobTool() mcp.Tool {
	return newStorageTool("azure_delete_blob",
		"Delete a blob from a container in Azure Storage", "Delete Blob", false,
		mcp.WithDestructiveHintAnnotation(true),
		accountParam(),
		containerParam("Name of the container"),
		blobParam("Name of the blob to delete"),
	)
}

// RegisterBlobsTool defines the azure_blobs dispatcher
func RegisterBlobsTool(readOnly bool) mcp.Tool {
	description := "Interact with Azure Blob Storage using DefaultAzureCredential"
	if readOnly {
		description += ". Only listContainers, listBlobs and downloadBlob are allowed at the readonly access level"
	}
	return newStorageTool("azure_blobs", description, "Azure Blob Storage", readOnly,
		mcp.WithString("operation",
			mcp.Description("Operation to perform"),
			mcp.Enum(BlobOperations...),
			mcp.Required(),
		),
		accountParam(),
		mcp.WithString("containerName",
			mcp.Description("Container name (required for every operation except listContainers)"),
		),
		mcp.WithString("blobName",
			mcp.Description("Blob name (required for uploadBlob, downloadBlob and deleteBlob)"),
		),
		mcp.WithString("content",
			mcp.Description("Content to upload (required for uploadBlob)"),
		),
	)
}

// RegisterTools adds the Blob Storage tools to reg
func RegisterTools(reg *registry.ToolRegistry, h *Handlers, d *BlobsDispatcher, cfg *config.ConfigData) {
	add := func(tool mcp.Tool, fn tools.ResourceHandlerFunc, readOnly bool) {
		reg.RegisterTool(tool, tools.CreateResourceHandler(fn, cfg), registry.CategoryStorage, readOnly)
	}

	add(RegisterCreateContainerTool(), h.CreateContainer, false)
	add(RegisterDeleteContainerTool(), h.DeleteContainer, false)
	add(RegisterListContainersTool(), h.ListContainers, true)
	add(RegisterListBlobsTool(), h.ListBlobs, true)
	add(RegisterUploadBlobTool(), h.UploadBlob, false)
	add(RegisterDownloadBlobTool(), h.DownloadBlob, true)
	add(RegisterDeleteBlobTool(), h.DeleteBlob, false)

	// The dispatcher gates its own mutating operations, so it is kept at every access level.
	reg.RegisterTool(RegisterBlobsTool(cfg.IsReadOnly()), tools.CreateResourceHandler(d, cfg), registry.CategoryStorage, true)
}
