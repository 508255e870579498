package appservice

import (
	"context"
	"encoding/json"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/cockroachdb/errors"

	"github.com/Azure/azure-mcp/internal/components/common"
	"github.com/Azure/azure-mcp/internal/config"
	"github.com/Azure/azure-mcp/internal/logger"
)

// Validation messages
const (
	msgSubscriptionRequired  = "Subscription ID is required for this operation."
	msgResourceGroupRequired = "Resource Group name is required for this operation."
	msgAppNameRequired       = "App Service name is required for this operation."
)

// ConfigurationKeys are the site settings exposed by azure_apps_get_config
var ConfigurationKeys = []string{
	"alwaysOn",
	"appSettings",
	"autoHealEnabled",
	"connectionStrings",
	"defaultDocuments",
	"detailedErrorLoggingEnabled",
	"documentRoot",
	"ftpsState",
	"handlerMappings",
	"http20Enabled",
	"httpLoggingEnabled",
	"ipSecurityRestrictions",
	"javaVersion",
	"linuxFxVersion",
	"loadBalancing",
	"localMySqlEnabled",
	"logsDirectorySizeLimit",
	"managedPipelineMode",
	"minTlsVersion",
	"netFrameworkVersion",
	"nodeVersion",
	"numberOfWorkers",
	"phpVersion",
	"pythonVersion",
	"remoteDebuggingEnabled",
	"requestTracingEnabled",
	"scmType",
	"use32BitWorkerProcess",
	"webSocketsEnabled",
	"windowsFxVersion",
}

// AppDetails is the result of azure_apps_get
type AppDetails struct {
	Name               *string                              `json:"name,omitempty"`
	ID                 *string                              `json:"id,omitempty"`
	State              *string                              `json:"state,omitempty"`
	HostNames          []*string                            `json:"hostNames,omitempty"`
	DefaultHostName    *string                              `json:"defaultHostName,omitempty"`
	Kind               *string                              `json:"kind,omitempty"`
	Location           *string                              `json:"location,omitempty"`
	Enabled            *bool                                `json:"enabled,omitempty"`
	AvailabilityState  *armappservice.SiteAvailabilityState `json:"availabilityState,omitempty"`
	SiteConfig         *armappservice.SiteConfig            `json:"siteConfig,omitempty"`
	UsageState         *armappservice.UsageState            `json:"usageState,omitempty"`
	RepositorySiteName *string                              `json:"repositorySiteName,omitempty"`
	HTTPSOnly          *bool                                `json:"httpsOnly,omitempty"`
}

// AppConfig is the result of azure_apps_get_config
type AppConfig struct {
	AppName       string                     `json:"appName"`
	Configuration map[string]json.RawMessage `json:"configuration"`
}

// AppSummary is one entry of azure_apps_list
type AppSummary struct {
	Name      *string   `json:"name,omitempty"`
	ID        *string   `json:"id,omitempty"`
	State     *string   `json:"state,omitempty"`
	HostNames []*string `json:"hostNames,omitempty"`
	Kind      *string   `json:"kind,omitempty"`
	Location  *string   `json:"location,omitempty"`
}

// LifecycleResult is the result of restart, start and stop
type LifecycleResult struct {
	Status  string `json:"status"`
	AppName string `json:"appName"`
}

// Handlers implements the App Service tools. Failures are returned as errors.
type Handlers struct {
	newClient ClientFactory
}

// NewHandlers creates the App Service handlers
func NewHandlers(factory ClientFactory) *Handlers {
	return &Handlers{newClient: factory}
}

type appTarget struct {
	subscriptionID string
	resourceGroup  string
	appName        string
}

func requireAppTarget(params map[string]interface{}) (appTarget, error) {
	var target appTarget
	var err error
	if target.subscriptionID, err = common.RequireString(params, "subscriptionId", msgSubscriptionRequired); err != nil {
		return target, err
	}
	if target.resourceGroup, err = common.RequireString(params, "resourceGroupName", msgResourceGroupRequired); err != nil {
		return target, err
	}
	if target.appName, err = common.RequireString(params, "appName", msgAppNameRequired); err != nil {
		return target, err
	}
	return target, nil
}

// GetApp handles azure_apps_get
func (h *Handlers) GetApp(ctx context.Context, params map[string]interface{}, _ *config.ConfigData) (interface{}, error) {
	target, err := requireAppTarget(params)
	if err != nil {
		return nil, err
	}

	client, err := h.newClient(ctx, target.subscriptionID)
	if err != nil {
		return nil, err
	}

	resp, err := client.Get(ctx, target.resourceGroup, target.appName, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get App Service %s", target.appName)
	}

	site := resp.Site
	details := AppDetails{
		Name:     site.Name,
		ID:       site.ID,
		Kind:     site.Kind,
		Location: site.Location,
	}
	if props := site.Properties; props != nil {
		details.State = props.State
		details.HostNames = props.HostNames
		details.DefaultHostName = props.DefaultHostName
		details.Enabled = props.Enabled
		details.AvailabilityState = props.AvailabilityState
		details.SiteConfig = props.SiteConfig
		details.UsageState = props.UsageState
		details.RepositorySiteName = props.RepositorySiteName
		details.HTTPSOnly = props.HTTPSOnly
	}
	return details, nil
}

// GetAppConfig handles azure_apps_get_config
func (h *Handlers) GetAppConfig(ctx context.Context, params map[string]interface{}, _ *config.ConfigData) (interface{}, error) {
	target, err := requireAppTarget(params)
	if err != nil {
		return nil, err
	}

	client, err := h.newClient(ctx, target.subscriptionID)
	if err != nil {
		return nil, err
	}

	resp, err := client.GetConfiguration(ctx, target.resourceGroup, target.appName, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get configuration of App Service %s", target.appName)
	}

	settings, err := common.PickJSONFields(resp.Properties, ConfigurationKeys)
	if err != nil {
		return nil, err
	}
	return AppConfig{AppName: target.appName, Configuration: settings}, nil
}

// ListApps handles azure_apps_list
func (h *Handlers) ListApps(ctx context.Context, params map[string]interface{}, _ *config.ConfigData) (interface{}, error) {
	subscriptionID, err := common.RequireString(params, "subscriptionId", msgSubscriptionRequired)
	if err != nil {
		return nil, err
	}

	client, err := h.newClient(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	apps := make([]AppSummary, 0)
	pager := client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to list App Services")
		}
		for _, site := range page.Value {
			if site == nil {
				continue
			}
			summary := AppSummary{
				Name:     site.Name,
				ID:       site.ID,
				Kind:     site.Kind,
				Location: site.Location,
			}
			if site.Properties != nil {
				summary.State = site.Properties.State
				summary.HostNames = site.Properties.HostNames
			}
			apps = append(apps, summary)
		}
	}

	logger.Debugf("Listed %d App Services in subscription %s", len(apps), subscriptionID)
	return apps, nil
}

// RestartApp handles azure_apps_restart
func (h *Handlers) RestartApp(ctx context.Context, params map[string]interface{}, _ *config.ConfigData) (interface{}, error) {
	return h.lifecycle(ctx, params, "restarted", func(ctx context.Context, client WebAppsClient, target appTarget) error {
		_, err := client.Restart(ctx, target.resourceGroup, target.appName, nil)
		return err
	})
}

// StartApp handles azure_apps_start
func (h *Handlers) StartApp(ctx context.Context, params map[string]interface{}, _ *config.ConfigData) (interface{}, error) {
	return h.lifecycle(ctx, params, "started", func(ctx context.Context, client WebAppsClient, target appTarget) error {
		_, err := client.Start(ctx, target.resourceGroup, target.appName, nil)
		return err
	})
}

// StopApp handles azure_apps_stop
func (h *Handlers) StopApp(ctx context.Context, params map[string]interface{}, _ *config.ConfigData) (interface{}, error) {
	return h.lifecycle(ctx, params, "stopped", func(ctx context.Context, client WebAppsClient, target appTarget) error {
		_, err := client.Stop(ctx, target.resourceGroup, target.appName, nil)
		return err
	})
}

func (h *Handlers) lifecycle(
	ctx context.Context,
	params map[string]interface{},
	status string,
	call func(context.Context, WebAppsClient, appTarget) error,
) (interface{}, error) {
	target, err := requireAppTarget(params)
	if err != nil {
		return nil, err
	}

	client, err := h.newClient(ctx, target.subscriptionID)
	if err != nil {
		return nil, err
	}

	logger.Debugf("App Service %s/%s: requesting %s", target.resourceGroup, target.appName, status)
	if err := call(ctx, client, target); err != nil {
		return nil, errors.Wrapf(err, "App Service %s could not be %s", target.appName, status)
	}

	return LifecycleResult{Status: status, AppName: target.appName}, nil
}
