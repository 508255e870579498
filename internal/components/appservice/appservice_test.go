package appservice

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azure/azure-mcp/internal/components/common"
	"github.com/Azure/azure-mcp/internal/config"
	"github.com/Azure/azure-mcp/internal/registry"
)

type mockWebAppsClient struct {
	getFunc       func(ctx context.Context, resourceGroupName, name string) (armappservice.WebAppsClientGetResponse, error)
	getConfigFunc func(ctx context.Context, resourceGroupName, name string) (armappservice.WebAppsClientGetConfigurationResponse, error)
	pages         [][]*armappservice.Site
	listErr       error
	lifecycleErr  error
	calls         []string
}

func (m *mockWebAppsClient) Get(ctx context.Context, resourceGroupName string, name string, _ *armappservice.WebAppsClientGetOptions) (armappservice.WebAppsClientGetResponse, error) {
	m.calls = append(m.calls, "get:"+name)
	return m.getFunc(ctx, resourceGroupName, name)
}

func (m *mockWebAppsClient) GetConfiguration(ctx context.Context, resourceGroupName string, name string, _ *armappservice.WebAppsClientGetConfigurationOptions) (armappservice.WebAppsClientGetConfigurationResponse, error) {
	m.calls = append(m.calls, "config:"+name)
	return m.getConfigFunc(ctx, resourceGroupName, name)
}

func (m *mockWebAppsClient) NewListPager(_ *armappservice.WebAppsClientListOptions) *runtime.Pager[armappservice.WebAppsClientListResponse] {
	m.calls = append(m.calls, "list")
	page := 0
	return runtime.NewPager(runtime.PagingHandler[armappservice.WebAppsClientListResponse]{
		More: func(armappservice.WebAppsClientListResponse) bool {
			return page < len(m.pages)
		},
		Fetcher: func(ctx context.Context, _ *armappservice.WebAppsClientListResponse) (armappservice.WebAppsClientListResponse, error) {
			if m.listErr != nil {
				return armappservice.WebAppsClientListResponse{}, m.listErr
			}
			if page >= len(m.pages) {
				return armappservice.WebAppsClientListResponse{}, nil
			}
			resp := armappservice.WebAppsClientListResponse{
				WebAppCollection: armappservice.WebAppCollection{Value: m.pages[page]},
			}
			page++
			return resp, nil
		},
	})
}

func (m *mockWebAppsClient) Restart(ctx context.Context, resourceGroupName string, name string, _ *armappservice.WebAppsClientRestartOptions) (armappservice.WebAppsClientRestartResponse, error) {
	m.calls = append(m.calls, "restart:"+resourceGroupName+"/"+name)
	return armappservice.WebAppsClientRestartResponse{}, m.lifecycleErr
}

func (m *mockWebAppsClient) Start(ctx context.Context, resourceGroupName string, name string, _ *armappservice.WebAppsClientStartOptions) (armappservice.WebAppsClientStartResponse, error) {
	m.calls = append(m.calls, "start:"+resourceGroupName+"/"+name)
	return armappservice.WebAppsClientStartResponse{}, m.lifecycleErr
}

func (m *mockWebAppsClient) Stop(ctx context.Context, resourceGroupName string, name string, _ *armappservice.WebAppsClientStopOptions) (armappservice.WebAppsClientStopResponse, error) {
	m.calls = append(m.calls, "stop:"+resourceGroupName+"/"+name)
	return armappservice.WebAppsClientStopResponse{}, m.lifecycleErr
}

func newTestHandlers(mock *mockWebAppsClient) (*Handlers, *int, *string) {
	factoryCalls := 0
	var subscription string
	h := NewHandlers(func(ctx context.Context, subscriptionID string) (WebAppsClient, error) {
		factoryCalls++
		subscription = subscriptionID
		return mock, nil
	})
	return h, &factoryCalls, &subscription
}

func appParams3() map[string]interface{} {
	return map[string]interface{}{
		"subscriptionId":    "s1",
		"resourceGroupName": "rg1",
		"appName":           "app1",
	}
}

func TestHandlers_MissingFieldsNeverReachAzure(t *testing.T) {
	mock := &mockWebAppsClient{}
	h, factoryCalls, _ := newTestHandlers(mock)

	handlers := map[string]func(context.Context, map[string]interface{}, *config.ConfigData) (interface{}, error){
		"get":     h.GetApp,
		"config":  h.GetAppConfig,
		"list":    h.ListApps,
		"restart": h.RestartApp,
		"start":   h.StartApp,
		"stop":    h.StopApp,
	}

	for name, fn := range handlers {
		t.Run(name, func(t *testing.T) {
			result, err := fn(context.Background(), map[string]interface{}{}, nil)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, common.IsValidationError(err))
		})
	}

	assert.Equal(t, 0, *factoryCalls)
	assert.Empty(t, mock.calls)
}

func TestHandlers_ValidationOrder(t *testing.T) {
	h, _, _ := newTestHandlers(&mockWebAppsClient{})

	tests := []struct {
		name    string
		params  map[string]interface{}
		wantErr string
	}{
		{"missing resource group", map[string]interface{}{"subscriptionId": "s1", "appName": "a"}, msgResourceGroupRequired},
		{"missing app name", map[string]interface{}{"subscriptionId": "s1", "resourceGroupName": "rg1"}, msgAppNameRequired},
		{"empty app name", map[string]interface{}{"subscriptionId": "s1", "resourceGroupName": "rg1", "appName": ""}, msgAppNameRequired},
		{"missing subscription", map[string]interface{}{"resourceGroupName": "rg1", "appName": "a"}, msgSubscriptionRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.GetApp(context.Background(), tt.params, nil)
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestGetApp(t *testing.T) {
	mock := &mockWebAppsClient{
		getFunc: func(ctx context.Context, resourceGroupName, name string) (armappservice.WebAppsClientGetResponse, error) {
			assert.Equal(t, "rg1", resourceGroupName)
			return armappservice.WebAppsClientGetResponse{Site: armappservice.Site{
				Name:     to.Ptr(name),
				ID:       to.Ptr("/subscriptions/s1/resourceGroups/rg1/providers/Microsoft.Web/sites/app1"),
				Kind:     to.Ptr("app,linux"),
				Location: to.Ptr("westeurope"),
				Tags:     map[string]*string{"team": to.Ptr("web")},
				Properties: &armappservice.SiteProperties{
					State:           to.Ptr("Running"),
					HostNames:       []*string{to.Ptr("app1.azurewebsites.net")},
					DefaultHostName: to.Ptr("app1.azurewebsites.net"),
					Enabled:         to.Ptr(true),
					HTTPSOnly:       to.Ptr(true),
				},
			}}, nil
		},
	}
	h, _, subscription := newTestHandlers(mock)

	result, err := h.GetApp(context.Background(), appParams3(), nil)
	require.NoError(t, err)
	assert.Equal(t, "s1", *subscription)

	b, err := json.Marshal(result)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "app1", got["name"])
	assert.Equal(t, "Running", got["state"])
	assert.Equal(t, []interface{}{"app1.azurewebsites.net"}, got["hostNames"])
	assert.Equal(t, true, got["httpsOnly"])
	assert.NotContains(t, got, "tags", "tags are not part of the whitelisted fields")
}

func TestGetApp_SDKErrorIsRaised(t *testing.T) {
	mock := &mockWebAppsClient{
		getFunc: func(ctx context.Context, resourceGroupName, name string) (armappservice.WebAppsClientGetResponse, error) {
			return armappservice.WebAppsClientGetResponse{}, errors.New("ResourceNotFound")
		},
	}
	h, _, _ := newTestHandlers(mock)

	result, err := h.GetApp(context.Background(), appParams3(), nil)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "ResourceNotFound")
	assert.Contains(t, err.Error(), "app1")
}

const fullSiteConfig = `{
	"alwaysOn": true,
	"appSettings": [{"name": "MODE", "value": "prod"}],
	"autoHealEnabled": false,
	"connectionStrings": [{"name": "db", "connectionString": "Server=x", "type": "SQLAzure"}],
	"defaultDocuments": ["index.html"],
	"detailedErrorLoggingEnabled": false,
	"documentRoot": "/home/site",
	"ftpsState": "FtpsOnly",
	"handlerMappings": [{"extension": "php", "scriptProcessor": "php-cgi"}],
	"http20Enabled": true,
	"httpLoggingEnabled": true,
	"ipSecurityRestrictions": [{"ipAddress": "10.0.0.0/8", "action": "Allow", "priority": 100, "name": "vnet"}],
	"javaVersion": "17",
	"linuxFxVersion": "NODE|20-lts",
	"loadBalancing": "LeastRequests",
	"localMySqlEnabled": false,
	"logsDirectorySizeLimit": 35,
	"managedPipelineMode": "Integrated",
	"minTlsVersion": "1.2",
	"netFrameworkVersion": "v4.0",
	"nodeVersion": "20",
	"numberOfWorkers": 2,
	"phpVersion": "8.2",
	"pythonVersion": "3.12",
	"remoteDebuggingEnabled": false,
	"requestTracingEnabled": false,
	"scmType": "None",
	"use32BitWorkerProcess": false,
	"webSocketsEnabled": true,
	"windowsFxVersion": "DOCKER|nginx",
	"vnetName": "not-exposed",
	"publishingUsername": "$app1"
}`

func TestGetAppConfig_ExposesExactlyTheDocumentedKeys(t *testing.T) {
	var siteConfig armappservice.SiteConfig
	require.NoError(t, json.Unmarshal([]byte(fullSiteConfig), &siteConfig))

	mock := &mockWebAppsClient{
		getConfigFunc: func(ctx context.Context, resourceGroupName, name string) (armappservice.WebAppsClientGetConfigurationResponse, error) {
			return armappservice.WebAppsClientGetConfigurationResponse{
				SiteConfigResource: armappservice.SiteConfigResource{Properties: &siteConfig},
			}, nil
		},
	}
	h, _, _ := newTestHandlers(mock)

	result, err := h.GetAppConfig(context.Background(), appParams3(), nil)
	require.NoError(t, err)

	b, err := json.Marshal(result)
	require.NoError(t, err)

	var got struct {
		AppName       string                     `json:"appName"`
		Configuration map[string]json.RawMessage `json:"configuration"`
	}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "app1", got.AppName)

	keys := make([]string, 0, len(got.Configuration))
	for k := range got.Configuration {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	want := append([]string(nil), ConfigurationKeys...)
	sort.Strings(want)
	assert.Equal(t, want, keys)

	assert.JSONEq(t, `true`, string(got.Configuration["alwaysOn"]))
	assert.JSONEq(t, `"NODE|20-lts"`, string(got.Configuration["linuxFxVersion"]))
	assert.JSONEq(t, `"1.2"`, string(got.Configuration["minTlsVersion"]))
	assert.JSONEq(t, `2`, string(got.Configuration["numberOfWorkers"]))
	assert.JSONEq(t, `[{"name":"MODE","value":"prod"}]`, string(got.Configuration["appSettings"]))
}

func TestListApps_PreservesOrderAcrossPages(t *testing.T) {
	mock := &mockWebAppsClient{
		pages: [][]*armappservice.Site{
			{
				{Name: to.Ptr("a"), ID: to.Ptr("id-a"), Properties: &armappservice.SiteProperties{State: to.Ptr("Running")}},
				{Name: to.Ptr("b"), ID: to.Ptr("id-b")},
			},
			{
				nil,
				{Name: to.Ptr("c"), ID: to.Ptr("id-c"), Kind: to.Ptr("functionapp")},
			},
		},
	}
	h, _, _ := newTestHandlers(mock)

	result, err := h.ListApps(context.Background(), map[string]interface{}{"subscriptionId": "s1"}, nil)
	require.NoError(t, err)

	apps, ok := result.([]AppSummary)
	require.True(t, ok)
	require.Len(t, apps, 3)
	assert.Equal(t, "a", *apps[0].Name)
	assert.Equal(t, "Running", *apps[0].State)
	assert.Equal(t, "b", *apps[1].Name)
	assert.Equal(t, "c", *apps[2].Name)
	assert.Equal(t, "functionapp", *apps[2].Kind)
}

func TestListApps_EmptyIsArray(t *testing.T) {
	h, _, _ := newTestHandlers(&mockWebAppsClient{})

	result, err := h.ListApps(context.Background(), map[string]interface{}{"subscriptionId": "s1"}, nil)
	require.NoError(t, err)

	b, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestListApps_PageErrorIsRaised(t *testing.T) {
	h, _, _ := newTestHandlers(&mockWebAppsClient{listErr: errors.New("throttled")})

	_, err := h.ListApps(context.Background(), map[string]interface{}{"subscriptionId": "s1"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestLifecycle(t *testing.T) {
	tests := []struct {
		name       string
		call       func(h *Handlers) (interface{}, error)
		wantStatus string
		wantCall   string
	}{
		{"restart", func(h *Handlers) (interface{}, error) { return h.RestartApp(context.Background(), appParams3(), nil) }, "restarted", "restart:rg1/app1"},
		{"start", func(h *Handlers) (interface{}, error) { return h.StartApp(context.Background(), appParams3(), nil) }, "started", "start:rg1/app1"},
		{"stop", func(h *Handlers) (interface{}, error) { return h.StopApp(context.Background(), appParams3(), nil) }, "stopped", "stop:rg1/app1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockWebAppsClient{}
			h, _, _ := newTestHandlers(mock)

			result, err := tt.call(h)
			require.NoError(t, err)
			assert.Equal(t, LifecycleResult{Status: tt.wantStatus, AppName: "app1"}, result)
			assert.Equal(t, []string{tt.wantCall}, mock.calls)
		})
	}
}

func TestLifecycle_ErrorIsRaised(t *testing.T) {
	h, _, _ := newTestHandlers(&mockWebAppsClient{lifecycleErr: errors.New("Conflict")})

	_, err := h.StopApp(context.Background(), appParams3(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Conflict")
}

func TestFactoryErrorPropagates(t *testing.T) {
	h := NewHandlers(func(ctx context.Context, subscriptionID string) (WebAppsClient, error) {
		return nil, errors.New("no credential")
	})

	_, err := h.GetApp(context.Background(), appParams3(), nil)
	require.EqualError(t, err, "no credential")
}

func TestRegisterTools(t *testing.T) {
	reg := registry.NewToolRegistry()
	RegisterTools(reg, NewHandlers(nil), config.NewConfig())

	expected := map[string]struct {
		readOnly bool
		required []string
	}{
		"azure_apps_get":        {true, []string{"subscriptionId", "resourceGroupName", "appName"}},
		"azure_apps_get_config": {true, []string{"subscriptionId", "resourceGroupName", "appName"}},
		"azure_apps_list":       {true, []string{"subscriptionId"}},
		"azure_apps_restart":    {false, []string{"subscriptionId", "resourceGroupName", "appName"}},
		"azure_apps_start":      {false, []string{"subscriptionId", "resourceGroupName", "appName"}},
		"azure_apps_stop":       {false, []string{"subscriptionId", "resourceGroupName", "appName"}},
	}

	defs := reg.GetAllTools()
	require.Len(t, defs, len(expected))
	for _, def := range defs {
		want, ok := expected[def.Tool.Name]
		require.True(t, ok, "unexpected tool %s", def.Tool.Name)
		assert.Equal(t, want.readOnly, def.ReadOnly, def.Tool.Name)
		assert.Equal(t, registry.CategoryAppService, def.Category)
		assert.ElementsMatch(t, want.required, def.Tool.InputSchema.Required, def.Tool.Name)
		assert.NotEmpty(t, def.Tool.Description)
	}
}
