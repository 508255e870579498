package azureclient

import (
	"context"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpctx "github.com/Azure/azure-mcp/internal/ctx"
)

func TestStaticTokenCredential(t *testing.T) {
	cred := NewStaticTokenCredential("tok")
	token, err := cred.GetToken(context.Background(), policy.TokenRequestOptions{Scopes: []string{"https://management.azure.com/.default"}})
	require.NoError(t, err)
	assert.Equal(t, "tok", token.Token)
	assert.True(t, token.ExpiresOn.After(time.Now()))
}

func TestDefaultCredentialProvider_UsesContextToken(t *testing.T) {
	p := NewDefaultCredentialProvider()
	c := mcpctx.WithAzureToken(context.Background(), "from-header")

	cred, err := p.GetCredential(c)
	require.NoError(t, err)

	static, ok := cred.(*StaticTokenCredential)
	require.True(t, ok, "expected StaticTokenCredential, got %T", cred)
	assert.Equal(t, "from-header", static.token)
}

func TestClientOptions(t *testing.T) {
	opts := ARMClientOptions()
	assert.Contains(t, opts.Telemetry.ApplicationID, "azure-mcp")
}
