package azureclient

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// StaticTokenCredential serves a bearer token handed over by the caller.
// The token is used for every scope; Azure rejects it if the audience does not match.
type StaticTokenCredential struct {
	token string
}

func NewStaticTokenCredential(token string) *StaticTokenCredential {
	return &StaticTokenCredential{
		token: token,
	}
}

func (c *StaticTokenCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{
		Token:     c.token,
		ExpiresOn: time.Now().Add(1 * time.Hour),
	}, nil
}
