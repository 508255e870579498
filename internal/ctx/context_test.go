package ctx

import (
	"context"
	"testing"
)

func TestAzureTokenRoundTrip(t *testing.T) {
	c := WithAzureToken(context.Background(), "abc")
	token, ok := AzureTokenFrom(c)
	if !ok || token != "abc" {
		t.Fatalf("expected token abc, got %q (ok=%v)", token, ok)
	}
}

func TestWithAzureToken_EmptyIgnored(t *testing.T) {
	c := WithAzureToken(context.Background(), "")
	if _, ok := AzureTokenFrom(c); ok {
		t.Fatal("expected no token for empty input")
	}
}
