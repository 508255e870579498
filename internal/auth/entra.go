// Package auth validates Microsoft Entra ID bearer tokens for the HTTP transports.
package auth

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/Azure/azure-mcp/internal/config"
)

const minJWKSRefresh = 15 * time.Minute

// EntraValidator validates Microsoft Entra ID tokens against the tenant JWKS
type EntraValidator struct {
	clientID  string
	tenantID  string
	issuer    string
	jwksURL   string
	jwksCache *jwk.Cache
}

// Claims represents the JWT claims structure for Entra ID tokens
type Claims struct {
	jwt.RegisteredClaims
	TenantID          string   `json:"tid"`
	Scope             string   `json:"scp"`
	Roles             []string `json:"roles"`
	AppID             string   `json:"appid"`
	PreferredUsername string   `json:"preferred_username"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	ObjectID          string   `json:"oid"`
	UPN               string   `json:"upn"`
}

// NewEntraValidator creates a validator with an auto-refreshing JWKS cache
func NewEntraValidator(cfg *config.AuthConfig) (*EntraValidator, error) {
	if err := cfg.ValidateConfig(); err != nil {
		return nil, errors.Wrap(err, "invalid auth config")
	}

	jwksURL := cfg.GetJWKSURL()
	refresh := time.Duration(cfg.JWKSCacheTimeout/2) * time.Second
	if refresh < minJWKSRefresh {
		refresh = minJWKSRefresh
	}

	cache := jwk.NewCache(context.Background())
	if err := cache.Register(jwksURL, jwk.WithMinRefreshInterval(refresh)); err != nil {
		return nil, errors.Wrap(err, "failed to register JWKS cache")
	}

	return &EntraValidator{
		clientID:  cfg.EntraClientID,
		tenantID:  cfg.EntraTenantID,
		issuer:    cfg.GetIssuer(),
		jwksURL:   jwksURL,
		jwksCache: cache,
	}, nil
}

// ValidateToken verifies the signature and claims of tokenString
func (v *EntraValidator) ValidateToken(ctx context.Context, tokenString string) (*UserContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return v.signingKey(ctx, token)
	})
	if err != nil {
		return nil, errors.Wrap(err, "token validation failed")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if err := v.validateBasicClaims(claims); err != nil {
		return nil, err
	}

	return &UserContext{
		UserID:   v.getUserID(claims),
		Email:    v.getEmail(claims),
		Name:     claims.Name,
		TenantID: claims.TenantID,
		Scopes:   strings.Fields(claims.Scope),
	}, nil
}

func (v *EntraValidator) signingKey(ctx context.Context, token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, errors.Newf("unexpected signing method: %v", token.Header["alg"])
	}
	kid, ok := token.Header["kid"].(string)
	if !ok {
		return nil, errors.New("missing kid in token header")
	}

	keySet, err := v.jwksCache.Get(ctx, v.jwksURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get JWKS")
	}
	key, found := keySet.LookupKeyID(kid)
	if !found {
		return nil, errors.Newf("key %s not found in JWKS", kid)
	}

	var rawKey interface{}
	if err := key.Raw(&rawKey); err != nil {
		return nil, errors.Wrap(err, "failed to get raw key")
	}
	return rawKey, nil
}

// validateBasicClaims checks tenant, audience and issuer. Both the bare client
// ID and api://<client ID> are accepted as audience, and both v1.0 and v2.0
// issuers are accepted.
func (v *EntraValidator) validateBasicClaims(claims *Claims) error {
	if claims.TenantID != v.tenantID {
		return errors.Newf("invalid tenant ID: expected %s, got %s", v.tenantID, claims.TenantID)
	}

	if len(claims.Audience) == 0 {
		return errors.New("missing audience claim")
	}
	audiences := []string{v.clientID, fmt.Sprintf("api://%s", v.clientID)}
	if !slices.ContainsFunc(claims.Audience, func(aud string) bool { return slices.Contains(audiences, aud) }) {
		return errors.Newf("invalid audience: expected %v, got %v", audiences, []string(claims.Audience))
	}

	issuers := []string{v.issuer, fmt.Sprintf("https://sts.windows.net/%s/", v.tenantID)}
	if !slices.Contains(issuers, claims.Issuer) {
		return errors.Newf("invalid issuer: expected one of %v, got %s", issuers, claims.Issuer)
	}
	return nil
}

// getUserID prefers oid and falls back to sub
func (v *EntraValidator) getUserID(claims *Claims) string {
	if claims.ObjectID != "" {
		return claims.ObjectID
	}
	return claims.Subject
}

// getEmail prefers email, then upn, then preferred_username
func (v *EntraValidator) getEmail(claims *Claims) string {
	if claims.Email != "" {
		return claims.Email
	}
	if claims.UPN != "" {
		return claims.UPN
	}
	return claims.PreferredUsername
}
