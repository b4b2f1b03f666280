package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthType identifies how a provider authenticates upstream calls.
type AuthType string

const (
	AuthAPIKeyHeader AuthType = "api_key_header"
	AuthAPIKeyQuery  AuthType = "api_key_query"
	AuthHTTPBasic    AuthType = "http_basic"
	AuthOAuth2       AuthType = "oauth2"
	AuthCertificate  AuthType = "cert_auth"
	AuthCustom       AuthType = "custom"
)

// ValidAuthType reports whether t is a recognized auth type.
func ValidAuthType(t AuthType) bool {
	switch t {
	case AuthAPIKeyHeader, AuthAPIKeyQuery, AuthHTTPBasic, AuthOAuth2, AuthCertificate, AuthCustom:
		return true
	}
	return false
}

// Provider represents a configured upstream racing data provider.
// Name is unique; lower Priority wins, ties broken by CreatedAt.
type Provider struct {
	ID                     uuid.UUID `json:"id"`
	Name                   string    `json:"name"`
	BaseURL                string    `json:"base_url"`
	AuthType               AuthType  `json:"auth_type"`
	RateLimitRequests      *int      `json:"rate_limit_requests,omitempty"`
	RateLimitWindowSeconds *int      `json:"rate_limit_window_seconds,omitempty"`
	CloudflareTunnel       bool      `json:"cloudflare_tunnel"`
	Enabled                bool      `json:"enabled"`
	Priority               int       `json:"priority"`
	CreatedAt              time.Time `json:"created_at"`
}

// providerNamespace is the fixed UUID namespace for provider id derivation (v1).
// Never change this value: credential bundles and raw records are keyed off ids
// derived under it.
var providerNamespace = uuid.MustParse("b5f2c1d4-7a3e-4f60-9c8b-2d1e5a9f0c47")

// DeriveProviderID maps a provider name to its stable id.
// This is the single derivation rule shared by registration, credential lookup
// and intake attribution - do not reimplement it at call sites.
func DeriveProviderID(name string) uuid.UUID {
	return uuid.NewSHA1(providerNamespace, []byte(name))
}
