// Package tenant resolves which backend database a request's tenant-scoped
// operations should target: a user's bring-your-own-database override when
// one is fully configured, otherwise the platform's shared default.
package tenant

import "errors"

// ErrMissingConfiguration means neither an override nor a complete default
// credential pair is available. The request must not proceed with a partial
// credential.
var ErrMissingConfiguration = errors.New("missing tenant database configuration")

// Credentials is one (endpoint, key) pair for a tenant database target.
type Credentials struct {
	Endpoint string `json:"endpoint"`
	Key      string `json:"-"`
}

// Complete reports whether both fields are non-empty.
func (c Credentials) Complete() bool {
	return c.Endpoint != "" && c.Key != ""
}

// Source labels where a resolved credential came from.
type Source string

const (
	SourcePreferences Source = "preferences"
	SourceCookie      Source = "cookie"
	SourcePlatform    Source = "platform"
)

// Resolve picks the single pair for the current request. An override takes
// total precedence only when both of its fields are present; a partial
// override falls back fully to the default — fields are never mixed.
func Resolve(override, fallback Credentials) (Credentials, error) {
	if override.Complete() {
		return override, nil
	}
	if fallback.Complete() {
		return fallback, nil
	}
	return Credentials{}, ErrMissingConfiguration
}

// ResolveChain applies Resolve across an ordered list of candidates: the
// first complete pair wins. Used to layer preference overrides over cookie
// overrides over the platform default.
func ResolveChain(candidates ...Credentials) (Credentials, error) {
	for _, c := range candidates {
		if c.Complete() {
			return c, nil
		}
	}
	return Credentials{}, ErrMissingConfiguration
}
