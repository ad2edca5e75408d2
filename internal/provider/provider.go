// Package provider defines the abstraction over remote financial-statement
// sources. A CompanySource turns a ticker into a fully assembled company
// record; the registry routes loads to the configured source by name.
package provider

import (
	"context"
	"fmt"

	"github.com/seenimoa/getvalue/pkg/models"
)

// ProviderCredential describes a required credential for a provider.
type ProviderCredential struct {
	Name        string `json:"name"`        // e.g., "api_key"
	Description string `json:"description"` // e.g., "FMP API key from financialmodelingprep.com"
	Required    bool   `json:"required"`
	EnvVar      string `json:"env_var"` // environment variable name, e.g., "FMP_API_KEY"
}

// ProviderInfo holds metadata about a registered provider.
type ProviderInfo struct {
	Name        string               `json:"name"`        // e.g., "fmp"
	Description string               `json:"description"` // human-readable description
	Website     string               `json:"website"`     // e.g., "https://financialmodelingprep.com"
	Credentials []ProviderCredential `json:"credentials"`
}

// CompanySource is the interface that remote statement providers implement.
type CompanySource interface {
	// Info returns metadata about this provider.
	Info() ProviderInfo

	// Init sets credentials. Returns an error if a required credential is
	// missing.
	Init(credentials map[string]string) error

	// FetchCompany loads profile and statements for symbol and returns the
	// reconciled company with at most periods annual periods. A company the
	// source does not know is an error; missing statements are not.
	FetchCompany(ctx context.Context, symbol string, periods int) (*models.CompanyFinancials, error)

	// Ping verifies the provider's connectivity and credentials.
	Ping(ctx context.Context) error
}

// QueryParams is the generic query parameter map sent to a provider
// endpoint. Common keys:
//   - "symbol" : ticker symbol (e.g., "AAPL")
//   - "period" : reporting period ("annual", "quarter")
//   - "limit"  : max results
type QueryParams map[string]string

// QueryParamKey constants for commonly used query parameters.
const (
	ParamSymbol = "symbol"
	ParamPeriod = "period"
	ParamLimit  = "limit"
)

// Reporting period values for ParamPeriod.
const (
	PeriodAnnual  = "annual"
	PeriodQuarter = "quarter"
)

// ErrProviderNotFound is returned when a requested provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrMissingParam is returned when a required query parameter is missing.
type ErrMissingParam struct {
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// ErrInvalidCredentials is returned when provider credentials are invalid.
type ErrInvalidCredentials struct {
	Provider string
	Detail   string
}

func (e *ErrInvalidCredentials) Error() string {
	return fmt.Sprintf("invalid credentials for provider %q: %s", e.Provider, e.Detail)
}

// ValidateParams checks that all required parameters are present in params.
func ValidateParams(params QueryParams, required []string) error {
	for _, key := range required {
		if v, ok := params[key]; !ok || v == "" {
			return &ErrMissingParam{Param: key}
		}
	}
	return nil
}
