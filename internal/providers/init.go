// Package providers creates the concrete company sources and registers them
// with a provider registry.
package providers

import (
	"context"

	"github.com/seenimoa/getvalue/internal/config"
	"github.com/seenimoa/getvalue/internal/provider"
	"github.com/seenimoa/getvalue/internal/providers/fmp"
)

// RegisterAllTo registers every source whose credentials are configured.
// FMP is only registered when an API key is set.
func RegisterAllTo(reg *provider.Registry, cfg *config.Config) error {
	if cfg.FMP.APIKey == "" {
		return nil
	}
	fp := fmp.New(cfg.FMPOptions())
	if err := fp.Init(map[string]string{fmp.CredAPIKey: cfg.FMP.APIKey}); err != nil {
		return err
	}
	return reg.Register(fp)
}

// DefaultSource returns the registry's default source, or nil when none is
// registered so that only pasted input can be loaded.
func DefaultSource(reg *provider.Registry) provider.CompanySource {
	src, err := reg.Default()
	if err != nil {
		return nil
	}
	return src
}

// PingResult is the outcome of checking one registered source.
type PingResult struct {
	Name string `json:"name"`
	Err  error  `json:"-"`
}

// PingAll pings every registered source in name order.
func PingAll(ctx context.Context, reg *provider.Registry) []PingResult {
	var out []PingResult
	for _, info := range reg.List() {
		src, err := reg.Get(info.Name)
		if err == nil {
			err = src.Ping(ctx)
		}
		out = append(out, PingResult{Name: info.Name, Err: err})
	}
	return out
}
