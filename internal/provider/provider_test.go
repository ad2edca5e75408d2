package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/seenimoa/getvalue/pkg/models"
)

// mockProvider implements the CompanySource interface for testing.
type mockProvider struct {
	BaseProvider
}

func newMockProvider(name string, creds ...ProviderCredential) *mockProvider {
	return &mockProvider{
		BaseProvider: NewBaseProvider(name, "Mock "+name, "https://example.com", creds),
	}
}

func (m *mockProvider) FetchCompany(ctx context.Context, symbol string, periods int) (*models.CompanyFinancials, error) {
	return models.NewCompany(symbol, m.Info().Name), nil
}

func (m *mockProvider) Ping(ctx context.Context) error { return nil }

// --- Registry Tests ---

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	p := newMockProvider("test-provider")

	if err := p.Init(nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := reg.Register(p); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := reg.Get("test-provider")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Info().Name != "test-provider" {
		t.Errorf("expected name test-provider, got %s", got.Info().Name)
	}
}

func TestRegistryGetNotFound(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("nonexistent")
	if err == nil {
		t.Fatal("expected error for nonexistent provider")
	}
	var nf *ErrProviderNotFound
	if !errors.As(err, &nf) {
		t.Errorf("expected ErrProviderNotFound, got %T", err)
	}
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("beta"))
	_ = reg.Register(newMockProvider("alpha"))

	list := reg.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(list))
	}
	// Should be sorted alphabetically.
	if list[0].Name != "alpha" || list[1].Name != "beta" {
		t.Errorf("unexpected order: %s, %s", list[0].Name, list[1].Name)
	}
}

func TestRegistryDefault(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Default(); err == nil {
		t.Fatal("empty registry should have no default")
	}

	_ = reg.Register(newMockProvider("fmp"))
	_ = reg.Register(newMockProvider("other"))

	p, err := reg.Default()
	if err != nil || p.Info().Name != "fmp" {
		t.Fatalf("Default = %v, %v; want fmp", p, err)
	}

	// Re-registering the default keeps it the default.
	_ = reg.Register(newMockProvider("fmp"))
	if p, _ = reg.Default(); p.Info().Name != "fmp" {
		t.Errorf("default after re-register = %s, want fmp", p.Info().Name)
	}
}

func TestRegisterEmptyName(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(newMockProvider("")); err == nil {
		t.Error("expected error for empty provider name")
	}
}

// --- Credentials ---

func TestBaseProviderInit(t *testing.T) {
	p := newMockProvider("fmp", ProviderCredential{Name: "api_key", Required: true, EnvVar: "FMP_API_KEY"})

	err := p.Init(map[string]string{})
	var ic *ErrInvalidCredentials
	if !errors.As(err, &ic) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if ic.Provider != "fmp" {
		t.Errorf("Provider = %q", ic.Provider)
	}

	if err := p.Init(map[string]string{"api_key": "k"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if p.Credential("api_key") != "k" {
		t.Errorf("Credential = %q", p.Credential("api_key"))
	}
}

func TestValidateParams(t *testing.T) {
	params := QueryParams{ParamSymbol: "AAPL", ParamPeriod: ""}
	if err := ValidateParams(params, []string{ParamSymbol}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := ValidateParams(params, []string{ParamSymbol, ParamPeriod})
	var mp *ErrMissingParam
	if !errors.As(err, &mp) || mp.Param != ParamPeriod {
		t.Errorf("expected missing %q, got %v", ParamPeriod, err)
	}
}
