package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/seenimoa/getvalue/pkg/models"
)

func TestMemoryPutGet(t *testing.T) {
	s := NewMemory()
	if _, err := s.Get("AAPL"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store = %v, want ErrNotFound", err)
	}

	c := models.NewCompany("AAPL", "Apple")
	s.Put(c)
	got, err := s.Get("AAPL")
	if err != nil || got != c {
		t.Fatalf("Get = %v, %v", got, err)
	}
}

func TestMemoryOverwriteOnReload(t *testing.T) {
	s := NewMemory()
	first := models.NewCompany("AAPL", "first")
	second := models.NewCompany("AAPL", "second")
	s.Put(first)
	s.Put(second)

	got, _ := s.Get("AAPL")
	if got != second {
		t.Errorf("Get after reload = %q, want the second load", got.CompanyName)
	}
	if n := len(s.Tickers()); n != 1 {
		t.Errorf("Tickers() has %d entries, want 1", n)
	}
}

func TestMemoryEvict(t *testing.T) {
	s := NewMemory()
	s.Put(models.NewCompany("MSFT", ""))

	if err := s.Evict("MSFT"); err != nil {
		t.Fatalf("Evict: %v", err)
	}
	if _, err := s.Get("MSFT"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Evict = %v, want ErrNotFound", err)
	}
	if err := s.Evict("MSFT"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Evict = %v, want ErrNotFound", err)
	}
}

func TestMemoryTickersSorted(t *testing.T) {
	s := NewMemory()
	for _, tk := range []string{"MSFT", "AAPL", "GOOG"} {
		s.Put(models.NewCompany(tk, ""))
	}
	got := fmt.Sprint(s.Tickers())
	if got != "[AAPL GOOG MSFT]" {
		t.Errorf("Tickers() = %s", got)
	}
}

func TestMemoryConcurrent(t *testing.T) {
	s := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tk := fmt.Sprintf("T%d", i%4)
			s.Put(models.NewCompany(tk, ""))
			_, _ = s.Get(tk)
			_ = s.Tickers()
		}(i)
	}
	wg.Wait()
	if n := len(s.Tickers()); n != 4 {
		t.Errorf("Tickers() has %d entries, want 4", n)
	}
}
