// Package store holds loaded company records keyed by ticker.
package store

import (
	"errors"
	"sort"

	"github.com/alphadose/haxmap"

	"github.com/seenimoa/getvalue/pkg/models"
)

// ErrNotFound is returned when no company is stored under a ticker.
var ErrNotFound = errors.New("company not in store")

// Store keeps the most recent load of each company. Put replaces any
// earlier record for the same ticker; no history is retained.
type Store interface {
	Get(ticker string) (*models.CompanyFinancials, error)
	Put(c *models.CompanyFinancials)
	Evict(ticker string) error
	Tickers() []string
}

// Memory is an in-process Store safe for concurrent use.
type Memory struct {
	m *haxmap.Map[string, *models.CompanyFinancials]
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{m: haxmap.New[string, *models.CompanyFinancials]()}
}

func (s *Memory) Get(ticker string) (*models.CompanyFinancials, error) {
	c, ok := s.m.Get(ticker)
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *Memory) Put(c *models.CompanyFinancials) {
	s.m.Set(c.Ticker, c)
}

func (s *Memory) Evict(ticker string) error {
	if _, ok := s.m.Get(ticker); !ok {
		return ErrNotFound
	}
	s.m.Del(ticker)
	return nil
}

// Tickers returns the stored tickers in sorted order.
func (s *Memory) Tickers() []string {
	var out []string
	s.m.ForEach(func(k string, _ *models.CompanyFinancials) bool {
		out = append(out, k)
		return true
	})
	sort.Strings(out)
	return out
}
