package billing

import (
	"github.com/andy/jumplog/internal/domain"
)

// RateLookup returns the currently configured rate for a service
type RateLookup interface {
	Rate(service string) (float64, bool)
}

// RateTable is a RateLookup backed by a map
type RateTable map[string]float64

func (t RateTable) Rate(service string) (float64, bool) {
	r, ok := t[service]
	return r, ok
}

// NewRateTable builds a table from stored rates
func NewRateTable(rates []domain.ServiceRate) RateTable {
	t := make(RateTable, len(rates))
	for _, r := range rates {
		t[r.Service] = r.Rate
	}
	return t
}

// ResolveRate prices a service for a jump: the jump's own snapshot wins,
// then the configured rate, then zero. Invoicing and reporting both use it.
func ResolveRate(j domain.Jump, service string, rates RateLookup) float64 {
	if r, ok := j.SnapshotRate(service); ok {
		return r
	}
	if rates != nil {
		if r, ok := rates.Rate(service); ok {
			return r
		}
	}
	return 0
}

// SnapshotRates records the configured rate for every invoice item of a
// work jump that has no snapshot yet. Existing snapshot entries are kept.
func SnapshotRates(j domain.Jump, rates RateLookup) domain.Jump {
	out := j.Clone()
	if !out.WorkJump || rates == nil {
		return out
	}
	for _, service := range out.InvoiceItems {
		if _, ok := out.SnapshotRate(service); ok {
			continue
		}
		if r, ok := rates.Rate(service); ok {
			out.RateAtTimeOfJump = append(out.RateAtTimeOfJump, domain.ServiceRate{Service: service, Rate: r})
		}
	}
	return out
}
