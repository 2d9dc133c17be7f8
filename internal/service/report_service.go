package service

import (
	"context"
	"sort"
	"time"

	"github.com/andy/jumplog/internal/billing"
	"github.com/andy/jumplog/internal/domain"
	"github.com/andy/jumplog/internal/repository"
)

// DropZoneSummary is the money picture for one dropzone
type DropZoneSummary struct {
	DropZone    string
	Jumps       int
	WorkJumps   int
	Unbilled    float64 // available services priced by the rate resolver
	Draft       float64
	Outstanding float64 // locked and sent invoices
	Paid        float64
}

// Summary provides logbook and billing totals
type Summary struct {
	TotalJumps      int
	WorkJumps       int
	Cutaways        int
	FreefallSeconds int
	LastJump        *time.Time

	UnbilledJumps int
	Unbilled      float64
	Draft         float64
	Outstanding   float64
	Paid          float64

	ByDropZone []DropZoneSummary // sorted by name
}

// ReportService provides aggregations
type ReportService interface {
	Summary(ctx context.Context) (*Summary, error)

	// RevenueByMonth sums paid invoices by the month they were paid
	RevenueByMonth(ctx context.Context, year int) (map[time.Month]float64, error)
}

type reportService struct {
	store repository.Store
}

// NewReportService creates a new report service
func NewReportService(store repository.Store) ReportService {
	return &reportService{store: store}
}

func (s *reportService) Summary(ctx context.Context) (*Summary, error) {
	var state billing.State
	var rates billing.RateTable
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		if state, err = loadState(ctx, tx); err != nil {
			return err
		}
		rates, err = loadRates(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	byDZ := make(map[string]*DropZoneSummary)
	dz := func(name string) *DropZoneSummary {
		if d, ok := byDZ[name]; ok {
			return d
		}
		d := &DropZoneSummary{DropZone: name}
		byDZ[name] = d
		return d
	}

	for i := range state.Jumps {
		j := &state.Jumps[i]
		d := dz(j.DropZone)

		summary.TotalJumps++
		d.Jumps++
		summary.FreefallSeconds += j.FreefallSeconds
		if j.Cutaway {
			summary.Cutaways++
		}
		if summary.LastJump == nil || j.Date.After(*summary.LastJump) {
			date := j.Date
			summary.LastJump = &date
		}

		if !j.WorkJump {
			continue
		}
		summary.WorkJumps++
		d.WorkJumps++

		available := j.AvailableServices()
		if len(available) == 0 {
			continue
		}
		summary.UnbilledJumps++
		for _, service := range available {
			value := billing.ResolveRate(*j, service, rates)
			summary.Unbilled += value
			d.Unbilled += value
		}
	}

	for _, inv := range state.Invoices {
		d := dz(inv.DropZone)
		switch inv.Status {
		case domain.InvoiceStatusDraft:
			summary.Draft += inv.Total
			d.Draft += inv.Total
		case domain.InvoiceStatusLocked, domain.InvoiceStatusSent:
			summary.Outstanding += inv.Total
			d.Outstanding += inv.Total
		case domain.InvoiceStatusPaid:
			summary.Paid += inv.Total
			d.Paid += inv.Total
		}
	}

	summary.ByDropZone = make([]DropZoneSummary, 0, len(byDZ))
	for _, d := range byDZ {
		summary.ByDropZone = append(summary.ByDropZone, *d)
	}
	sort.Slice(summary.ByDropZone, func(a, b int) bool {
		return summary.ByDropZone[a].DropZone < summary.ByDropZone[b].DropZone
	})

	return summary, nil
}

func (s *reportService) RevenueByMonth(ctx context.Context, year int) (map[time.Month]float64, error) {
	invoices, err := s.store.Invoices().List(ctx, repository.InvoiceFilter{Status: domain.InvoiceStatusPaid})
	if err != nil {
		return nil, err
	}

	revenue := make(map[time.Month]float64)
	for m := time.January; m <= time.December; m++ {
		revenue[m] = 0
	}

	for _, inv := range invoices {
		paid := inv.DateCreated
		if inv.DatePaid != nil {
			paid = *inv.DatePaid
		}
		if paid.Year() == year {
			revenue[paid.Month()] += inv.Total
		}
	}
	return revenue, nil
}
