package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/jumplog/internal/billing"
	"github.com/andy/jumplog/internal/domain"
	"github.com/andy/jumplog/internal/repository"
)

// Clock returns the current time. Tests replace it for stable timestamps.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// loadState reads both stores into a billing.State
func loadState(ctx context.Context, tx repository.Store) (billing.State, error) {
	jumps, err := tx.Jumps().List(ctx, repository.JumpFilter{})
	if err != nil {
		return billing.State{}, err
	}
	invoices, err := tx.Invoices().List(ctx, repository.InvoiceFilter{})
	if err != nil {
		return billing.State{}, err
	}

	s := billing.State{
		Jumps:    make([]domain.Jump, 0, len(jumps)),
		Invoices: make([]domain.Invoice, 0, len(invoices)),
	}
	for _, j := range jumps {
		s.Jumps = append(s.Jumps, *j)
	}
	for _, inv := range invoices {
		s.Invoices = append(s.Invoices, *inv)
	}
	return s, nil
}

func loadRates(ctx context.Context, tx repository.Store) (billing.RateTable, error) {
	rates, err := tx.Rates().List(ctx)
	if err != nil {
		return nil, err
	}
	return billing.NewRateTable(rates), nil
}

// persist writes what a transition changed and records it in the audit
// trail. Only the invoice and the jumps named by the transition are
// written.
func persist(ctx context.Context, tx repository.Store, next billing.State, tr billing.Transition, at time.Time) error {
	switch {
	case tr.Deleted:
		if err := tx.Invoices().Delete(ctx, tr.InvoiceID); err != nil {
			return err
		}
	case tr.Action == billing.ActionCreate:
		if err := tx.Invoices().Create(ctx, tr.Invoice); err != nil {
			return err
		}
	default:
		if err := tx.Invoices().Update(ctx, tr.Invoice); err != nil {
			return err
		}
	}

	for _, id := range tr.JumpIDs {
		j, ok := next.Jump(id)
		if !ok {
			return fmt.Errorf("jump %s missing from state: %w", id, billing.ErrJumpNotFound)
		}
		if err := tx.Jumps().Update(ctx, &j); err != nil {
			return err
		}
	}

	event := domain.NewInvoiceEvent(tr.InvoiceID, string(tr.Action), tr.FromStatus, tr.ToStatus, at)
	return tx.Events().Append(ctx, event)
}
