package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andy/jumplog/internal/billing"
	"github.com/andy/jumplog/internal/domain"
	"github.com/andy/jumplog/internal/repository"
	"github.com/rs/zerolog"
)

// CreateResult reports the outcome of CreateOrReview. When a draft
// already exists for the dropzone, Created is false and Invoice is that
// draft, returned for review instead of a new one.
type CreateResult struct {
	Invoice *domain.Invoice
	Created bool
}

// InvoiceService runs the billing state machine against the stores
type InvoiceService interface {
	// CreateOrReview bills the available services of the given jumps on a
	// new draft for the dropzone, or returns the dropzone's open draft
	CreateOrReview(ctx context.Context, dropZone string, jumpIDs []string) (*CreateResult, error)

	// Lock finalizes a draft and marks its services as invoiced
	Lock(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// Send marks a locked invoice as sent
	Send(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// MarkPaid marks a locked or sent invoice as paid
	MarkPaid(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// Reopen returns a locked or sent invoice to draft
	Reopen(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// DeleteOpen removes a draft and releases its services
	DeleteOpen(ctx context.Context, invoiceID string) error

	// Get resolves an invoice by ID or by invoice number
	Get(ctx context.Context, ref string) (*domain.Invoice, error)

	List(ctx context.Context, filter repository.InvoiceFilter) ([]*domain.Invoice, error)

	// History returns the audit trail of an invoice, oldest first
	History(ctx context.Context, invoiceID string) ([]*domain.InvoiceEvent, error)
}

// InvoiceOptions configures invoice numbering and line items
type InvoiceOptions struct {
	StartingNumber  int
	DefaultQuantity int
	Clock           Clock
}

type invoiceService struct {
	store repository.Store
	opts  InvoiceOptions
	log   zerolog.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(store repository.Store, opts InvoiceOptions, log zerolog.Logger) InvoiceService {
	return &invoiceService{
		store: store,
		opts:  opts,
		log:   log,
	}
}

func (s *invoiceService) CreateOrReview(ctx context.Context, dropZone string, jumpIDs []string) (*CreateResult, error) {
	dropZone = strings.TrimSpace(dropZone)
	if dropZone == "" {
		return nil, errors.New("dropzone is required")
	}

	var result *CreateResult
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		state, err := loadState(ctx, tx)
		if err != nil {
			return err
		}
		rates, err := loadRates(ctx, tx)
		if err != nil {
			return err
		}

		now := s.opts.Clock.now()
		next, tr, err := billing.CreateInvoice(state, billing.CreateRequest{
			DropZone:    dropZone,
			JumpIDs:     jumpIDs,
			Rates:       rates,
			StartNumber: s.opts.StartingNumber,
			Quantity:    s.opts.DefaultQuantity,
			Now:         now,
		})

		var conflict *billing.ConflictError
		if errors.As(err, &conflict) {
			existing := conflict.Existing
			result = &CreateResult{Invoice: &existing, Created: false}
			return nil
		}
		if err != nil {
			return err
		}

		if err := persist(ctx, tx, next, tr, now); err != nil {
			return err
		}
		result = &CreateResult{Invoice: tr.Invoice, Created: true}
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Str("drop_zone", dropZone).Msg("invoice not created")
		return nil, err
	}

	level := zerolog.InfoLevel
	if !result.Created {
		level = zerolog.WarnLevel
	}
	s.log.WithLevel(level).
		Str("invoice_id", result.Invoice.ID).
		Int("invoice_number", result.Invoice.InvoiceNumber).
		Str("drop_zone", result.Invoice.DropZone).
		Bool("created", result.Created).
		Msg("create invoice")

	return result, nil
}

func (s *invoiceService) Lock(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return s.transition(ctx, invoiceID, billing.LockInvoice)
}

func (s *invoiceService) Send(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return s.transition(ctx, invoiceID, billing.SendInvoice)
}

func (s *invoiceService) MarkPaid(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return s.transition(ctx, invoiceID, billing.MarkPaid)
}

func (s *invoiceService) Reopen(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return s.transition(ctx, invoiceID, billing.ReopenInvoice)
}

func (s *invoiceService) DeleteOpen(ctx context.Context, invoiceID string) error {
	_, err := s.transition(ctx, invoiceID, billing.DeleteOpenInvoice)
	return err
}

type transitionFunc func(billing.State, string, time.Time) (billing.State, billing.Transition, error)

// transition loads the state, applies op and persists the result in one
// transaction. The returned invoice is nil after a delete.
func (s *invoiceService) transition(ctx context.Context, invoiceID string, op transitionFunc) (*domain.Invoice, error) {
	var tr billing.Transition
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		state, err := loadState(ctx, tx)
		if err != nil {
			return err
		}

		now := s.opts.Clock.now()
		next, t, err := op(state, invoiceID, now)
		if err != nil {
			return err
		}
		if err := persist(ctx, tx, next, t, now); err != nil {
			return err
		}
		tr = t
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Str("invoice_id", invoiceID).Msg("invoice transition rejected")
		return nil, err
	}

	event := s.log.Info().
		Str("invoice_id", tr.InvoiceID).
		Str("action", string(tr.Action)).
		Str("from", string(tr.FromStatus)).
		Int("jumps", len(tr.JumpIDs))
	if tr.Invoice != nil {
		event = event.
			Int("invoice_number", tr.Invoice.InvoiceNumber).
			Str("drop_zone", tr.Invoice.DropZone)
	}
	event.Msg("invoice transition")

	return tr.Invoice, nil
}

func (s *invoiceService) Get(ctx context.Context, ref string) (*domain.Invoice, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")

	inv, err := s.store.Invoices().GetByID(ctx, ref)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if n, convErr := strconv.Atoi(ref); convErr == nil {
		inv, err = s.store.Invoices().GetByNumber(ctx, n)
		if err == nil {
			return inv, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", billing.ErrInvoiceNotFound, ref)
}

func (s *invoiceService) List(ctx context.Context, filter repository.InvoiceFilter) ([]*domain.Invoice, error) {
	return s.store.Invoices().List(ctx, filter)
}

func (s *invoiceService) History(ctx context.Context, invoiceID string) ([]*domain.InvoiceEvent, error) {
	return s.store.Events().ListByInvoice(ctx, invoiceID)
}
