// Package memstore is an in-memory repository.Store for tests. A
// transaction works on a deep copy of the data that replaces the
// original only when the transaction function succeeds.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/andy/jumplog/internal/domain"
	"github.com/andy/jumplog/internal/repository"
	"github.com/google/uuid"
)

type data struct {
	jumps    map[string]domain.Jump
	invoices map[string]domain.Invoice
	rates    map[string]float64
	registry map[domain.RegistryKind][]string
	settings map[string]string
	events   []domain.InvoiceEvent
}

func newData() *data {
	return &data{
		jumps:    make(map[string]domain.Jump),
		invoices: make(map[string]domain.Invoice),
		rates:    make(map[string]float64),
		registry: make(map[domain.RegistryKind][]string),
		settings: make(map[string]string),
	}
}

func (d *data) clone() *data {
	out := newData()
	for id, j := range d.jumps {
		out.jumps[id] = j.Clone()
	}
	for id, inv := range d.invoices {
		out.invoices[id] = inv.Clone()
	}
	for k, v := range d.rates {
		out.rates[k] = v
	}
	for k, v := range d.registry {
		out.registry[k] = append([]string(nil), v...)
	}
	for k, v := range d.settings {
		out.settings[k] = v
	}
	out.events = append([]domain.InvoiceEvent(nil), d.events...)
	return out
}

// Store is safe for use by one goroutine at a time
type Store struct {
	mu       sync.Mutex
	d        *data
	failures map[string]error
}

// New returns an empty store
func New() *Store {
	return &Store{d: newData(), failures: make(map[string]error)}
}

// FailOn makes the named repository method (for example "Events.Append")
// return err until cleared with a nil err.
func (s *Store) FailOn(method string, err error) {
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

func (s *Store) fail(method string) error {
	return s.failures[method]
}

func (s *Store) Jumps() repository.JumpRepository        { return &jumps{d: s.d, fail: s.fail} }
func (s *Store) Invoices() repository.InvoiceRepository  { return &invoices{d: s.d, fail: s.fail} }
func (s *Store) Rates() repository.RateRepository        { return &rates{d: s.d, fail: s.fail} }
func (s *Store) Registry() repository.RegistryRepository { return &registry{d: s.d, fail: s.fail} }
func (s *Store) Settings() repository.SettingsRepository { return &settings{d: s.d, fail: s.fail} }
func (s *Store) Events() repository.EventRepository      { return &events{d: s.d, fail: s.fail} }

func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.d.clone()
	if err := fn(&txStore{parent: s, d: work}); err != nil {
		return err
	}
	s.d = work
	return nil
}

func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d = newData()
	return nil
}

// txStore is the view handed to a transaction function
type txStore struct {
	parent *Store
	d      *data
}

func (t *txStore) Jumps() repository.JumpRepository { return &jumps{d: t.d, fail: t.parent.fail} }
func (t *txStore) Invoices() repository.InvoiceRepository {
	return &invoices{d: t.d, fail: t.parent.fail}
}
func (t *txStore) Rates() repository.RateRepository { return &rates{d: t.d, fail: t.parent.fail} }
func (t *txStore) Registry() repository.RegistryRepository {
	return &registry{d: t.d, fail: t.parent.fail}
}
func (t *txStore) Settings() repository.SettingsRepository {
	return &settings{d: t.d, fail: t.parent.fail}
}
func (t *txStore) Events() repository.EventRepository { return &events{d: t.d, fail: t.parent.fail} }

func (t *txStore) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(t)
}

func (t *txStore) Reset(ctx context.Context) error {
	fresh := newData()
	*t.d = *fresh
	return nil
}

type jumps struct {
	d    *data
	fail func(string) error
}

func (r *jumps) Create(ctx context.Context, jump *domain.Jump) error {
	if err := r.fail("Jumps.Create"); err != nil {
		return err
	}
	if _, ok := r.d.jumps[jump.ID]; ok {
		return fmt.Errorf("jump %s already exists", jump.ID)
	}
	for _, j := range r.d.jumps {
		if j.JumpNumber == jump.JumpNumber {
			return fmt.Errorf("jump number %d already exists", jump.JumpNumber)
		}
	}
	r.d.jumps[jump.ID] = jump.Clone()
	return nil
}

func (r *jumps) Update(ctx context.Context, jump *domain.Jump) error {
	if err := r.fail("Jumps.Update"); err != nil {
		return err
	}
	if _, ok := r.d.jumps[jump.ID]; !ok {
		return fmt.Errorf("jump %s: %w", jump.ID, repository.ErrNotFound)
	}
	r.d.jumps[jump.ID] = jump.Clone()
	return nil
}

func (r *jumps) Delete(ctx context.Context, id string) error {
	if err := r.fail("Jumps.Delete"); err != nil {
		return err
	}
	if _, ok := r.d.jumps[id]; !ok {
		return fmt.Errorf("jump %s: %w", id, repository.ErrNotFound)
	}
	delete(r.d.jumps, id)
	return nil
}

func (r *jumps) GetByID(ctx context.Context, id string) (*domain.Jump, error) {
	j, ok := r.d.jumps[id]
	if !ok {
		return nil, fmt.Errorf("jump %s: %w", id, repository.ErrNotFound)
	}
	out := j.Clone()
	return &out, nil
}

func (r *jumps) GetByNumber(ctx context.Context, number int) (*domain.Jump, error) {
	for _, j := range r.d.jumps {
		if j.JumpNumber == number {
			out := j.Clone()
			return &out, nil
		}
	}
	return nil, fmt.Errorf("jump #%d: %w", number, repository.ErrNotFound)
}

func (r *jumps) List(ctx context.Context, filter repository.JumpFilter) ([]*domain.Jump, error) {
	out := make([]*domain.Jump, 0, len(r.d.jumps))
	for _, j := range r.d.jumps {
		if filter.DropZone != "" && j.DropZone != filter.DropZone {
			continue
		}
		if filter.Status != "" && j.InvoiceStatus != filter.Status {
			continue
		}
		if filter.WorkOnly && !j.WorkJump {
			continue
		}
		if filter.From != nil && j.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && j.Date.After(*filter.To) {
			continue
		}
		c := j.Clone()
		out = append(out, &c)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].JumpNumber > out[b].JumpNumber })
	return out, nil
}

func (r *jumps) Numbers(ctx context.Context) ([]int, error) {
	out := make([]int, 0, len(r.d.jumps))
	for _, j := range r.d.jumps {
		out = append(out, j.JumpNumber)
	}
	sort.Ints(out)
	return out, nil
}

type invoices struct {
	d    *data
	fail func(string) error
}

func (r *invoices) Create(ctx context.Context, invoice *domain.Invoice) error {
	if err := r.fail("Invoices.Create"); err != nil {
		return err
	}
	if _, ok := r.d.invoices[invoice.ID]; ok {
		return fmt.Errorf("invoice %s already exists", invoice.ID)
	}
	r.d.invoices[invoice.ID] = invoice.Clone()
	return nil
}

func (r *invoices) Update(ctx context.Context, invoice *domain.Invoice) error {
	if err := r.fail("Invoices.Update"); err != nil {
		return err
	}
	stored, ok := r.d.invoices[invoice.ID]
	if !ok {
		return fmt.Errorf("invoice %s: %w", invoice.ID, repository.ErrNotFound)
	}
	// line items are immutable once written
	stored.Status = invoice.Status
	upd := invoice.Clone()
	stored.DateLocked = upd.DateLocked
	stored.DateSent = upd.DateSent
	stored.DatePaid = upd.DatePaid
	r.d.invoices[invoice.ID] = stored
	return nil
}

func (r *invoices) Delete(ctx context.Context, id string) error {
	if err := r.fail("Invoices.Delete"); err != nil {
		return err
	}
	if _, ok := r.d.invoices[id]; !ok {
		return fmt.Errorf("invoice %s: %w", id, repository.ErrNotFound)
	}
	delete(r.d.invoices, id)
	return nil
}

func (r *invoices) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	inv, ok := r.d.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice %s: %w", id, repository.ErrNotFound)
	}
	out := inv.Clone()
	return &out, nil
}

func (r *invoices) GetByNumber(ctx context.Context, number int) (*domain.Invoice, error) {
	for _, inv := range r.d.invoices {
		if inv.InvoiceNumber == number {
			out := inv.Clone()
			return &out, nil
		}
	}
	return nil, fmt.Errorf("invoice #%d: %w", number, repository.ErrNotFound)
}

func (r *invoices) List(ctx context.Context, filter repository.InvoiceFilter) ([]*domain.Invoice, error) {
	out := make([]*domain.Invoice, 0, len(r.d.invoices))
	for _, inv := range r.d.invoices {
		if filter.DropZone != "" && inv.DropZone != filter.DropZone {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		c := inv.Clone()
		out = append(out, &c)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].InvoiceNumber > out[b].InvoiceNumber })
	return out, nil
}

type rates struct {
	d    *data
	fail func(string) error
}

func (r *rates) List(ctx context.Context) ([]domain.ServiceRate, error) {
	out := make([]domain.ServiceRate, 0, len(r.d.rates))
	for service, rate := range r.d.rates {
		out = append(out, domain.ServiceRate{Service: service, Rate: rate})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Service < out[b].Service })
	return out, nil
}

func (r *rates) Set(ctx context.Context, rate domain.ServiceRate) error {
	if err := r.fail("Rates.Set"); err != nil {
		return err
	}
	r.d.rates[rate.Service] = rate.Rate
	return nil
}

func (r *rates) Delete(ctx context.Context, service string) error {
	if _, ok := r.d.rates[service]; !ok {
		return fmt.Errorf("rate %q: %w", service, repository.ErrNotFound)
	}
	delete(r.d.rates, service)
	return nil
}

type registry struct {
	d    *data
	fail func(string) error
}

func (r *registry) List(ctx context.Context, kind domain.RegistryKind) ([]string, error) {
	out := append([]string{}, r.d.registry[kind]...)
	sort.Strings(out)
	return out, nil
}

func (r *registry) Add(ctx context.Context, kind domain.RegistryKind, name string) error {
	if err := r.fail("Registry.Add"); err != nil {
		return err
	}
	r.d.registry[kind] = domain.Union(r.d.registry[kind], []string{name})
	return nil
}

func (r *registry) Remove(ctx context.Context, kind domain.RegistryKind, name string) error {
	r.d.registry[kind] = domain.Difference(r.d.registry[kind], []string{name})
	return nil
}

type settings struct {
	d    *data
	fail func(string) error
}

func (r *settings) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := r.d.settings[key]
	return v, ok, nil
}

func (r *settings) Set(ctx context.Context, key, value string) error {
	if err := r.fail("Settings.Set"); err != nil {
		return err
	}
	r.d.settings[key] = value
	return nil
}

func (r *settings) All(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(r.d.settings))
	for k, v := range r.d.settings {
		out[k] = v
	}
	return out, nil
}

type events struct {
	d    *data
	fail func(string) error
}

func (r *events) Append(ctx context.Context, event *domain.InvoiceEvent) error {
	if err := r.fail("Events.Append"); err != nil {
		return err
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	r.d.events = append(r.d.events, *event)
	return nil
}

func (r *events) List(ctx context.Context) ([]*domain.InvoiceEvent, error) {
	out := make([]*domain.InvoiceEvent, 0, len(r.d.events))
	for _, e := range r.d.events {
		c := e
		out = append(out, &c)
	}
	return out, nil
}

func (r *events) ListByInvoice(ctx context.Context, invoiceID string) ([]*domain.InvoiceEvent, error) {
	out := make([]*domain.InvoiceEvent, 0)
	for _, e := range r.d.events {
		if e.InvoiceID == invoiceID {
			c := e
			out = append(out, &c)
		}
	}
	return out, nil
}
