package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andy/jumplog/internal/domain"
	"github.com/andy/jumplog/internal/repository"
	"github.com/rs/zerolog"
)

var ErrEmptyName = errors.New("name cannot be empty")

// SettingsService manages service rates and the name registries
type SettingsService interface {
	ListRates(ctx context.Context) ([]domain.ServiceRate, error)
	SetRate(ctx context.Context, service string, rate float64) error
	DeleteRate(ctx context.Context, service string) error

	ListNames(ctx context.Context, kind domain.RegistryKind) ([]string, error)
	AddName(ctx context.Context, kind domain.RegistryKind, name string) error

	// RenameName renames a registry entry and every jump that uses it. If
	// the new name already exists the two entries merge. Invoices keep the
	// name they were issued under. Returns the number of jumps updated.
	RenameName(ctx context.Context, kind domain.RegistryKind, from, to string) (int, error)
}

type settingsService struct {
	store repository.Store
	clock Clock
	log   zerolog.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(store repository.Store, clock Clock, log zerolog.Logger) SettingsService {
	return &settingsService{store: store, clock: clock, log: log}
}

func (s *settingsService) ListRates(ctx context.Context) ([]domain.ServiceRate, error) {
	return s.store.Rates().List(ctx)
}

// SetRate changes the configured rate. Jumps keep their snapshot prices,
// so only jumps saved afterwards see the new rate.
func (s *settingsService) SetRate(ctx context.Context, service string, rate float64) error {
	r := domain.ServiceRate{Service: strings.TrimSpace(service), Rate: rate}
	if err := r.Validate(); err != nil {
		return err
	}
	if err := s.store.Rates().Set(ctx, r); err != nil {
		return err
	}
	s.log.Info().Str("service", r.Service).Float64("rate", r.Rate).Msg("rate set")
	return nil
}

func (s *settingsService) DeleteRate(ctx context.Context, service string) error {
	return s.store.Rates().Delete(ctx, strings.TrimSpace(service))
}

func (s *settingsService) ListNames(ctx context.Context, kind domain.RegistryKind) ([]string, error) {
	return s.store.Registry().List(ctx, kind)
}

func (s *settingsService) AddName(ctx context.Context, kind domain.RegistryKind, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	return s.store.Registry().Add(ctx, kind, name)
}

func (s *settingsService) RenameName(ctx context.Context, kind domain.RegistryKind, from, to string) (int, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		return 0, ErrEmptyName
	}
	if from == to {
		return 0, nil
	}

	updated := 0
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		names, err := tx.Registry().List(ctx, kind)
		if err != nil {
			return err
		}
		if !domain.ContainsService(names, from) {
			return fmt.Errorf("%s %q: %w", kind, from, repository.ErrNotFound)
		}
		if err := tx.Registry().Remove(ctx, kind, from); err != nil {
			return err
		}
		if err := tx.Registry().Add(ctx, kind, to); err != nil {
			return err
		}

		jumps, err := tx.Jumps().List(ctx, repository.JumpFilter{})
		if err != nil {
			return err
		}
		now := s.clock.now()
		for _, j := range jumps {
			if !renameField(j, kind, from, to) {
				continue
			}
			j.UpdatedAt = now
			if err := tx.Jumps().Update(ctx, j); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info().
		Str("kind", string(kind)).
		Str("from", from).
		Str("to", to).
		Int("jumps", updated).
		Msg("registry entry renamed")
	return updated, nil
}

func renameField(j *domain.Jump, kind domain.RegistryKind, from, to string) bool {
	var field *string
	switch kind {
	case domain.RegistryDropZone:
		field = &j.DropZone
	case domain.RegistryAircraft:
		field = &j.Aircraft
	case domain.RegistryJumpType:
		field = &j.JumpType
	default:
		return false
	}
	if *field != from {
		return false
	}
	*field = to
	return true
}
