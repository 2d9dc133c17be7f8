package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/andy/jumplog/internal/billing"
	"github.com/andy/jumplog/internal/domain"
	"github.com/andy/jumplog/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrDuplicateJumpNumber = errors.New("jump number already in use")
	ErrInvalidJumpNumber   = errors.New("jump number must be positive")
)

// JumpService manages the logbook
type JumpService interface {
	// Save creates a jump when editingID is empty, otherwise applies the
	// edit to the stored jump keeping its billing state
	Save(ctx context.Context, jump *domain.Jump, editingID string) (*domain.Jump, error)

	// Delete removes a jump. Invoices that billed it are left as they are.
	Delete(ctx context.Context, id string) error

	// Get resolves a jump by ID or by jump number
	Get(ctx context.Context, ref string) (*domain.Jump, error)

	List(ctx context.Context, filter repository.JumpFilter) ([]*domain.Jump, error)

	// NextJumpNumber returns the number a new jump would get
	NextJumpNumber(ctx context.Context) (int, error)

	CurrentJumpNumber(ctx context.Context) (int, error)
	SetCurrentJumpNumber(ctx context.Context, n int) error

	// Available lists work jumps at a dropzone that a new invoice could bill
	Available(ctx context.Context, dropZone string) ([]*domain.Jump, error)

	// Import stores externally logged jumps as settled. Jumps without a
	// number are numbered in order.
	Import(ctx context.Context, jumps []domain.Jump) (int, error)
}

type jumpService struct {
	store repository.Store
	clock Clock
	log   zerolog.Logger
}

// NewJumpService creates a new jump service
func NewJumpService(store repository.Store, clock Clock, log zerolog.Logger) JumpService {
	return &jumpService{
		store: store,
		clock: clock,
		log:   log,
	}
}

func (s *jumpService) Save(ctx context.Context, jump *domain.Jump, editingID string) (*domain.Jump, error) {
	var saved domain.Jump
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		now := s.clock.now()

		var j domain.Jump
		if editingID != "" {
			existing, err := tx.Jumps().GetByID(ctx, editingID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("%w: %s", billing.ErrJumpNotFound, editingID)
				}
				return err
			}
			j = billing.MergeEdit(*existing, *jump)
		} else {
			j = billing.ResetBilling(*jump)
			j.ID = uuid.NewString()
			j.CreatedAt = now
		}
		j.DropZone = strings.TrimSpace(j.DropZone)
		j.Aircraft = strings.TrimSpace(j.Aircraft)
		j.JumpType = strings.TrimSpace(j.JumpType)
		j.UpdatedAt = now

		if j.JumpNumber == 0 && editingID == "" {
			n, err := allocateJumpNumber(ctx, tx)
			if err != nil {
				return err
			}
			j.JumpNumber = n
		}

		rates, err := loadRates(ctx, tx)
		if err != nil {
			return err
		}
		j = billing.SnapshotRates(j, rates)

		if err := j.Validate(); err != nil {
			return err
		}
		if err := checkNumberFree(ctx, tx, j); err != nil {
			return err
		}

		if editingID != "" {
			err = tx.Jumps().Update(ctx, &j)
		} else {
			err = tx.Jumps().Create(ctx, &j)
		}
		if err != nil {
			return err
		}

		if err := registerNames(ctx, tx, j); err != nil {
			return err
		}
		saved = j
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("jump_id", saved.ID).
		Int("jump_number", saved.JumpNumber).
		Bool("edit", editingID != "").
		Msg("jump saved")
	return &saved, nil
}

func checkNumberFree(ctx context.Context, tx repository.Store, j domain.Jump) error {
	other, err := tx.Jumps().GetByNumber(ctx, j.JumpNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if other.ID != j.ID {
		return fmt.Errorf("%w: #%d", ErrDuplicateJumpNumber, j.JumpNumber)
	}
	return nil
}

// registerNames adds the jump's dropzone, aircraft and jump type to the
// pick lists
func registerNames(ctx context.Context, tx repository.Store, j domain.Jump) error {
	names := map[domain.RegistryKind]string{
		domain.RegistryDropZone: j.DropZone,
		domain.RegistryAircraft: j.Aircraft,
		domain.RegistryJumpType: j.JumpType,
	}
	for kind, name := range names {
		if name == "" {
			continue
		}
		if err := tx.Registry().Add(ctx, kind, name); err != nil {
			return err
		}
	}
	return nil
}

func (s *jumpService) Delete(ctx context.Context, id string) error {
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Jumps().Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: %s", billing.ErrJumpNotFound, id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("jump_id", id).Msg("jump deleted")
	return nil
}

func (s *jumpService) Get(ctx context.Context, ref string) (*domain.Jump, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")

	j, err := s.store.Jumps().GetByID(ctx, ref)
	if err == nil {
		return j, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if n, convErr := strconv.Atoi(ref); convErr == nil {
		j, err = s.store.Jumps().GetByNumber(ctx, n)
		if err == nil {
			return j, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", billing.ErrJumpNotFound, ref)
}

func (s *jumpService) List(ctx context.Context, filter repository.JumpFilter) ([]*domain.Jump, error) {
	return s.store.Jumps().List(ctx, filter)
}

func (s *jumpService) NextJumpNumber(ctx context.Context) (int, error) {
	return nextJumpNumber(ctx, s.store)
}

func nextJumpNumber(ctx context.Context, st repository.Store) (int, error) {
	numbers, err := st.Jumps().Numbers(ctx)
	if err != nil {
		return 0, err
	}
	current, err := currentJumpNumber(ctx, st)
	if err != nil {
		return 0, err
	}
	return billing.NextJumpNumber(numbers, current), nil
}

// allocateJumpNumber takes the next number and stores the advanced
// current number when the allocation continued the configured sequence.
func allocateJumpNumber(ctx context.Context, tx repository.Store) (int, error) {
	numbers, err := tx.Jumps().Numbers(ctx)
	if err != nil {
		return 0, err
	}
	current, err := currentJumpNumber(ctx, tx)
	if err != nil {
		return 0, err
	}

	n, next := billing.AllocateJumpNumber(numbers, current)
	if next != current {
		if err := tx.Settings().Set(ctx, repository.SettingCurrentJumpNumber, strconv.Itoa(next)); err != nil {
			return 0, err
		}
	}
	return n, nil
}

func (s *jumpService) CurrentJumpNumber(ctx context.Context) (int, error) {
	return currentJumpNumber(ctx, s.store)
}

func currentJumpNumber(ctx context.Context, st repository.Store) (int, error) {
	v, ok, err := st.Settings().Get(ctx, repository.SettingCurrentJumpNumber)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s setting %q: %w", repository.SettingCurrentJumpNumber, v, err)
	}
	return n, nil
}

func (s *jumpService) SetCurrentJumpNumber(ctx context.Context, n int) error {
	if n < 0 {
		return ErrInvalidJumpNumber
	}
	return s.store.Settings().Set(ctx, repository.SettingCurrentJumpNumber, strconv.Itoa(n))
}

func (s *jumpService) Available(ctx context.Context, dropZone string) ([]*domain.Jump, error) {
	jumps, err := s.store.Jumps().List(ctx, repository.JumpFilter{
		DropZone: strings.TrimSpace(dropZone),
		WorkOnly: true,
	})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Jump, 0, len(jumps))
	for _, j := range jumps {
		if len(j.PendingInvoiceServices) == 0 && len(j.AvailableServices()) > 0 {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *jumpService) Import(ctx context.Context, jumps []domain.Jump) (int, error) {
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		numbers, err := tx.Jumps().Numbers(ctx)
		if err != nil {
			return err
		}
		current, err := currentJumpNumber(ctx, tx)
		if err != nil {
			return err
		}

		start := current
		now := s.clock.now()
		for i := range jumps {
			j := billing.Settle(jumps[i])
			j.ID = uuid.NewString()
			j.CreatedAt = now
			j.UpdatedAt = now
			if j.JumpNumber == 0 {
				j.JumpNumber, current = billing.AllocateJumpNumber(numbers, current)
			}

			if err := j.Validate(); err != nil {
				return fmt.Errorf("jump %d of import: %w", i+1, err)
			}
			if err := checkNumberFree(ctx, tx, j); err != nil {
				return fmt.Errorf("jump %d of import: %w", i+1, err)
			}
			if err := tx.Jumps().Create(ctx, &j); err != nil {
				return err
			}
			if err := registerNames(ctx, tx, j); err != nil {
				return err
			}
			numbers = append(numbers, j.JumpNumber)
		}

		if current != start {
			return tx.Settings().Set(ctx, repository.SettingCurrentJumpNumber, strconv.Itoa(current))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info().Int("count", len(jumps)).Msg("jumps imported")
	return len(jumps), nil
}
