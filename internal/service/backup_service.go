package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/andy/jumplog/internal/billing"
	"github.com/andy/jumplog/internal/domain"
	"github.com/andy/jumplog/internal/repository"
	"github.com/rs/zerolog"
)

// BackupVersion is written into every snapshot
const BackupVersion = 1

// Snapshot is the JSON backup format
type Snapshot struct {
	Version    int                              `json:"version"`
	ExportedAt time.Time                        `json:"exportedAt"`
	Jumps      []BackupJump                     `json:"jumps"`
	Invoices   []domain.Invoice                 `json:"invoices"`
	Rates      []domain.ServiceRate             `json:"rates"`
	Registry   map[domain.RegistryKind][]string `json:"registry"`
	Settings   map[string]string                `json:"settings"`
	Events     []domain.InvoiceEvent            `json:"events,omitempty"`
}

// BackupJump is a jump as stored in a snapshot. Older backups carry a
// single invoiceId instead of the invoiceIds list.
type BackupJump struct {
	domain.Jump
	LegacyInvoiceID string `json:"invoiceId,omitempty"`
}

// RestoreOptions controls Restore
type RestoreOptions struct {
	// Force skips the billing consistency check
	Force bool
}

// BackupService exports and restores the whole database
type BackupService interface {
	Export(ctx context.Context, w io.Writer) (*Snapshot, error)

	// Restore replaces all data with the snapshot read from r
	Restore(ctx context.Context, r io.Reader, opts RestoreOptions) (*Snapshot, error)
}

type backupService struct {
	store repository.Store
	clock Clock
	log   zerolog.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(store repository.Store, clock Clock, log zerolog.Logger) BackupService {
	return &backupService{store: store, clock: clock, log: log}
}

var registryKinds = []domain.RegistryKind{
	domain.RegistryDropZone,
	domain.RegistryAircraft,
	domain.RegistryJumpType,
}

func (s *backupService) Export(ctx context.Context, w io.Writer) (*Snapshot, error) {
	snap := &Snapshot{
		Version:    BackupVersion,
		ExportedAt: s.clock.now(),
		Registry:   make(map[domain.RegistryKind][]string),
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		state, err := loadState(ctx, tx)
		if err != nil {
			return err
		}
		snap.Jumps = make([]BackupJump, 0, len(state.Jumps))
		for _, j := range state.Jumps {
			snap.Jumps = append(snap.Jumps, BackupJump{Jump: j})
		}
		snap.Invoices = state.Invoices

		if snap.Rates, err = tx.Rates().List(ctx); err != nil {
			return err
		}
		for _, kind := range registryKinds {
			names, err := tx.Registry().List(ctx, kind)
			if err != nil {
				return err
			}
			snap.Registry[kind] = names
		}
		if snap.Settings, err = tx.Settings().All(ctx); err != nil {
			return err
		}

		events, err := tx.Events().List(ctx)
		if err != nil {
			return err
		}
		snap.Events = make([]domain.InvoiceEvent, 0, len(events))
		for _, e := range events {
			snap.Events = append(snap.Events, *e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}

	s.log.Info().
		Int("jumps", len(snap.Jumps)).
		Int("invoices", len(snap.Invoices)).
		Msg("backup exported")
	return snap, nil
}

func (s *backupService) Restore(ctx context.Context, r io.Reader, opts RestoreOptions) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	if snap.Version > BackupVersion {
		return nil, fmt.Errorf("backup version %d is newer than supported version %d", snap.Version, BackupVersion)
	}

	state := billing.State{Invoices: snap.Invoices}
	for _, bj := range snap.Jumps {
		j := bj.Jump
		if bj.LegacyInvoiceID != "" {
			j.InvoiceIDs = domain.Union(j.InvoiceIDs, []string{bj.LegacyInvoiceID})
		}
		state.Jumps = append(state.Jumps, j)
	}
	state = billing.Reproject(state)

	if !opts.Force {
		if err := billing.CheckInvariants(state); err != nil {
			return nil, fmt.Errorf("backup is inconsistent (use --force to restore anyway): %w", err)
		}
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Reset(ctx); err != nil {
			return err
		}
		for i := range state.Jumps {
			if err := tx.Jumps().Create(ctx, &state.Jumps[i]); err != nil {
				return err
			}
		}
		for i := range state.Invoices {
			if err := tx.Invoices().Create(ctx, &state.Invoices[i]); err != nil {
				return err
			}
		}
		for _, r := range snap.Rates {
			if err := tx.Rates().Set(ctx, r); err != nil {
				return err
			}
		}
		for kind, names := range snap.Registry {
			for _, name := range names {
				if err := tx.Registry().Add(ctx, kind, name); err != nil {
					return err
				}
			}
		}
		for k, v := range snap.Settings {
			if err := tx.Settings().Set(ctx, k, v); err != nil {
				return err
			}
		}
		for i := range snap.Events {
			if err := tx.Events().Append(ctx, &snap.Events[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("restore failed, existing data kept: %w", err)
	}

	s.log.Info().
		Int("jumps", len(state.Jumps)).
		Int("invoices", len(state.Invoices)).
		Int("events", len(snap.Events)).
		Bool("force", opts.Force).
		Msg("backup restored")
	return &snap, nil
}
