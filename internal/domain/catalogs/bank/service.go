package bank

import (
	"context"
	"fmt"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/tx"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/audit"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/filter"
	"github.com/alenprastyaa/hakimah-laporan-harian/pkg/logger"
)

// Service manages banks. Employees only see banks of their stores.
type Service struct {
	repo      Repository
	stores    StoreLookup
	access    AccessChecker
	txManager tx.Manager
	audit     audit.Recorder
}

// NewService creates a bank service.
func NewService(repo Repository, stores StoreLookup, access AccessChecker, txManager tx.Manager, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Noop{}
	}
	return &Service{repo: repo, stores: stores, access: access, txManager: txManager, audit: recorder}
}

// Create adds a bank to an existing store the caller can access.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*View, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	st, err := s.stores.GetByID(ctx, req.StoreID)
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireStoreAccess(ctx, req.StoreID); err != nil {
		return nil, err
	}

	b := &Bank{ID: id.New(), Name: req.Name, StoreID: req.StoreID}
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, b); err != nil {
			return err
		}
		return s.audit.Record(ctx, audit.EntityBank, b.ID, audit.ActionCreate, map[string]any{
			"bank_name": b.Name, "store_id": b.StoreID,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "bank created", "bank_id", b.ID, "store_id", b.StoreID)
	return &View{Bank: *b, StoreName: st.Name}, nil
}

// List returns all banks visible to the caller.
func (s *Service) List(ctx context.Context) ([]View, error) {
	scope, err := filter.ScopeFor(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, nil, scope)
}

// ListByStore returns the banks of one store after an access check.
func (s *Service) ListByStore(ctx context.Context, storeID id.ID) ([]View, error) {
	if err := s.access.RequireStoreAccess(ctx, storeID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, &storeID, filter.Scope{})
}

// Get returns one bank.
func (s *Service) Get(ctx context.Context, bankID id.ID) (*View, error) {
	scope, err := filter.ScopeFor(ctx)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, bankID, scope)
}

func (s *Service) get(ctx context.Context, bankID id.ID, scope filter.Scope) (*View, error) {
	v, err := s.repo.Get(ctx, bankID, scope)
	if err != nil {
		if apperror.IsNotFound(err) && scope.Restricted() {
			return nil, apperror.NewNotFoundOrDenied("bank", bankID)
		}
		return nil, err
	}
	return v, nil
}

// Update renames a bank.
func (s *Service) Update(ctx context.Context, bankID id.ID, name string) (*View, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	scope, err := filter.ScopeFor(ctx)
	if err != nil {
		return nil, err
	}

	var updated *View
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.get(ctx, bankID, scope)
		if err != nil {
			return err
		}
		if err := s.repo.Rename(ctx, bankID, name); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, audit.EntityBank, bankID, audit.ActionUpdate, map[string]any{
			"bank_name": map[string]any{"old": current.Name, "new": name},
		}); err != nil {
			return err
		}
		current.Name = name
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a bank that no report balance line references.
func (s *Service) Delete(ctx context.Context, bankID id.ID) (*View, error) {
	scope, err := filter.ScopeFor(ctx)
	if err != nil {
		return nil, err
	}

	var deleted *View
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.get(ctx, bankID, scope)
		if err != nil {
			return err
		}
		lines, err := s.repo.CountBalanceLines(ctx, bankID)
		if err != nil {
			return fmt.Errorf("count balance lines: %w", err)
		}
		if lines > 0 {
			return apperror.NewValidation("bank is used in reports and cannot be deleted").
				WithDetail("balance_lines", lines)
		}
		if err := s.repo.Delete(ctx, bankID); err != nil {
			return err
		}
		deleted = current
		return s.audit.Record(ctx, audit.EntityBank, bankID, audit.ActionDelete, map[string]any{
			"bank_name": current.Name, "store_id": current.StoreID,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "bank deleted", "bank_id", bankID)
	return deleted, nil
}
