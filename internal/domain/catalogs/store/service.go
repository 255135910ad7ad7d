package store

import (
	"context"
	"fmt"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	appctx "github.com/alenprastyaa/hakimah-laporan-harian/internal/core/context"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/tx"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/audit"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/filter"
	"github.com/alenprastyaa/hakimah-laporan-harian/pkg/logger"
)

// Invalidator drops cached aggregates that embed store data.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service manages stores and their employee assignments.
type Service struct {
	repo      Repository
	users     UserLookup
	txManager tx.Manager
	audit     audit.Recorder
	cache     Invalidator
}

// NewService creates a store service. cache may be nil.
func NewService(repo Repository, users UserLookup, txManager tx.Manager, recorder audit.Recorder, cache Invalidator) *Service {
	if recorder == nil {
		recorder = audit.Noop{}
	}
	return &Service{repo: repo, users: users, txManager: txManager, audit: recorder, cache: cache}
}

func requireAdmin(ctx context.Context, action string) error {
	if !appctx.HasRole(ctx, appctx.RoleAdmin) {
		return apperror.NewForbidden(fmt.Sprintf("only admins can %s stores", action))
	}
	return nil
}

// Create inserts a store and its assignments atomically.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Detail, error) {
	if err := requireAdmin(ctx, "create"); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	st := &Store{ID: id.New(), Name: req.Name, Address: req.Address}
	var usernames []string

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		taken, err := s.repo.NameTaken(ctx, req.Name, nil)
		if err != nil {
			return fmt.Errorf("check store name: %w", err)
		}
		if taken {
			return apperror.NewDuplicate("store", "store_name", req.Name)
		}
		if err := s.repo.Create(ctx, st); err != nil {
			return err
		}
		usernames, err = s.assign(ctx, st.ID, req.EmployeeIDs)
		if err != nil {
			return err
		}
		return s.audit.Record(ctx, audit.EntityStore, st.ID, audit.ActionCreate, map[string]any{
			"store_name": st.Name, "address": st.Address, "employees": req.EmployeeIDs,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "store created", "store_id", st.ID, "employees", len(req.EmployeeIDs))
	return &Detail{Store: *st, EmployeeIDs: req.EmployeeIDs, EmployeeUsernames: usernames}, nil
}

// assign validates that every id is an existing employee and replaces the
// store's assignments. Returns the usernames in input order.
func (s *Service) assign(ctx context.Context, storeID id.ID, userIDs []id.ID) ([]string, error) {
	usernames := make([]string, 0, len(userIDs))
	for _, uid := range userIDs {
		u, err := s.users.GetByID(ctx, uid)
		if err != nil && !apperror.IsNotFound(err) {
			return nil, fmt.Errorf("get employee: %w", err)
		}
		if err != nil || !u.IsEmployee() {
			return nil, apperror.NewValidation(fmt.Sprintf("employee %s not found or not an employee", uid)).
				WithDetail("employee_id", uid)
		}
		usernames = append(usernames, u.Username)
	}
	if err := s.repo.ReplaceEmployees(ctx, storeID, userIDs); err != nil {
		return nil, err
	}
	return usernames, nil
}

// List returns stores visible to the caller.
func (s *Service) List(ctx context.Context) ([]Detail, error) {
	scope, err := filter.ScopeFor(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, scope)
}

// Get returns one store. Employees get the same 404 for missing and
// unassigned stores.
func (s *Service) Get(ctx context.Context, storeID id.ID) (*Detail, error) {
	scope, err := filter.ScopeFor(ctx)
	if err != nil {
		return nil, err
	}
	d, err := s.repo.GetDetail(ctx, storeID, scope)
	if err != nil {
		if apperror.IsNotFound(err) && scope.Restricted() {
			return nil, apperror.NewNotFoundOrDenied("store", storeID)
		}
		return nil, err
	}
	return d, nil
}

// Update changes name and address and optionally the employee set.
func (s *Service) Update(ctx context.Context, storeID id.ID, req UpdateRequest) (*Detail, error) {
	if err := requireAdmin(ctx, "update"); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		st, err := s.repo.GetByID(ctx, storeID)
		if err != nil {
			return err
		}
		taken, err := s.repo.NameTaken(ctx, req.Name, &storeID)
		if err != nil {
			return fmt.Errorf("check store name: %w", err)
		}
		if taken {
			return apperror.NewDuplicate("store", "store_name", req.Name)
		}

		changes := map[string]any{
			"store_name": map[string]any{"old": st.Name, "new": req.Name},
			"address":    map[string]any{"old": st.Address, "new": req.Address},
		}
		st.Name, st.Address = req.Name, req.Address
		if err := s.repo.Update(ctx, st); err != nil {
			return err
		}
		if req.EmployeeIDs != nil {
			if _, err := s.assign(ctx, storeID, *req.EmployeeIDs); err != nil {
				return err
			}
			changes["employees"] = *req.EmployeeIDs
		}
		return s.audit.Record(ctx, audit.EntityStore, storeID, audit.ActionUpdate, changes)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	logger.Info(ctx, "store updated", "store_id", storeID)
	return s.repo.GetDetail(ctx, storeID, filter.Scope{})
}

// Delete removes a store without reports or banks, together with its
// assignments.
func (s *Service) Delete(ctx context.Context, storeID id.ID) (*Store, error) {
	if err := requireAdmin(ctx, "delete"); err != nil {
		return nil, err
	}

	var deleted *Store
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		st, err := s.repo.GetByID(ctx, storeID)
		if err != nil {
			return err
		}
		reports, banks, err := s.repo.CountDependents(ctx, storeID)
		if err != nil {
			return fmt.Errorf("count store dependents: %w", err)
		}
		if reports > 0 || banks > 0 {
			return apperror.NewValidation("store still has reports or banks and cannot be deleted").
				WithDetail("reports", reports).
				WithDetail("banks", banks)
		}
		if err := s.repo.ReplaceEmployees(ctx, storeID, nil); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, storeID); err != nil {
			return err
		}
		deleted = st
		return s.audit.Record(ctx, audit.EntityStore, storeID, audit.ActionDelete, map[string]any{"store_name": st.Name})
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	logger.Info(ctx, "store deleted", "store_id", storeID)
	return deleted, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn(ctx, "dashboard cache invalidation failed", "error", err)
	}
}
