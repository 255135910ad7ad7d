package auth

import (
	"context"
	"fmt"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	appctx "github.com/alenprastyaa/hakimah-laporan-harian/internal/core/context"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
)

// AccessChecker enforces per-store access for the authenticated user.
// Admins pass unconditionally; employees need an assignment to the store.
type AccessChecker struct {
	assignments AssignmentRepository
}

// NewAccessChecker creates an access checker.
func NewAccessChecker(assignments AssignmentRepository) *AccessChecker {
	return &AccessChecker{assignments: assignments}
}

// RequireStoreAccess returns ForbiddenError when the caller may not act on storeID.
func (a *AccessChecker) RequireStoreAccess(ctx context.Context, storeID id.ID) error {
	ok, err := a.HasStoreAccess(ctx, storeID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewForbidden("you do not have access to this store").
			WithDetail("store_id", storeID)
	}
	return nil
}

// HasStoreAccess reports whether the caller may act on storeID.
func (a *AccessChecker) HasStoreAccess(ctx context.Context, storeID id.ID) (bool, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return false, apperror.NewUnauthorized("authentication required")
	}
	if user.IsAdmin() {
		return true, nil
	}
	userID, err := CallerID(ctx)
	if err != nil {
		return false, err
	}
	ok, err := a.assignments.IsAssigned(ctx, userID, storeID)
	if err != nil {
		return false, fmt.Errorf("check store assignment: %w", err)
	}
	return ok, nil
}

// CallerID returns the authenticated user's id.
func CallerID(ctx context.Context) (id.ID, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return id.ID{}, apperror.NewUnauthorized("authentication required")
	}
	userID, err := id.Parse(user.UserID)
	if err != nil {
		return id.ID{}, apperror.NewInvalidToken(err)
	}
	return userID, nil
}

// Caller returns the authenticated user and their parsed id.
func Caller(ctx context.Context) (*appctx.UserContext, id.ID, error) {
	userID, err := CallerID(ctx)
	if err != nil {
		return nil, id.ID{}, err
	}
	return appctx.GetUser(ctx), userID, nil
}
