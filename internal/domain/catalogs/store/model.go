// Package store implements the store catalog and employee assignment.
package store

import (
	"strings"
	"time"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
)

// Store is a retail outlet that owns banks and daily reports.
type Store struct {
	ID        id.ID     `db:"id" json:"store_id"`
	Name      string    `db:"name" json:"store_name"`
	Address   string    `db:"address" json:"address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Detail is a store with its assigned employees.
type Detail struct {
	Store
	EmployeeIDs       []id.ID  `db:"employee_ids" json:"employee_ids"`
	EmployeeUsernames []string `db:"employee_usernames" json:"employee_usernames"`
}

// CreateRequest contains data for store creation.
type CreateRequest struct {
	Name        string
	Address     string
	EmployeeIDs []id.ID
}

// Validate checks required fields and removes duplicate employee ids.
func (r *CreateRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	if r.Name == "" || r.Address == "" {
		return apperror.NewValidation("store_name and address are required")
	}
	if len(r.EmployeeIDs) == 0 {
		return apperror.NewInvalidInput("employees", "at least one employee must be assigned")
	}
	r.EmployeeIDs = dedupe(r.EmployeeIDs)
	return nil
}

// UpdateRequest replaces name and address. EmployeeIDs, when non-nil,
// replaces the assignment set.
type UpdateRequest struct {
	Name        string
	Address     string
	EmployeeIDs *[]id.ID
}

// Validate checks required fields.
func (r *UpdateRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	if r.Name == "" || r.Address == "" {
		return apperror.NewValidation("store_name and address are required")
	}
	if r.EmployeeIDs != nil {
		ids := dedupe(*r.EmployeeIDs)
		r.EmployeeIDs = &ids
	}
	return nil
}

func dedupe(ids []id.ID) []id.ID {
	seen := make(map[id.ID]struct{}, len(ids))
	out := make([]id.ID, 0, len(ids))
	for _, v := range ids {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
