package dto

import (
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/catalogs/store"
)

// CreateStoreRequest for store creation.
type CreateStoreRequest struct {
	StoreName string  `json:"store_name"`
	Address   string  `json:"address"`
	Employees []id.ID `json:"employees"`
}

// ToDomain converts to domain request.
func (r *CreateStoreRequest) ToDomain() store.CreateRequest {
	return store.CreateRequest{Name: r.StoreName, Address: r.Address, EmployeeIDs: r.Employees}
}

// UpdateStoreRequest replaces name and address; employees, when present,
// replaces the assignment set.
type UpdateStoreRequest struct {
	StoreName string   `json:"store_name"`
	Address   string   `json:"address"`
	Employees *[]id.ID `json:"employees"`
}

// ToDomain converts to domain request.
func (r *UpdateStoreRequest) ToDomain() store.UpdateRequest {
	return store.UpdateRequest{Name: r.StoreName, Address: r.Address, EmployeeIDs: r.Employees}
}

// StoreResponse is a store with a confirmation message.
type StoreResponse struct {
	Message string `json:"message"`
	*store.Detail
}

// StoresResponse wraps a store listing.
type StoresResponse struct {
	Stores []store.Detail `json:"stores"`
}

// DeletedStoreResponse confirms a store deletion.
type DeletedStoreResponse struct {
	Message        string `json:"message"`
	DeletedStoreID id.ID  `json:"deleted_store_id"`
}
