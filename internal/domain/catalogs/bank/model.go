// Package bank implements the payment channels ("banks") that report
// balance lines refer to.
package bank

import (
	"strings"
	"time"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
)

// Bank is a store-owned payment channel. Names are not unique.
type Bank struct {
	ID        id.ID     `db:"id" json:"bank_id"`
	Name      string    `db:"name" json:"bank_name"`
	StoreID   id.ID     `db:"store_id" json:"store_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// View is a bank joined with its store name.
type View struct {
	Bank
	StoreName string `db:"store_name" json:"store_name"`
}

// CreateRequest contains data for bank creation.
type CreateRequest struct {
	Name    string
	StoreID id.ID
}

// Validate checks required fields.
func (r *CreateRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" || id.IsNil(r.StoreID) {
		return apperror.NewValidation("bank_name and store_id are required")
	}
	return nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.NewInvalidInput("bank_name", "bank_name is required")
	}
	return name, nil
}
