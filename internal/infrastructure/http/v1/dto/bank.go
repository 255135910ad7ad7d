package dto

import (
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/catalogs/bank"
)

// CreateBankRequest for bank creation.
type CreateBankRequest struct {
	BankName string `json:"bank_name"`
	StoreID  id.ID  `json:"store_id"`
}

// ToDomain converts to domain request.
func (r *CreateBankRequest) ToDomain() bank.CreateRequest {
	return bank.CreateRequest{Name: r.BankName, StoreID: r.StoreID}
}

// UpdateBankRequest renames a bank.
type UpdateBankRequest struct {
	BankName string `json:"bank_name"`
}

// BankResponse is a bank with a confirmation message.
type BankResponse struct {
	Message string `json:"message"`
	*bank.View
}

// BanksResponse wraps a bank listing.
type BanksResponse struct {
	Banks []bank.View `json:"banks"`
}
