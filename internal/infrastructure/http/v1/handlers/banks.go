package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/catalogs/bank"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/http/v1/dto"
)

// BankService is the bank catalog surface the handler needs.
type BankService interface {
	Create(ctx context.Context, req bank.CreateRequest) (*bank.View, error)
	List(ctx context.Context) ([]bank.View, error)
	ListByStore(ctx context.Context, storeID id.ID) ([]bank.View, error)
	Get(ctx context.Context, bankID id.ID) (*bank.View, error)
	Update(ctx context.Context, bankID id.ID, name string) (*bank.View, error)
	Delete(ctx context.Context, bankID id.ID) (*bank.View, error)
}

// BankHandler handles /banks endpoints.
type BankHandler struct {
	*BaseHandler
	service BankService
}

// NewBankHandler creates a bank handler.
func NewBankHandler(base *BaseHandler, service BankService) *BankHandler {
	return &BankHandler{BaseHandler: base, service: service}
}

// Create handles POST /banks
func (h *BankHandler) Create(c *gin.Context) {
	var req dto.CreateBankRequest
	if !h.BindJSON(c, &req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.BankResponse{Message: "bank created", View: created})
}

// List handles GET /banks
func (h *BankHandler) List(c *gin.Context) {
	banks, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.BanksResponse{Banks: banks})
}

// ListByStore handles GET /banks/store/:store_id
func (h *BankHandler) ListByStore(c *gin.Context) {
	storeID, ok := h.PathID(c, "store_id")
	if !ok {
		return
	}

	banks, err := h.service.ListByStore(c.Request.Context(), storeID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.BanksResponse{Banks: banks})
}

// Get handles GET /banks/:id
func (h *BankHandler) Get(c *gin.Context) {
	bankID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	v, err := h.service.Get(c.Request.Context(), bankID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, v)
}

// Update handles PUT /banks/:id
func (h *BankHandler) Update(c *gin.Context) {
	bankID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateBankRequest
	if !h.BindJSON(c, &req) {
		return
	}

	v, err := h.service.Update(c.Request.Context(), bankID, req.BankName)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.BankResponse{Message: "bank updated", View: v})
}

// Delete handles DELETE /banks/:id
func (h *BankHandler) Delete(c *gin.Context) {
	bankID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	if _, err := h.service.Delete(c.Request.Context(), bankID); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.MessageResponse{Message: "bank deleted"})
}

var _ BankService = (*bank.Service)(nil)
