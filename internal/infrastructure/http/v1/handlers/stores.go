package handlers

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/catalogs/store"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/http/v1/dto"
)

// StoreService is the store catalog surface the handler needs.
type StoreService interface {
	Create(ctx context.Context, req store.CreateRequest) (*store.Detail, error)
	List(ctx context.Context) ([]store.Detail, error)
	Get(ctx context.Context, storeID id.ID) (*store.Detail, error)
	Update(ctx context.Context, storeID id.ID, req store.UpdateRequest) (*store.Detail, error)
	Delete(ctx context.Context, storeID id.ID) (*store.Store, error)
}

// StoreHandler handles /stores endpoints.
type StoreHandler struct {
	*BaseHandler
	service StoreService
}

// NewStoreHandler creates a store handler.
func NewStoreHandler(base *BaseHandler, service StoreService) *StoreHandler {
	return &StoreHandler{BaseHandler: base, service: service}
}

// Create handles POST /stores
func (h *StoreHandler) Create(c *gin.Context) {
	var req dto.CreateStoreRequest
	if !h.BindJSON(c, &req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.StoreResponse{Message: "store created", Detail: created})
}

// List handles GET /stores
func (h *StoreHandler) List(c *gin.Context) {
	stores, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.StoresResponse{Stores: stores})
}

// Get handles GET /stores/:id
func (h *StoreHandler) Get(c *gin.Context) {
	storeID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.service.Get(c.Request.Context(), storeID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, detail)
}

// Update handles PUT /stores/:id
func (h *StoreHandler) Update(c *gin.Context) {
	storeID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateStoreRequest
	if !h.BindJSON(c, &req) {
		return
	}

	updated, err := h.service.Update(c.Request.Context(), storeID, req.ToDomain())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.StoreResponse{Message: "store updated", Detail: updated})
}

// Delete handles DELETE /stores/:id
func (h *StoreHandler) Delete(c *gin.Context) {
	storeID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	deleted, err := h.service.Delete(c.Request.Context(), storeID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.DeletedStoreResponse{
		Message:        fmt.Sprintf("store '%s' deleted", deleted.Name),
		DeletedStoreID: deleted.ID,
	})
}

var _ StoreService = (*store.Service)(nil)
