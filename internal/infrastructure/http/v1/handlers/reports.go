package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/audit"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/reports"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/export"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/http/v1/dto"
)

// ReportService is the reporting surface the handler needs.
type ReportService interface {
	Create(ctx context.Context, in reports.Input) (*reports.Report, error)
	Update(ctx context.Context, reportID id.ID, in reports.Input) (*reports.Report, error)
	Delete(ctx context.Context, reportID id.ID) (*reports.Detail, error)
	RemoveUangNitip(ctx context.Context, reportID id.ID) (*reports.UangNitipRemoval, error)
	Get(ctx context.Context, reportID id.ID) (*reports.Detail, error)
	List(ctx context.Context, f reports.ListFilter) (*reports.ListResult, error)
	Export(ctx context.Context, f reports.ListFilter) ([]reports.Detail, error)
	Profit(ctx context.Context, storeID *id.ID, date string) ([]reports.Profit, error)
	Dashboard(ctx context.Context, f reports.DashboardFilter) (*reports.Dashboard, error)
	History(ctx context.Context, reportID id.ID) ([]audit.Entry, error)
}

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service ReportService
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service ReportService) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /reports
func (h *ReportsHandler) Create(c *gin.Context) {
	var req dto.ReportRequest
	if !h.BindJSON(c, &req) {
		return
	}

	report, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromReport("report created", report))
}

// Update handles PUT /reports/:id
func (h *ReportsHandler) Update(c *gin.Context) {
	reportID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.ReportRequest
	if !h.BindJSON(c, &req) {
		return
	}

	report, err := h.service.Update(c.Request.Context(), reportID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromReport("report updated", report))
}

// Delete handles DELETE /reports/:id
func (h *ReportsHandler) Delete(c *gin.Context) {
	reportID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	deleted, err := h.service.Delete(c.Request.Context(), reportID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.DeletedReportResponse{
		Message:       "report deleted",
		DeletedReport: dto.DeletedReport{ReportID: deleted.ID, StoreName: deleted.StoreName},
	})
}

// RemoveUangNitip handles PATCH /reports/:id/remove-uang-nitip
func (h *ReportsHandler) RemoveUangNitip(c *gin.Context) {
	reportID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	removal, err := h.service.RemoveUangNitip(c.Request.Context(), reportID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.UangNitipResponse{Message: "uang nitip removed from report", UangNitipRemoval: removal})
}

// Get handles GET /reports/:id
func (h *ReportsHandler) Get(c *gin.Context) {
	reportID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.service.Get(c.Request.Context(), reportID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, detail)
}

// List handles GET /reports
func (h *ReportsHandler) List(c *gin.Context) {
	f, ok := h.listFilter(c)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Export handles GET /reports/export
func (h *ReportsHandler) Export(c *gin.Context) {
	f, ok := h.listFilter(c)
	if !ok {
		return
	}

	rows, err := h.service.Export(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteReports(&buf, rows); err != nil {
		h.Error(c, err)
		return
	}

	filename := fmt.Sprintf("reports-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (h *ReportsHandler) listFilter(c *gin.Context) (reports.ListFilter, bool) {
	var q dto.ReportListQuery
	if !h.BindQuery(c, &q) {
		return reports.ListFilter{}, false
	}
	f, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return reports.ListFilter{}, false
	}
	return f, true
}

// Profit handles GET /reports/analysis/profit
func (h *ReportsHandler) Profit(c *gin.Context) {
	var q dto.ProfitQuery
	if !h.BindQuery(c, &q) {
		return
	}
	storeID, err := q.StoreIDValue()
	if err != nil {
		h.Error(c, err)
		return
	}

	profits, err := h.service.Profit(c.Request.Context(), storeID, q.Date)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ProfitResponse{Analysis: profits})
}

// Dashboard handles GET /reports/dashboard
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	var q dto.DashboardQuery
	if !h.BindQuery(c, &q) {
		return
	}
	f, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	dashboard, err := h.service.Dashboard(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dashboard)
}

// History handles GET /reports/:id/history
func (h *ReportsHandler) History(c *gin.Context) {
	reportID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	entries, err := h.service.History(c.Request.Context(), reportID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"history": entries})
}

var _ ReportService = (*reports.Service)(nil)
