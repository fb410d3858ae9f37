package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	accountingapp "github.com/rinkpass/backend/internal/application/accounting"
	"github.com/rinkpass/backend/internal/domain/accounting"
	"github.com/rinkpass/backend/internal/interfaces/http/dto"
)

// XeroHandler handles the admin endpoints for the Xero staging queues and
// batch sync
type XeroHandler struct {
	BaseHandler
	syncService  *accountingapp.SyncService
	queueService *accountingapp.QueueService
}

// NewXeroHandler creates a new XeroHandler
func NewXeroHandler(syncService *accountingapp.SyncService, queueService *accountingapp.QueueService) *XeroHandler {
	return &XeroHandler{
		syncService:  syncService,
		queueService: queueService,
	}
}

// TriggerSync godoc
// @ID           triggerXeroSync
// @Summary      Trigger a Xero sync run
// @Description  Runs one batch sync pass over the staging queues immediately
// @Tags         xero
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/xero/sync [post]
func (h *XeroHandler) TriggerSync(c *gin.Context) {
	result, err := h.syncService.Run(c.Request.Context(), accounting.SyncTriggerManual)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Ping godoc
// @ID           pingXero
// @Summary      Check Xero connectivity
// @Description  Calls the Xero organisation endpoint to verify credentials
// @Tags         xero
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/xero/ping [get]
func (h *XeroHandler) Ping(c *gin.Context) {
	if err := h.syncService.Ping(c.Request.Context()); err != nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, "Xero is unreachable: "+err.Error())
		return
	}

	h.Success(c, gin.H{"status": "ok"})
}

// ListInvoiceRows godoc
// @ID           listInvoiceStagingRows
// @Summary      List invoice staging rows
// @Tags         xero
// @Produce      json
// @Param        status query string false "Filter by sync status" Enums(pending, staged, synced, failed, ignore, planned)
// @Param        member_id query string false "Filter by member" format(uuid)
// @Param        registration_id query string false "Filter by registration" format(uuid)
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/xero/invoices [get]
func (h *XeroHandler) ListInvoiceRows(c *gin.Context) {
	var filter accountingapp.StagingQueueFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.queueService.ListInvoiceRows(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListPaymentRows godoc
// @ID           listPaymentStagingRows
// @Summary      List payment staging rows
// @Tags         xero
// @Produce      json
// @Param        status query string false "Filter by sync status" Enums(pending, staged, synced, failed, ignore, planned)
// @Param        member_id query string false "Filter by member" format(uuid)
// @Param        registration_id query string false "Filter by registration" format(uuid)
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/xero/payments [get]
func (h *XeroHandler) ListPaymentRows(c *gin.Context) {
	var filter accountingapp.StagingQueueFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.queueService.ListPaymentRows(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Counts godoc
// @ID           getStagingCounts
// @Summary      Get staging queue counts
// @Description  Row counts per sync status for both staging queues
// @Tags         xero
// @Produce      json
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/xero/counts [get]
func (h *XeroHandler) Counts(c *gin.Context) {
	counts, err := h.queueService.Counts(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, counts)
}

// RetryInvoiceRow godoc
// @ID           retryInvoiceStagingRow
// @Summary      Retry a failed invoice staging row
// @Description  Resets a failed row to pending so the next sync run picks it up
// @Tags         xero
// @Produce      json
// @Param        id path string true "Staging row ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/xero/invoices/{id}/retry [post]
func (h *XeroHandler) RetryInvoiceRow(c *gin.Context) {
	rowID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid staging row ID format")
		return
	}

	row, err := h.queueService.RetryInvoiceRow(c.Request.Context(), rowID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, row)
}

// RetryPaymentRow godoc
// @ID           retryPaymentStagingRow
// @Summary      Retry a failed payment staging row
// @Tags         xero
// @Produce      json
// @Param        id path string true "Staging row ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/xero/payments/{id}/retry [post]
func (h *XeroHandler) RetryPaymentRow(c *gin.Context) {
	rowID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid staging row ID format")
		return
	}

	row, err := h.queueService.RetryPaymentRow(c.Request.Context(), rowID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, row)
}

// IgnoreInvoiceRow godoc
// @ID           ignoreInvoiceStagingRow
// @Summary      Exclude an invoice staging row from sync
// @Description  Marks a row as ignored. Ignored rows keep their history but
// @Description  are never picked up by the sync again.
// @Tags         xero
// @Accept       json
// @Produce      json
// @Param        id path string true "Staging row ID" format(uuid)
// @Param        request body accounting.IgnoreRowRequest true "Ignore reason"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/xero/invoices/{id}/ignore [post]
func (h *XeroHandler) IgnoreInvoiceRow(c *gin.Context) {
	rowID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid staging row ID format")
		return
	}

	var req accountingapp.IgnoreRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	row, err := h.queueService.IgnoreInvoiceRow(c.Request.Context(), rowID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, row)
}

// IgnorePaymentRow godoc
// @ID           ignorePaymentStagingRow
// @Summary      Exclude a payment staging row from sync
// @Tags         xero
// @Accept       json
// @Produce      json
// @Param        id path string true "Staging row ID" format(uuid)
// @Param        request body accounting.IgnoreRowRequest true "Ignore reason"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/xero/payments/{id}/ignore [post]
func (h *XeroHandler) IgnorePaymentRow(c *gin.Context) {
	rowID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid staging row ID format")
		return
	}

	var req accountingapp.IgnoreRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	row, err := h.queueService.IgnorePaymentRow(c.Request.Context(), rowID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, row)
}

// RecentRuns godoc
// @ID           listRecentSyncRuns
// @Summary      List recent sync runs
// @Tags         xero
// @Produce      json
// @Param        limit query int false "Maximum runs to return" default(20)
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/xero/runs [get]
func (h *XeroHandler) RecentRuns(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	runs, err := h.queueService.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, runs)
}
