package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/rinkpass/backend/internal/application/billing"
)

// RefundHandler handles refund API endpoints
type RefundHandler struct {
	BaseHandler
	refundService *billingapp.RefundService
}

// NewRefundHandler creates a new RefundHandler
func NewRefundHandler(refundService *billingapp.RefundService) *RefundHandler {
	return &RefundHandler{
		refundService: refundService,
	}
}

// Create godoc
// @ID           createRefund
// @Summary      Refund a payment
// @Description  Refund part or all of a succeeded payment through Stripe.
// @Description  The ledger credit note is staged when Stripe confirms the
// @Description  refund via webhook.
// @Tags         refunds
// @Accept       json
// @Produce      json
// @Param        request body billing.CreateRefundRequest true "Refund request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /refunds [post]
func (h *RefundHandler) Create(c *gin.Context) {
	var req billingapp.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	refund, err := h.refundService.CreateRefund(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, refund)
}

// GetByID godoc
// @ID           getRefundById
// @Summary      Get refund by ID
// @Tags         refunds
// @Produce      json
// @Param        id path string true "Refund ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /refunds/{id} [get]
func (h *RefundHandler) GetByID(c *gin.Context) {
	refundID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid refund ID format")
		return
	}

	refund, err := h.refundService.GetRefund(c.Request.Context(), refundID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, refund)
}

// ListByPayment godoc
// @ID           listRefundsByPayment
// @Summary      List refunds for a payment
// @Tags         refunds
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /payments/{id}/refunds [get]
func (h *RefundHandler) ListByPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	refunds, err := h.refundService.ListRefundsByPayment(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, refunds)
}
