package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/rinkpass/backend/internal/application/billing"
)

// PaymentPlanHandler handles payment plan API endpoints
type PaymentPlanHandler struct {
	BaseHandler
	planService *billingapp.PaymentPlanService
}

// NewPaymentPlanHandler creates a new PaymentPlanHandler
func NewPaymentPlanHandler(planService *billingapp.PaymentPlanService) *PaymentPlanHandler {
	return &PaymentPlanHandler{
		planService: planService,
	}
}

// Create godoc
// @ID           createPaymentPlan
// @Summary      Create a payment plan
// @Description  Split a submitted registration fee into monthly installments.
// @Description  The product must allow installments.
// @Tags         payment-plans
// @Accept       json
// @Produce      json
// @Param        request body billing.CreatePaymentPlanRequest true "Payment plan request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /payment-plans [post]
func (h *PaymentPlanHandler) Create(c *gin.Context) {
	var req billingapp.CreatePaymentPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.planService.CreatePaymentPlan(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, plan)
}

// GetByID godoc
// @ID           getPaymentPlanById
// @Summary      Get payment plan by ID
// @Tags         payment-plans
// @Produce      json
// @Param        id path string true "Payment plan ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /payment-plans/{id} [get]
func (h *PaymentPlanHandler) GetByID(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment plan ID format")
		return
	}

	plan, err := h.planService.GetPaymentPlan(c.Request.Context(), planID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// GetByRegistration godoc
// @ID           getPaymentPlanByRegistration
// @Summary      Get the payment plan for a registration
// @Tags         payment-plans
// @Produce      json
// @Param        id path string true "Registration ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /registrations/{id}/payment-plan [get]
func (h *PaymentPlanHandler) GetByRegistration(c *gin.Context) {
	registrationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid registration ID format")
		return
	}

	plan, err := h.planService.GetPaymentPlanByRegistration(c.Request.Context(), registrationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// Cancel godoc
// @ID           cancelPaymentPlan
// @Summary      Cancel a payment plan
// @Description  Cancel a plan's remaining installments. Already settled
// @Description  installments are unaffected.
// @Tags         payment-plans
// @Produce      json
// @Param        id path string true "Payment plan ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /payment-plans/{id}/cancel [post]
func (h *PaymentPlanHandler) Cancel(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment plan ID format")
		return
	}

	if err := h.planService.CancelPaymentPlan(c.Request.Context(), planID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
