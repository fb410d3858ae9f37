package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	membershipapp "github.com/rinkpass/backend/internal/application/membership"
)

// RegistrationHandler handles registration API endpoints
type RegistrationHandler struct {
	BaseHandler
	registrationService *membershipapp.RegistrationService
}

// NewRegistrationHandler creates a new RegistrationHandler
func NewRegistrationHandler(registrationService *membershipapp.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: registrationService,
	}
}

// Create godoc
// @ID           createRegistration
// @Summary      Create a draft registration
// @Description  Create a draft registration for a member, season, and product.
// @Description  Eligibility and duplicate checks run at creation time.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        request body membership.CreateRegistrationRequest true "Registration creation request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /registrations [post]
func (h *RegistrationHandler) Create(c *gin.Context) {
	var req membershipapp.CreateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	registration, err := h.registrationService.CreateRegistration(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, registration)
}

// Submit godoc
// @ID           submitRegistration
// @Summary      Submit a registration for payment
// @Description  Move a draft registration to pending payment. The season's
// @Description  registration window must still be open.
// @Tags         registrations
// @Produce      json
// @Param        id path string true "Registration ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /registrations/{id}/submit [post]
func (h *RegistrationHandler) Submit(c *gin.Context) {
	registrationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid registration ID format")
		return
	}

	registration, err := h.registrationService.SubmitRegistration(c.Request.Context(), registrationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, registration)
}

// Cancel godoc
// @ID           cancelRegistration
// @Summary      Cancel a registration
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        id path string true "Registration ID" format(uuid)
// @Param        request body membership.CancelRegistrationRequest true "Cancellation request"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /registrations/{id}/cancel [post]
func (h *RegistrationHandler) Cancel(c *gin.Context) {
	registrationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid registration ID format")
		return
	}

	var req membershipapp.CancelRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	registration, err := h.registrationService.CancelRegistration(c.Request.Context(), registrationID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, registration)
}

// GetByID godoc
// @ID           getRegistrationById
// @Summary      Get registration by ID
// @Tags         registrations
// @Produce      json
// @Param        id path string true "Registration ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /registrations/{id} [get]
func (h *RegistrationHandler) GetByID(c *gin.Context) {
	registrationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid registration ID format")
		return
	}

	registration, err := h.registrationService.GetRegistration(c.Request.Context(), registrationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, registration)
}

// GetByReference godoc
// @ID           getRegistrationByReference
// @Summary      Get registration by reference
// @Description  Retrieve a registration by its human-readable reference,
// @Description  e.g. REG-2026-0042
// @Tags         registrations
// @Produce      json
// @Param        reference path string true "Registration reference"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /registrations/reference/{reference} [get]
func (h *RegistrationHandler) GetByReference(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		h.BadRequest(c, "Missing registration reference")
		return
	}

	registration, err := h.registrationService.GetRegistrationByReference(c.Request.Context(), reference)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, registration)
}

// List godoc
// @ID           listRegistrations
// @Summary      List registrations
// @Tags         registrations
// @Produce      json
// @Param        member_id query string false "Filter by member" format(uuid)
// @Param        season_id query string false "Filter by season" format(uuid)
// @Param        status query string false "Filter by status" Enums(draft, pending_payment, paid, cancelled)
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Router       /registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	var filter membershipapp.RegistrationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.registrationService.ListRegistrations(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
