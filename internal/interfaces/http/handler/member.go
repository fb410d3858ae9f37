package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	membershipapp "github.com/rinkpass/backend/internal/application/membership"
)

// MemberHandler handles member-related API endpoints
type MemberHandler struct {
	BaseHandler
	memberService *membershipapp.MemberService
}

// NewMemberHandler creates a new MemberHandler
func NewMemberHandler(memberService *membershipapp.MemberService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
	}
}

// Create godoc
// @ID           createMember
// @Summary      Create a new member
// @Description  Register a new association member
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        request body membership.CreateMemberRequest true "Member creation request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /members [post]
func (h *MemberHandler) Create(c *gin.Context) {
	var req membershipapp.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.CreateMember(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, member)
}

// GetByID godoc
// @ID           getMemberById
// @Summary      Get member by ID
// @Description  Retrieve a member by its ID
// @Tags         members
// @Produce      json
// @Param        id path string true "Member ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /members/{id} [get]
func (h *MemberHandler) GetByID(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid member ID format")
		return
	}

	member, err := h.memberService.GetMember(c.Request.Context(), memberID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, member)
}

// List godoc
// @ID           listMembers
// @Summary      List members
// @Description  List members with filtering and pagination
// @Tags         members
// @Produce      json
// @Param        search query string false "Search by name or email"
// @Param        status query string false "Filter by status" Enums(ACTIVE, INACTIVE, ARCHIVED)
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Router       /members [get]
func (h *MemberHandler) List(c *gin.Context) {
	var filter membershipapp.MemberListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.memberService.ListMembers(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @ID           updateMember
// @Summary      Update member contact details
// @Description  Update a member's email, phone, or emergency contact
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        id path string true "Member ID" format(uuid)
// @Param        request body membership.UpdateMemberRequest true "Member update request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /members/{id} [put]
func (h *MemberHandler) Update(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid member ID format")
		return
	}

	var req membershipapp.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.UpdateMember(c.Request.Context(), memberID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, member)
}

// Deactivate godoc
// @ID           deactivateMember
// @Summary      Deactivate a member
// @Tags         members
// @Produce      json
// @Param        id path string true "Member ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /members/{id}/deactivate [post]
func (h *MemberHandler) Deactivate(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid member ID format")
		return
	}

	if err := h.memberService.DeactivateMember(c.Request.Context(), memberID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Reactivate godoc
// @ID           reactivateMember
// @Summary      Reactivate a member
// @Tags         members
// @Produce      json
// @Param        id path string true "Member ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /members/{id}/reactivate [post]
func (h *MemberHandler) Reactivate(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid member ID format")
		return
	}

	if err := h.memberService.ReactivateMember(c.Request.Context(), memberID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Archive godoc
// @ID           archiveMember
// @Summary      Archive a member
// @Description  Archive a member record. Archived members are excluded from
// @Description  registration but retained for history.
// @Tags         members
// @Produce      json
// @Param        id path string true "Member ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /members/{id}/archive [post]
func (h *MemberHandler) Archive(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid member ID format")
		return
	}

	if err := h.memberService.ArchiveMember(c.Request.Context(), memberID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// UploadDocument godoc
// @ID           uploadMemberDocument
// @Summary      Upload a member document
// @Description  Attach an identity or consent document to the member record
// @Tags         members
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Member ID" format(uuid)
// @Param        file formData file true "Document file"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /members/{id}/document [post]
func (h *MemberHandler) UploadDocument(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid member ID format")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing document file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Failed to read document file")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	member, err := h.memberService.UploadDocument(c.Request.Context(), memberID, fileHeader.Filename, contentType, file)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, member)
}

// DocumentURL godoc
// @ID           getMemberDocumentUrl
// @Summary      Get a presigned URL for a member document
// @Tags         members
// @Produce      json
// @Param        id path string true "Member ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /members/{id}/document [get]
func (h *MemberHandler) DocumentURL(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid member ID format")
		return
	}

	url, err := h.memberService.DocumentURL(c.Request.Context(), memberID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"url": url})
}
