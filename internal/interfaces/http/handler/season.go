package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	membershipapp "github.com/rinkpass/backend/internal/application/membership"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/rinkpass/backend/internal/interfaces/http/dto"
)

// SeasonHandler handles season-related API endpoints
type SeasonHandler struct {
	BaseHandler
	seasonService *membershipapp.SeasonService
}

// NewSeasonHandler creates a new SeasonHandler
func NewSeasonHandler(seasonService *membershipapp.SeasonService) *SeasonHandler {
	return &SeasonHandler{
		seasonService: seasonService,
	}
}

// Create godoc
// @ID           createSeason
// @Summary      Create a new season
// @Tags         seasons
// @Accept       json
// @Produce      json
// @Param        request body membership.CreateSeasonRequest true "Season creation request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /seasons [post]
func (h *SeasonHandler) Create(c *gin.Context) {
	var req membershipapp.CreateSeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	season, err := h.seasonService.CreateSeason(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, season)
}

// GetByID godoc
// @ID           getSeasonById
// @Summary      Get season by ID
// @Tags         seasons
// @Produce      json
// @Param        id path string true "Season ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /seasons/{id} [get]
func (h *SeasonHandler) GetByID(c *gin.Context) {
	seasonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid season ID format")
		return
	}

	season, err := h.seasonService.GetSeason(c.Request.Context(), seasonID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, season)
}

// List godoc
// @ID           listSeasons
// @Summary      List seasons
// @Tags         seasons
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response
// @Router       /seasons [get]
func (h *SeasonHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}

	result, err := h.seasonService.ListSeasons(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @ID           updateSeason
// @Summary      Update a season
// @Description  Rename a season or adjust its registration window
// @Tags         seasons
// @Accept       json
// @Produce      json
// @Param        id path string true "Season ID" format(uuid)
// @Param        request body membership.UpdateSeasonRequest true "Season update request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /seasons/{id} [put]
func (h *SeasonHandler) Update(c *gin.Context) {
	seasonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid season ID format")
		return
	}

	var req membershipapp.UpdateSeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	season, err := h.seasonService.UpdateSeason(c.Request.Context(), seasonID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, season)
}

// Delete godoc
// @ID           deleteSeason
// @Summary      Delete a season
// @Description  Delete a season that has no registrations
// @Tags         seasons
// @Produce      json
// @Param        id path string true "Season ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /seasons/{id} [delete]
func (h *SeasonHandler) Delete(c *gin.Context) {
	seasonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid season ID format")
		return
	}

	if err := h.seasonService.DeleteSeason(c.Request.Context(), seasonID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
