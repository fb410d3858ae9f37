package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rinkpass/backend/internal/domain/accounting"
	"github.com/rinkpass/backend/internal/infrastructure/scheduler"
)

// CronHandler handles externally triggered scheduled jobs. Deployments
// without a reliable in-process clock, for example scale-to-zero hosts, hit
// this endpoint from an external cron service instead of relying on the
// built-in scheduler.
type CronHandler struct {
	BaseHandler
	scheduler *scheduler.DailySyncScheduler
}

// NewCronHandler creates a new CronHandler
func NewCronHandler(s *scheduler.DailySyncScheduler) *CronHandler {
	return &CronHandler{
		scheduler: s,
	}
}

// RunDailySync godoc
// @ID           runDailySync
// @Summary      Run the nightly job
// @Description  Charges due installments and runs a Xero batch sync pass.
// @Description  Guarded by the shared cron secret.
// @Tags         cron
// @Produce      json
// @Param        X-Cron-Secret header string true "Shared cron secret"
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /cron/daily-sync [post]
func (h *CronHandler) RunDailySync(c *gin.Context) {
	result, err := h.scheduler.RunNow(c.Request.Context(), accounting.SyncTriggerCron)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
