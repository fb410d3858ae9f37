package handler

import (
	"github.com/gin-gonic/gin"
	billingapp "github.com/rinkpass/backend/internal/application/billing"
	"github.com/rinkpass/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// StripeSignatureHeader carries the webhook signature Stripe computes over
// the raw payload
const StripeSignatureHeader = "Stripe-Signature"

// WebhookHandler handles Stripe webhook deliveries
type WebhookHandler struct {
	BaseHandler
	webhookService *billingapp.WebhookService
	metrics        *telemetry.SyncMetrics
	logger         *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler. metrics may be nil when
// telemetry is disabled.
func NewWebhookHandler(webhookService *billingapp.WebhookService, metrics *telemetry.SyncMetrics, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		metrics:        metrics,
		logger:         logger,
	}
}

// HandleStripe godoc
// @ID           stripeWebhook
// @Summary      Receive a Stripe webhook
// @Description  Verifies the signature against the raw payload and processes
// @Description  the event. Redelivered events are acknowledged without
// @Description  reprocessing. Processing failures return 500 so Stripe
// @Description  retries the delivery.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature header string true "Stripe signature"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /webhooks/stripe [post]
func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}

	signature := c.GetHeader(StripeSignatureHeader)
	if signature == "" {
		h.BadRequest(c, "Missing Stripe-Signature header")
		return
	}

	result, err := h.webhookService.Process(c.Request.Context(), payload, signature)
	if err != nil {
		eventType := "unknown"
		if result != nil {
			eventType = result.EventType
		}
		if h.metrics != nil {
			h.metrics.RecordWebhook(c.Request.Context(), eventType, false)
		}
		h.HandleDomainError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordWebhook(c.Request.Context(), result.EventType, true)
	}

	h.logger.Debug("webhook processed",
		zap.String("event_id", result.EventID),
		zap.String("event_type", result.EventType),
		zap.Bool("already_processed", result.AlreadyProcessed))

	h.Success(c, gin.H{
		"event_id":          result.EventID,
		"event_type":        result.EventType,
		"already_processed": result.AlreadyProcessed,
	})
}
