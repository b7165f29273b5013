package webhook

import (
	"encoding/json"

	"github.com/dibyendu2004/BrightPath/services"
	"github.com/dibyendu2004/BrightPath/utils/logger"
	"github.com/dibyendu2004/BrightPath/utils/response"
	"github.com/dibyendu2004/BrightPath/utils/webhook"
	"github.com/gofiber/fiber/v2"
)

// ClerkHandler receives signed user lifecycle events from the identity provider
type ClerkHandler struct {
	verifier *webhook.Verifier
	users    *services.UserService
	log      *logger.Logger
}

// NewClerkHandler creates the handler. A nil verifier rejects every event.
func NewClerkHandler(verifier *webhook.Verifier, users *services.UserService, log *logger.Logger) *ClerkHandler {
	return &ClerkHandler{verifier: verifier, users: users, log: log.With("handler", "clerk_webhook")}
}

// HandleEvent handles POST /api/webhooks/clerk
func (h *ClerkHandler) HandleEvent(c *fiber.Ctx) error {
	if h.verifier == nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "Webhook secret is not configured", string(services.KindUpstream))
	}

	body := c.Body()
	err := h.verifier.Verify(body,
		c.Get(webhook.HeaderID),
		c.Get(webhook.HeaderTimestamp),
		c.Get(webhook.HeaderSignature))
	if err != nil {
		h.log.Warn("Rejected webhook", "svix_id", c.Get(webhook.HeaderID), "error", err)
		return response.Error(c, fiber.StatusBadRequest, "Invalid webhook signature", response.CodeUnauthorized)
	}

	var event services.IdentityEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid webhook payload", response.CodeValidation)
	}

	if err := h.users.ApplyIdentityEvent(c.UserContext(), event); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Webhook Received", nil)
}
