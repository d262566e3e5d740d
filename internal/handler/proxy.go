package handler

import (
	"github.com/gofiber/fiber/v2"

	"assembly-backend/internal/service"
)

// ProxyHandler délégations de pouvoir
type ProxyHandler struct {
	proxies *service.ProxyService
}

// NewProxyHandler ProxyHandler
func NewProxyHandler(proxies *service.ProxyService) *ProxyHandler {
	return &ProxyHandler{proxies: proxies}
}

// UpsertProxyRequest corps de délégation; receiver_member_id nul vaut
// révocation
type UpsertProxyRequest struct {
	GiverMemberID    int64 `json:"giver_member_id"`
	ReceiverMemberID int64 `json:"receiver_member_id"`
}

// UpsertProxy crée ou remplace la délégation du mandant
func (h *ProxyHandler) UpsertProxy(c *fiber.Ctx) error {
	meetingID, err := paramInt64(c, "meetingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid meeting ID",
		})
	}

	var req UpsertProxyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	proxy, err := h.proxies.Upsert(c.UserContext(), tenantIDFromContext(c), meetingID,
		req.GiverMemberID, req.ReceiverMemberID)
	if err != nil {
		return respondError(c, err)
	}
	if proxy == nil {
		// alias de révocation
		return c.JSON(fiber.Map{"revoked": true})
	}
	return c.JSON(proxy)
}

// RevokeProxy révoque la délégation du mandant
func (h *ProxyHandler) RevokeProxy(c *fiber.Ctx) error {
	meetingID, err := paramInt64(c, "meetingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid meeting ID",
		})
	}
	giverID, err := paramInt64(c, "giverId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid giver ID",
		})
	}

	if err := h.proxies.Revoke(c.UserContext(), tenantIDFromContext(c), meetingID, giverID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"revoked": true})
}

// GetProxies délégations actives d'une assemblée
func (h *ProxyHandler) GetProxies(c *fiber.Ctx) error {
	meetingID, err := paramInt64(c, "meetingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid meeting ID",
		})
	}

	proxies, err := h.proxies.ListForMeeting(c.UserContext(), tenantIDFromContext(c), meetingID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"proxies": proxies})
}

// CheckProxy existence d'une délégation active giver -> receiver
func (h *ProxyHandler) CheckProxy(c *fiber.Ctx) error {
	meetingID, err := paramInt64(c, "meetingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid meeting ID",
		})
	}
	giverID, err := paramInt64(c, "giverId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid giver ID",
		})
	}
	receiverID, err := paramInt64(c, "receiverId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid receiver ID",
		})
	}

	active, err := h.proxies.HasActiveProxy(c.UserContext(), tenantIDFromContext(c), meetingID, giverID, receiverID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"active": active})
}
