package handler

import (
	"github.com/gofiber/fiber/v2"

	"assembly-backend/internal/service"
)

// MemberHandler membres du tenant
type MemberHandler struct {
	members *service.MemberService
}

// NewMemberHandler MemberHandler
func NewMemberHandler(members *service.MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

// GetMembers membres actifs du tenant
func (h *MemberHandler) GetMembers(c *fiber.Ctx) error {
	members, err := h.members.ListMembers(tenantIDFromContext(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"members": members})
}

// GetMember membre par id
func (h *MemberHandler) GetMember(c *fiber.Ctx) error {
	memberID, err := paramInt64(c, "memberId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid member ID",
		})
	}

	member, err := h.members.GetMember(tenantIDFromContext(c), memberID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "member not found",
		})
	}
	return c.JSON(member)
}
