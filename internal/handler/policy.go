package handler

import (
	"github.com/gofiber/fiber/v2"

	"assembly-backend/internal/model"
	"assembly-backend/internal/service"
)

// PolicyHandler règles de quorum et de majorité
type PolicyHandler struct {
	policies *service.PolicyService
}

// NewPolicyHandler PolicyHandler
func NewPolicyHandler(policies *service.PolicyService) *PolicyHandler {
	return &PolicyHandler{policies: policies}
}

// CreateQuorumPolicy crée une règle de quorum
func (h *PolicyHandler) CreateQuorumPolicy(c *fiber.Ctx) error {
	var policy model.QuorumPolicy
	if err := c.BodyParser(&policy); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	policy.TenantID = tenantIDFromContext(c)

	created, err := h.policies.CreateQuorumPolicy(c.UserContext(), &policy)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetQuorumPolicies règles de quorum du tenant
func (h *PolicyHandler) GetQuorumPolicies(c *fiber.Ctx) error {
	policies, err := h.policies.ListQuorumPolicies(c.UserContext(), tenantIDFromContext(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"quorum_policies": policies})
}

// CreateVotePolicy crée une règle de majorité
func (h *PolicyHandler) CreateVotePolicy(c *fiber.Ctx) error {
	var policy model.VotePolicy
	if err := c.BodyParser(&policy); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	policy.TenantID = tenantIDFromContext(c)

	created, err := h.policies.CreateVotePolicy(c.UserContext(), &policy)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetVotePolicies règles de majorité du tenant
func (h *PolicyHandler) GetVotePolicies(c *fiber.Ctx) error {
	policies, err := h.policies.ListVotePolicies(c.UserContext(), tenantIDFromContext(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"vote_policies": policies})
}
