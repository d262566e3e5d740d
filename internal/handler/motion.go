package handler

import (
	"github.com/gofiber/fiber/v2"

	"assembly-backend/internal/cache"
	"assembly-backend/internal/service"
)

// MotionHandler motions et scrutins
type MotionHandler struct {
	motions *service.MotionService
	redis   *cache.RedisClient
}

// NewMotionHandler MotionHandler
func NewMotionHandler(motions *service.MotionService, redis *cache.RedisClient) *MotionHandler {
	return &MotionHandler{motions: motions, redis: redis}
}

// CreateMotionRequest corps de création de motion
type CreateMotionRequest struct {
	Title          string `json:"title"`
	VotePolicyID   *int64 `json:"vote_policy_id,omitempty"`
	QuorumPolicyID *int64 `json:"quorum_policy_id,omitempty"`
	Secret         bool   `json:"secret"`
}

// CreateMotion crée une motion
func (h *MotionHandler) CreateMotion(c *fiber.Ctx) error {
	meetingID, err := paramInt64(c, "meetingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid meeting ID",
		})
	}

	var req CreateMotionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	motion, err := h.motions.Create(c.UserContext(), tenantIDFromContext(c), meetingID,
		req.Title, req.VotePolicyID, req.QuorumPolicyID, req.Secret)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(motion)
}

// GetMotions motions d'une assemblée
func (h *MotionHandler) GetMotions(c *fiber.Ctx) error {
	meetingID, err := paramInt64(c, "meetingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid meeting ID",
		})
	}

	motions, err := h.motions.ListForMeeting(c.UserContext(), tenantIDFromContext(c), meetingID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"motions": motions})
}

// GetMotion motion par id
func (h *MotionHandler) GetMotion(c *fiber.Ctx) error {
	motionID, err := paramInt64(c, "motionId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid motion ID",
		})
	}

	motion, err := h.motions.Get(c.UserContext(), tenantIDFromContext(c), motionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(motion)
}

// OpenMotion ouvre le scrutin
func (h *MotionHandler) OpenMotion(c *fiber.Ctx) error {
	motionID, err := paramInt64(c, "motionId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid motion ID",
		})
	}

	motion, err := h.motions.Open(c.UserContext(), tenantIDFromContext(c), motionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(motion)
}

// CloseMotion clôt le scrutin; l'instantané de résultat en cache est
// invalidé, le résultat définitif sera recalculé à la demande
func (h *MotionHandler) CloseMotion(c *fiber.Ctx) error {
	motionID, err := paramInt64(c, "motionId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid motion ID",
		})
	}

	tenantID := tenantIDFromContext(c)
	motion, err := h.motions.Close(c.UserContext(), tenantID, motionID)
	if err != nil {
		return respondError(c, err)
	}
	if h.redis != nil {
		h.redis.InvalidateMotionResult(c.UserContext(), tenantID, motionID)
	}
	return c.JSON(motion)
}
