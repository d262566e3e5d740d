package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"assembly-backend/internal/cache"
	"assembly-backend/internal/service"
)

// ResultHandler résultats de motion
type ResultHandler struct {
	motions  *service.MotionService
	redis    *cache.RedisClient
	cacheTTL time.Duration
}

// NewResultHandler ResultHandler
func NewResultHandler(motions *service.MotionService, redis *cache.RedisClient, cacheTTL time.Duration) *ResultHandler {
	return &ResultHandler{motions: motions, redis: redis, cacheTTL: cacheTTL}
}

// GetResult calcule (ou relit du cache) la décision d'une motion
func (h *ResultHandler) GetResult(c *fiber.Ctx) error {
	motionID, err := paramInt64(c, "motionId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid motion ID",
		})
	}
	tenantID := tenantIDFromContext(c)

	if h.redis != nil {
		var cached service.MotionResult
		if ok, err := h.redis.GetMotionResult(c.UserContext(), tenantID, motionID, &cached); err == nil && ok {
			return c.JSON(cached)
		}
	}

	result, err := h.motions.Result(c.UserContext(), tenantID, motionID)
	if err != nil {
		return respondError(c, err)
	}

	if h.redis != nil {
		h.redis.SetMotionResult(c.UserContext(), tenantID, motionID, result, h.cacheTTL)
	}
	return c.JSON(result)
}
