package handler

import (
	"github.com/gofiber/fiber/v2"

	"assembly-backend/internal/auth"
	"assembly-backend/internal/cache"
	"assembly-backend/internal/model"
	"assembly-backend/internal/service"
)

// BallotHandler jetons de vote et dépôt des bulletins
type BallotHandler struct {
	motions *service.MotionService
	tokens  *service.VoteTokenService
	checker *auth.PermissionChecker
	redis   *cache.RedisClient
}

// NewBallotHandler BallotHandler
func NewBallotHandler(motions *service.MotionService, tokens *service.VoteTokenService, checker *auth.PermissionChecker, redis *cache.RedisClient) *BallotHandler {
	return &BallotHandler{motions: motions, tokens: tokens, checker: checker, redis: redis}
}

// IssueTokenRequest corps d'émission de jeton
type IssueTokenRequest struct {
	MemberID int64 `json:"member_id"`
}

// IssueToken émet un jeton de vote pour (membre, motion). Le jeton brut
// n'est renvoyé qu'ici, une seule fois.
func (h *BallotHandler) IssueToken(c *fiber.Ctx) error {
	motionID, err := paramInt64(c, "motionId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid motion ID",
		})
	}

	var req IssueTokenRequest
	if err := c.BodyParser(&req); err != nil || req.MemberID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "member_id is required",
		})
	}

	tenantID := tenantIDFromContext(c)
	motion, err := h.motions.Get(c.UserContext(), tenantID, motionID)
	if err != nil {
		return respondError(c, err)
	}
	if !motion.IsOpen() {
		return respondError(c, service.ErrMotionNotOpen)
	}

	raw, token, err := h.tokens.Generate(c.UserContext(), tenantID, motion.MeetingID, req.MemberID, motionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":      raw,
		"expires_at": token.ExpiresAt,
	})
}

// CastBallotRequest corps de dépôt de bulletin
type CastBallotRequest struct {
	MemberID    int64  `json:"member_id"`
	Value       string `json:"value"`
	Source      string `json:"source,omitempty"`
	IsProxyVote bool   `json:"is_proxy_vote"`
	Token       string `json:"token,omitempty"`
}

// CastBallot dépose un bulletin. La voie électronique exige un jeton; les
// voies manual/degraded exigent la permission de saisie manuelle.
func (h *BallotHandler) CastBallot(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}
	motionID, err := paramInt64(c, "motionId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid motion ID",
		})
	}

	var req CastBallotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	source := model.BallotSource(req.Source)
	if source == "" {
		source = model.SourceElectronic
	}
	if source != model.SourceElectronic &&
		!h.checker.Check(claims.CanonicalRole(), auth.PermBallotManualEntry) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "forbidden",
		})
	}

	tenantID := tenantIDFromContext(c)
	ballot, err := h.motions.CastBallot(c.UserContext(), tenantID, service.CastBallotInput{
		MotionID:      motionID,
		VoterMemberID: req.MemberID,
		Value:         model.BallotValue(req.Value),
		Source:        source,
		IsProxyVote:   req.IsProxyVote,
		Token:         req.Token,
	})
	if err != nil {
		return respondError(c, err)
	}

	// l'instantané de résultat ne survit pas à un nouveau bulletin
	if h.redis != nil {
		h.redis.InvalidateMotionResult(c.UserContext(), tenantID, motionID)
	}
	return c.Status(fiber.StatusCreated).JSON(ballot)
}
