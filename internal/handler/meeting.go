package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"assembly-backend/internal/auth"
	"assembly-backend/internal/model"
	"assembly-backend/internal/service"
)

// MeetingHandler assemblées et transitions de statut
type MeetingHandler struct {
	meetings *service.MeetingService
}

// NewMeetingHandler MeetingHandler
func NewMeetingHandler(meetings *service.MeetingService) *MeetingHandler {
	return &MeetingHandler{meetings: meetings}
}

// CreateMeetingRequest corps de création d'assemblée
type CreateMeetingRequest struct {
	Title         string     `json:"title"`
	ConvocationNo int        `json:"convocation_no"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`
}

// CreateMeeting crée une assemblée en brouillon
func (h *MeetingHandler) CreateMeeting(c *fiber.Ctx) error {
	var req CreateMeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.ConvocationNo == 0 {
		req.ConvocationNo = 1
	}

	meeting, err := h.meetings.Create(c.UserContext(), tenantIDFromContext(c), req.Title, req.ConvocationNo, req.ScheduledAt)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(meeting)
}

// GetMeetings assemblées du tenant
func (h *MeetingHandler) GetMeetings(c *fiber.Ctx) error {
	meetings, err := h.meetings.List(c.UserContext(), tenantIDFromContext(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"meetings": meetings})
}

// GetMeeting assemblée par id
func (h *MeetingHandler) GetMeeting(c *fiber.Ctx) error {
	meetingID, err := paramInt64(c, "meetingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid meeting ID",
		})
	}

	meeting, err := h.meetings.Get(c.UserContext(), tenantIDFromContext(c), meetingID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(meeting)
}

// TransitionRequest corps de changement de statut
type TransitionRequest struct {
	To string `json:"to"`
}

// Transition applique un changement de statut; le rôle vient des claims
func (h *MeetingHandler) Transition(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}
	meetingID, err := paramInt64(c, "meetingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid meeting ID",
		})
	}

	var req TransitionRequest
	if err := c.BodyParser(&req); err != nil || req.To == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "target status is required",
		})
	}

	meeting, err := h.meetings.Transition(c.UserContext(), tenantIDFromContext(c), meetingID,
		claims.CanonicalRole(), model.MeetingStatus(req.To))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(meeting)
}

// AvailableTransitions statuts atteignables pour le rôle courant
func (h *MeetingHandler) AvailableTransitions(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}
	meetingID, err := paramInt64(c, "meetingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid meeting ID",
		})
	}

	transitions, err := h.meetings.AvailableTransitions(c.UserContext(), tenantIDFromContext(c), meetingID, claims.CanonicalRole())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"transitions": transitions})
}
