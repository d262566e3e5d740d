package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"assembly-backend/internal/model"
	"assembly-backend/internal/presence"
	"assembly-backend/internal/service"
)

// AttendanceHandler feuille d'émargement et présence distancielle
type AttendanceHandler struct {
	attendance *service.AttendanceService
	presence   *presence.Manager
}

// NewAttendanceHandler AttendanceHandler
func NewAttendanceHandler(attendance *service.AttendanceService, presenceMgr *presence.Manager) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, presence: presenceMgr}
}

// UpsertAttendanceRequest corps d'émargement
type UpsertAttendanceRequest struct {
	MemberID    int64           `json:"member_id"`
	Mode        string          `json:"mode"`
	VotingPower decimal.Decimal `json:"voting_power"`
}

// UpsertAttendance émarge un membre
func (h *AttendanceHandler) UpsertAttendance(c *fiber.Ctx) error {
	meetingID, err := paramInt64(c, "meetingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid meeting ID",
		})
	}

	var req UpsertAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.VotingPower.IsZero() {
		req.VotingPower = decimal.NewFromInt(1)
	}

	record, err := h.attendance.Upsert(c.UserContext(), tenantIDFromContext(c), meetingID,
		req.MemberID, model.AttendanceMode(req.Mode), req.VotingPower)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(record)
}

// GetAttendance émargements d'une assemblée
func (h *AttendanceHandler) GetAttendance(c *fiber.Ctx) error {
	meetingID, err := paramInt64(c, "meetingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid meeting ID",
		})
	}

	records, err := h.attendance.List(c.UserContext(), tenantIDFromContext(c), meetingID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"attendance": records})
}

// HeartbeatRequest battement de présence distancielle
type HeartbeatRequest struct {
	MemberID int64 `json:"member_id"`
}

// Heartbeat maintient la présence d'un votant distant
func (h *AttendanceHandler) Heartbeat(c *fiber.Ctx) error {
	if h.presence == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "presence not available",
		})
	}
	meetingID, err := paramInt64(c, "meetingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid meeting ID",
		})
	}

	var req HeartbeatRequest
	if err := c.BodyParser(&req); err != nil || req.MemberID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "member_id is required",
		})
	}

	if err := h.presence.Heartbeat(c.UserContext(), meetingID, req.MemberID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to record heartbeat",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// RemoteConnected nombre de votants distants connectés
func (h *AttendanceHandler) RemoteConnected(c *fiber.Ctx) error {
	if h.presence == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "presence not available",
		})
	}
	meetingID, err := paramInt64(c, "meetingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid meeting ID",
		})
	}

	count, err := h.presence.ConnectedCount(c.UserContext(), meetingID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to read presence",
		})
	}
	return c.JSON(fiber.Map{"connected": count})
}
