package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"assembly-backend/internal/lifecycle"
	"assembly-backend/internal/model"
)

// MeetingService cycle de vie des assemblées
type MeetingService struct {
	db *gorm.DB
}

// NewMeetingService MeetingService
func NewMeetingService(db *gorm.DB) *MeetingService {
	return &MeetingService{db: db}
}

// Create nouvelle assemblée en brouillon
func (s *MeetingService) Create(ctx context.Context, tenantID int64, title string, convocationNo int, scheduledAt *time.Time) (*model.Meeting, error) {
	if tenantID == 0 || title == "" {
		return nil, ErrInvalidRequest
	}
	if convocationNo != 1 && convocationNo != 2 {
		return nil, ErrInvalidRequest
	}
	meeting := &model.Meeting{
		TenantID:      tenantID,
		Title:         title,
		Code:          uuid.NewString(),
		Status:        model.MeetingStatusDraft,
		ConvocationNo: convocationNo,
		ScheduledAt:   scheduledAt,
	}
	if err := s.db.WithContext(ctx).Create(meeting).Error; err != nil {
		return nil, err
	}
	return meeting, nil
}

// Get assemblée par id, bornée au tenant
func (s *MeetingService) Get(ctx context.Context, tenantID, meetingID int64) (*model.Meeting, error) {
	var meeting model.Meeting
	err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", meetingID, tenantID).
		First(&meeting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMeetingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

// List assemblées du tenant
func (s *MeetingService) List(ctx context.Context, tenantID int64) ([]model.Meeting, error) {
	var meetings []model.Meeting
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").Find(&meetings).Error
	return meetings, err
}

// Transition applique un changement de statut autorisé par la table du
// package lifecycle. Le statut est relu sous verrou pour qu'une transition
// concurrente ne parte pas d'un état périmé.
func (s *MeetingService) Transition(ctx context.Context, tenantID, meetingID int64, role model.Role, to model.MeetingStatus) (*model.Meeting, error) {
	if !lifecycle.IsStatus(to) {
		return nil, ErrInvalidRequest
	}
	var meeting model.Meeting
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).
			Where("id = ? AND tenant_id = ?", meetingID, tenantID).
			First(&meeting).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMeetingNotFound
		}
		if err != nil {
			return err
		}
		if !lifecycle.Apply(&meeting, role, to) {
			return ErrInvalidTransition
		}
		return tx.Model(&meeting).Update("status", meeting.Status).Error
	})
	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

// AvailableTransitions statuts atteignables pour ce rôle
func (s *MeetingService) AvailableTransitions(ctx context.Context, tenantID, meetingID int64, role model.Role) ([]model.MeetingStatus, error) {
	meeting, err := s.Get(ctx, tenantID, meetingID)
	if err != nil {
		return nil, err
	}
	return lifecycle.AvailableTransitions(role, meeting.Status), nil
}
