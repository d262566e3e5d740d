package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"assembly-backend/internal/model"
)

// AttendanceService feuille d'émargement d'une assemblée
type AttendanceService struct {
	db      *gorm.DB
	members *MemberService
}

// NewAttendanceService AttendanceService
func NewAttendanceService(db *gorm.DB, members *MemberService) *AttendanceService {
	return &AttendanceService{db: db, members: members}
}

var attendanceModes = map[model.AttendanceMode]bool{
	model.AttendancePresent: true,
	model.AttendanceRemote:  true,
	model.AttendanceProxy:   true,
	model.AttendanceExcused: true,
	model.AttendanceAbsent:  true,
}

// checkInStatuses statuts d'assemblée acceptant un émargement
var checkInStatuses = map[model.MeetingStatus]bool{
	model.MeetingStatusScheduled: true,
	model.MeetingStatusFrozen:    true,
	model.MeetingStatusLive:      true,
	model.MeetingStatusPaused:    true,
}

// Upsert enregistre ou met à jour l'émargement d'un membre
func (s *AttendanceService) Upsert(ctx context.Context, tenantID, meetingID, memberID int64, mode model.AttendanceMode, votingPower decimal.Decimal) (*model.AttendanceRecord, error) {
	if tenantID == 0 || meetingID == 0 || memberID == 0 || !attendanceModes[mode] {
		return nil, ErrInvalidRequest
	}
	if votingPower.IsNegative() {
		return nil, ErrInvalidRequest
	}

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
	if !checkInStatuses[meeting.Status] {
		return nil, ErrInvalidMeetingState
	}
	if !s.members.IsActiveMember(tenantID, memberID) {
		return nil, ErrInvalidMember
	}

	var record model.AttendanceRecord
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).
			Where("tenant_id = ? AND meeting_id = ? AND member_id = ?", tenantID, meetingID, memberID).
			First(&record).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil {
			record.Mode = mode
			record.VotingPower = votingPower
			return tx.Save(&record).Error
		}
		record = model.AttendanceRecord{
			TenantID:    tenantID,
			MeetingID:   meetingID,
			MemberID:    memberID,
			Mode:        mode,
			VotingPower: votingPower,
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// List émargements d'une assemblée
func (s *AttendanceService) List(ctx context.Context, tenantID, meetingID int64) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND meeting_id = ?", tenantID, meetingID).
		Order("member_id").Find(&records).Error
	return records, err
}
