package service

import (
	"assembly-backend/internal/model"

	"gorm.io/gorm"
)

// MemberService appartenance et rôles des membres d'un tenant
type MemberService struct {
	db *gorm.DB
}

// NewMemberService MemberService
func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{db: db}
}

// IsActiveMember le membre existe et est actif dans ce tenant
func (s *MemberService) IsActiveMember(tenantID, memberID int64) bool {
	var count int64
	s.db.Model(&model.Member{}).
		Where("tenant_id = ? AND id = ? AND active = ?", tenantID, memberID, true).
		Count(&count)
	return count > 0
}

// GetMember membre par id, borné au tenant
func (s *MemberService) GetMember(tenantID, memberID int64) (*model.Member, error) {
	var member model.Member
	err := s.db.Where("tenant_id = ? AND id = ?", tenantID, memberID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetRole rôle canonique d'un membre; anonymous si introuvable
func (s *MemberService) GetRole(tenantID, memberID int64) model.Role {
	member, err := s.GetMember(tenantID, memberID)
	if err != nil {
		return model.RoleAnonymous
	}
	return model.ParseRole(member.Role)
}

// ListMembers membres actifs du tenant
func (s *MemberService) ListMembers(tenantID int64) ([]model.Member, error) {
	var members []model.Member
	err := s.db.Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("id").Find(&members).Error
	return members, err
}
