package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"assembly-backend/internal/model"
)

// PolicyService règles de quorum et de majorité d'un tenant
type PolicyService struct {
	db *gorm.DB
}

// NewPolicyService PolicyService
func NewPolicyService(db *gorm.DB) *PolicyService {
	return &PolicyService{db: db}
}

var one = decimal.NewFromInt(1)

// thresholdInRange seuil dans [0,1]
func thresholdInRange(t decimal.Decimal) bool {
	return !t.IsNegative() && t.LessThanOrEqual(one)
}

// CreateQuorumPolicy valide et persiste une règle de quorum
func (s *PolicyService) CreateQuorumPolicy(ctx context.Context, policy *model.QuorumPolicy) (*model.QuorumPolicy, error) {
	if policy.TenantID == 0 || policy.Name == "" {
		return nil, ErrInvalidRequest
	}
	if policy.Basis != model.BasisEligibleMembers && policy.Basis != model.BasisEligibleWeight {
		return nil, ErrInvalidRequest
	}
	if !thresholdInRange(policy.Threshold1) {
		return nil, ErrInvalidRequest
	}
	if policy.Threshold2 != nil && !thresholdInRange(*policy.Threshold2) {
		return nil, ErrInvalidRequest
	}
	if policy.Mode == model.QuorumModeDouble {
		if policy.SecondaryBasis == nil || policy.SecondaryThreshold == nil {
			return nil, ErrInvalidRequest
		}
		if !thresholdInRange(*policy.SecondaryThreshold) {
			return nil, ErrInvalidRequest
		}
	}
	if policy.Mode == "" {
		policy.Mode = model.QuorumModeSingle
	}
	if err := s.db.WithContext(ctx).Create(policy).Error; err != nil {
		return nil, err
	}
	return policy, nil
}

// CreateVotePolicy valide et persiste une règle de majorité
func (s *PolicyService) CreateVotePolicy(ctx context.Context, policy *model.VotePolicy) (*model.VotePolicy, error) {
	if policy.TenantID == 0 || policy.Name == "" {
		return nil, ErrInvalidRequest
	}
	if policy.Base != model.VoteBaseExpressed && policy.Base != model.VoteBaseEligible {
		return nil, ErrInvalidRequest
	}
	if !thresholdInRange(policy.Threshold) {
		return nil, ErrInvalidRequest
	}
	if err := s.db.WithContext(ctx).Create(policy).Error; err != nil {
		return nil, err
	}
	return policy, nil
}

// GetQuorumPolicy règle de quorum par id, bornée au tenant
func (s *PolicyService) GetQuorumPolicy(ctx context.Context, tenantID, policyID int64) (*model.QuorumPolicy, error) {
	var policy model.QuorumPolicy
	err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", policyID, tenantID).
		First(&policy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// GetVotePolicy règle de majorité par id, bornée au tenant
func (s *PolicyService) GetVotePolicy(ctx context.Context, tenantID, policyID int64) (*model.VotePolicy, error) {
	var policy model.VotePolicy
	err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", policyID, tenantID).
		First(&policy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// ListQuorumPolicies règles de quorum du tenant
func (s *PolicyService) ListQuorumPolicies(ctx context.Context, tenantID int64) ([]model.QuorumPolicy, error) {
	var policies []model.QuorumPolicy
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).Order("id").Find(&policies).Error
	return policies, err
}

// ListVotePolicies règles de majorité du tenant
func (s *PolicyService) ListVotePolicies(ctx context.Context, tenantID int64) ([]model.VotePolicy, error) {
	var policies []model.VotePolicy
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).Order("id").Find(&policies).Error
	return policies, err
}
