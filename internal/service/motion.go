package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"assembly-backend/internal/model"
)

// MotionService motions d'une assemblée: création, ouverture/clôture du
// scrutin, dépôt des bulletins et calcul du résultat.
type MotionService struct {
	db      *gorm.DB
	members *MemberService
	engine  *VoteEngine
	tokens  *VoteTokenService
}

// NewMotionService MotionService
func NewMotionService(db *gorm.DB, members *MemberService, engine *VoteEngine, tokens *VoteTokenService) *MotionService {
	return &MotionService{db: db, members: members, engine: engine, tokens: tokens}
}

// Create nouvelle motion; les politiques référencées doivent exister dans
// le tenant.
func (s *MotionService) Create(ctx context.Context, tenantID, meetingID int64, title string, votePolicyID, quorumPolicyID *int64, secret bool) (*model.Motion, error) {
	if tenantID == 0 || meetingID == 0 || title == "" {
		return nil, ErrInvalidRequest
	}
	db := s.db.WithContext(ctx)

	var meetingCount int64
	if err := db.Model(&model.Meeting{}).
		Where("id = ? AND tenant_id = ?", meetingID, tenantID).
		Count(&meetingCount).Error; err != nil {
		return nil, err
	}
	if meetingCount == 0 {
		return nil, ErrMeetingNotFound
	}

	if votePolicyID != nil {
		var count int64
		if err := db.Model(&model.VotePolicy{}).
			Where("id = ? AND tenant_id = ?", *votePolicyID, tenantID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrPolicyNotFound
		}
	}
	if quorumPolicyID != nil {
		var count int64
		if err := db.Model(&model.QuorumPolicy{}).
			Where("id = ? AND tenant_id = ?", *quorumPolicyID, tenantID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrPolicyNotFound
		}
	}

	motion := &model.Motion{
		TenantID:       tenantID,
		MeetingID:      meetingID,
		Title:          title,
		VotePolicyID:   votePolicyID,
		QuorumPolicyID: quorumPolicyID,
		Secret:         secret,
	}
	if err := db.Create(motion).Error; err != nil {
		return nil, err
	}
	return motion, nil
}

// Get motion par id, bornée au tenant
func (s *MotionService) Get(ctx context.Context, tenantID, motionID int64) (*model.Motion, error) {
	var motion model.Motion
	err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", motionID, tenantID).
		First(&motion).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMotionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &motion, nil
}

// ListForMeeting motions d'une assemblée
func (s *MotionService) ListForMeeting(ctx context.Context, tenantID, meetingID int64) ([]model.Motion, error) {
	var motions []model.Motion
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND meeting_id = ?", tenantID, meetingID).
		Order("id").Find(&motions).Error
	return motions, err
}

// Open ouvre le scrutin. Une motion déjà clôturée ne rouvre jamais.
func (s *MotionService) Open(ctx context.Context, tenantID, motionID int64) (*model.Motion, error) {
	var motion model.Motion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).
			Where("id = ? AND tenant_id = ?", motionID, tenantID).
			First(&motion).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMotionNotFound
		}
		if err != nil {
			return err
		}
		if motion.ClosedAt != nil {
			return ErrMotionClosed
		}
		if motion.OpenedAt != nil {
			return nil // déjà ouverte, idempotent
		}
		now := time.Now()
		motion.OpenedAt = &now
		return tx.Model(&motion).Update("opened_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	return &motion, nil
}

// Close clôt le scrutin et révoque les jetons non consommés. Plus aucun
// bulletin n'est accepté une fois closed_at posé.
func (s *MotionService) Close(ctx context.Context, tenantID, motionID int64) (*model.Motion, error) {
	var motion model.Motion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).
			Where("id = ? AND tenant_id = ?", motionID, tenantID).
			First(&motion).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMotionNotFound
		}
		if err != nil {
			return err
		}
		if !motion.IsOpen() {
			return ErrMotionNotOpen
		}
		now := time.Now()
		motion.ClosedAt = &now
		if err := tx.Model(&motion).Update("closed_at", now).Error; err != nil {
			return err
		}
		return tx.Where("tenant_id = ? AND motion_id = ? AND used_at IS NULL", tenantID, motionID).
			Delete(&model.VoteToken{}).Error
	})
	if err != nil {
		return nil, err
	}
	return &motion, nil
}

// CastBallotInput paramètres de dépôt d'un bulletin
type CastBallotInput struct {
	MotionID      int64
	VoterMemberID int64
	Value         model.BallotValue
	Source        model.BallotSource
	IsProxyVote   bool
	// Token jeton brut, requis pour la voie électronique
	Token string
}

var ballotValues = map[model.BallotValue]bool{
	model.BallotFor:     true,
	model.BallotAgainst: true,
	model.BallotAbstain: true,
	model.BallotNSP:     true,
}

// CastBallot dépose ou remplace le bulletin du votant. La voie
// électronique consomme d'abord le jeton (usage unique); un nouveau dépôt
// avant clôture remplace le bulletin précédent, au plus un bulletin actif
// par (motion, votant).
func (s *MotionService) CastBallot(ctx context.Context, tenantID int64, in CastBallotInput) (*model.Ballot, error) {
	if in.MotionID == 0 || in.VoterMemberID == 0 || !ballotValues[in.Value] {
		return nil, ErrInvalidRequest
	}
	motion, err := s.Get(ctx, tenantID, in.MotionID)
	if err != nil {
		return nil, err
	}
	if motion.ClosedAt != nil {
		return nil, ErrMotionClosed
	}
	if !motion.IsOpen() {
		return nil, ErrMotionNotOpen
	}
	if !s.members.IsActiveMember(tenantID, in.VoterMemberID) {
		return nil, ErrInvalidMember
	}

	if in.Source == "" {
		in.Source = model.SourceElectronic
	}
	if in.Source == model.SourceElectronic {
		if _, err := s.tokens.ValidateAndConsume(ctx, tenantID, in.MotionID, in.VoterMemberID, in.Token); err != nil {
			return nil, err
		}
	}

	weight := s.ballotWeight(ctx, tenantID, motion.MeetingID, in.VoterMemberID)

	var ballot model.Ballot
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).
			Where("tenant_id = ? AND motion_id = ? AND voter_member_id = ?",
				tenantID, in.MotionID, in.VoterMemberID).
			First(&ballot).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil {
			ballot.Value = in.Value
			ballot.Weight = weight
			ballot.IsProxyVote = in.IsProxyVote
			ballot.Source = in.Source
			ballot.CastAt = time.Now()
			return tx.Save(&ballot).Error
		}
		ballot = model.Ballot{
			TenantID:      tenantID,
			MotionID:      in.MotionID,
			VoterMemberID: in.VoterMemberID,
			Value:         in.Value,
			Weight:        weight,
			IsProxyVote:   in.IsProxyVote,
			Source:        in.Source,
		}
		return tx.Create(&ballot).Error
	})
	if err != nil {
		return nil, err
	}
	return &ballot, nil
}

// ballotWeight pouvoir de vote du votant d'après l'émargement, 1 à défaut
func (s *MotionService) ballotWeight(ctx context.Context, tenantID, meetingID, memberID int64) decimal.Decimal {
	var rec model.AttendanceRecord
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND meeting_id = ? AND member_id = ?", tenantID, meetingID, memberID).
		First(&rec).Error
	if err != nil {
		return decimal.NewFromInt(1)
	}
	return rec.VotingPower
}

// Result calcule la décision de la motion sur un instantané cohérent
// (bulletins et émargement lus dans une même transaction).
func (s *MotionService) Result(ctx context.Context, tenantID, motionID int64) (*MotionResult, error) {
	motion, err := s.Get(ctx, tenantID, motionID)
	if err != nil {
		return nil, err
	}

	var (
		meeting      model.Meeting
		ballots      []model.Ballot
		attendance   []model.AttendanceRecord
		votePolicy   *model.VotePolicy
		quorumPolicy *model.QuorumPolicy
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND tenant_id = ?", motion.MeetingID, tenantID).
			First(&meeting).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND motion_id = ?", tenantID, motionID).
			Find(&ballots).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND meeting_id = ?", tenantID, motion.MeetingID).
			Find(&attendance).Error; err != nil {
			return err
		}
		if motion.VotePolicyID != nil {
			votePolicy = &model.VotePolicy{}
			if err := tx.Where("id = ? AND tenant_id = ?", *motion.VotePolicyID, tenantID).
				First(votePolicy).Error; err != nil {
				return err
			}
		}
		if motion.QuorumPolicyID != nil {
			quorumPolicy = &model.QuorumPolicy{}
			if err := tx.Where("id = ? AND tenant_id = ?", *motion.QuorumPolicyID, tenantID).
				First(quorumPolicy).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := s.engine.ComputeMotionResult(&meeting, motion, ballots, attendance, votePolicy, quorumPolicy)
	return &result, nil
}
