package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"gorm.io/gorm"

	"assembly-backend/internal/model"
)

// VoteTokenService jetons anonymes de vote électronique. Le jeton brut est
// un aléa de 256 bits encodé hex, remis une seule fois à l'appelant; seule
// son empreinte HMAC-SHA256 (clé secrète serveur) est persistée et
// comparée.
type VoteTokenService struct {
	db      *gorm.DB
	members *MemberService
	secret  []byte
	expiry  time.Duration
}

// NewVoteTokenService VoteTokenService
func NewVoteTokenService(db *gorm.DB, members *MemberService, secret string, expiry time.Duration) *VoteTokenService {
	return &VoteTokenService{db: db, members: members, secret: []byte(secret), expiry: expiry}
}

// HashToken empreinte HMAC-SHA256 du jeton brut, 64 caractères hex
func (s *VoteTokenService) HashToken(raw string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// Generate émet un jeton lié à (assemblée, membre, motion). Retourne le
// jeton brut, jamais stocké, et la ligne persistée.
func (s *VoteTokenService) Generate(ctx context.Context, tenantID, meetingID, memberID, motionID int64) (string, *model.VoteToken, error) {
	if tenantID == 0 || meetingID == 0 || memberID == 0 || motionID == 0 {
		return "", nil, ErrInvalidRequest
	}
	if !s.members.IsActiveMember(tenantID, memberID) {
		return "", nil, ErrInvalidMember
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, err
	}
	raw := hex.EncodeToString(buf)

	token := &model.VoteToken{
		TokenHash: s.HashToken(raw),
		TenantID:  tenantID,
		MeetingID: meetingID,
		MemberID:  memberID,
		MotionID:  motionID,
		ExpiresAt: time.Now().Add(s.expiry),
	}
	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		return "", nil, err
	}
	return raw, token, nil
}

// checkToken validation commune: introuvable, puis expiré, puis déjà
// utilisé. L'expiration est vérifiée avant l'usage, une empreinte exacte
// ne sauve pas un jeton périmé.
func checkToken(token *model.VoteToken, now time.Time) error {
	if now.After(token.ExpiresAt) {
		return ErrTokenExpired
	}
	if token.UsedAt != nil {
		return ErrTokenAlreadyUsed
	}
	return nil
}

// Validate vérifie le jeton sans le consommer
func (s *VoteTokenService) Validate(ctx context.Context, tenantID int64, raw string) (*model.VoteToken, error) {
	var token model.VoteToken
	err := s.db.WithContext(ctx).
		Where("token_hash = ? AND tenant_id = ?", s.HashToken(raw), tenantID).
		First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := checkToken(&token, time.Now()); err != nil {
		return nil, err
	}
	return &token, nil
}

// ValidateAndConsume vérifie puis brûle le jeton. La ligne est lue sous
// verrou dans la transaction: deux consommations concurrentes donnent
// exactement un gagnant, les autres échouent en token_already_used. Le
// rattachement (motion, membre) est contrôlé sous le même verrou, avant
// toute écriture: un jeton présenté sur la mauvaise motion est refusé
// sans être brûlé.
func (s *VoteTokenService) ValidateAndConsume(ctx context.Context, tenantID, motionID, memberID int64, raw string) (*model.VoteToken, error) {
	var token model.VoteToken
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).
			Where("token_hash = ? AND tenant_id = ?", s.HashToken(raw), tenantID).
			First(&token).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenNotFound
		}
		if err != nil {
			return err
		}
		now := time.Now()
		if err := checkToken(&token, now); err != nil {
			return err
		}
		if token.MotionID != motionID || token.MemberID != memberID {
			return ErrInvalidRequest
		}
		token.UsedAt = &now
		return tx.Model(&token).Update("used_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// Consume brûle un jeton déjà validé, par id
func (s *VoteTokenService) Consume(ctx context.Context, tenantID, tokenID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var token model.VoteToken
		err := lockForUpdate(tx).
			Where("id = ? AND tenant_id = ?", tokenID, tenantID).
			First(&token).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenNotFound
		}
		if err != nil {
			return err
		}
		now := time.Now()
		if err := checkToken(&token, now); err != nil {
			return err
		}
		return tx.Model(&token).Update("used_at", now).Error
	})
}

// RevokeForMotion supprime les jetons non consommés d'une motion (clôture)
func (s *VoteTokenService) RevokeForMotion(ctx context.Context, tenantID, motionID int64) error {
	return s.db.WithContext(ctx).
		Where("tenant_id = ? AND motion_id = ? AND used_at IS NULL", tenantID, motionID).
		Delete(&model.VoteToken{}).Error
}
