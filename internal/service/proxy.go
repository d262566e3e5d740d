package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"assembly-backend/internal/model"
)

// DefaultReceiverCap plafond par défaut de mandants par mandataire
const DefaultReceiverCap = 99

// ProxyService graphe des délégations de pouvoir d'une assemblée.
// Invariants tenus sous concurrence: pas de chaîne à deux niveaux, degré
// entrant du mandataire plafonné, une seule délégation active par mandant.
type ProxyService struct {
	db          *gorm.DB
	members     *MemberService
	receiverCap int
}

// NewProxyService ProxyService; cap <= 0 retombe sur DefaultReceiverCap
func NewProxyService(db *gorm.DB, members *MemberService, receiverCap int) *ProxyService {
	if receiverCap <= 0 {
		receiverCap = DefaultReceiverCap
	}
	return &ProxyService{db: db, members: members, receiverCap: receiverCap}
}

// Upsert crée ou remplace la délégation active du mandant. receiverID nul
// est un alias de Revoke, pas une erreur. Toute la validation précède la
// moindre écriture; la ligne d'assemblée sert d'ancre de verrouillage, si
// bien que deux délégations simultanées dans la même assemblée se
// sérialisent et ne peuvent ni franchir le plafond ensemble ni former une
// chaîne par insertions croisées.
func (s *ProxyService) Upsert(ctx context.Context, tenantID, meetingID, giverID, receiverID int64) (*model.Proxy, error) {
	if giverID == 0 || meetingID == 0 || tenantID == 0 {
		return nil, ErrInvalidRequest
	}
	if receiverID == 0 {
		return nil, s.Revoke(ctx, tenantID, meetingID, giverID)
	}
	if giverID == receiverID {
		return nil, ErrSelfDelegation
	}
	if !s.members.IsActiveMember(tenantID, giverID) || !s.members.IsActiveMember(tenantID, receiverID) {
		return nil, ErrInvalidMember
	}

	var proxy *model.Proxy
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// verrouille la ligne d'assemblée: le balayage qui suit ne voit
		// pas d'insertions fantômes d'une transaction concurrente
		var meeting model.Meeting
		err := lockForUpdate(tx).
			Where("id = ? AND tenant_id = ?", meetingID, tenantID).
			First(&meeting).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMeetingNotFound
		}
		if err != nil {
			return err
		}

		// verrouille toutes les lignes actives touchant mandant et
		// mandataire dans cette assemblée
		var rows []model.Proxy
		if err := lockForUpdate(tx).
			Where("meeting_id = ? AND tenant_id = ? AND active = ?", meetingID, tenantID, true).
			Where("giver_member_id IN (?, ?) OR receiver_member_id IN (?, ?)",
				giverID, receiverID, giverID, receiverID).
			Find(&rows).Error; err != nil {
			return err
		}

		inDegree := 0
		var existing *model.Proxy
		for i := range rows {
			row := &rows[i]
			// le mandataire délègue déjà ailleurs: chaîne interdite
			if row.GiverMemberID == receiverID {
				return ErrChainForbidden
			}
			// le mandant détient déjà des pouvoirs: la forêt resterait
			// de profondeur > 1
			if row.ReceiverMemberID == giverID {
				return ErrChainForbidden
			}
			if row.ReceiverMemberID == receiverID && row.GiverMemberID != giverID {
				inDegree++
			}
			if row.GiverMemberID == giverID {
				existing = row
			}
		}
		if inDegree >= s.receiverCap {
			return ErrCapExceeded
		}

		// upsert idempotent: même délégation, rien à faire
		if existing != nil && existing.ReceiverMemberID == receiverID {
			proxy = existing
			return nil
		}
		if existing != nil {
			if err := tx.Model(existing).Update("active", false).Error; err != nil {
				return err
			}
		}

		proxy = &model.Proxy{
			TenantID:         tenantID,
			MeetingID:        meetingID,
			GiverMemberID:    giverID,
			ReceiverMemberID: receiverID,
			Active:           true,
		}
		return tx.Create(proxy).Error
	})
	if err != nil {
		return nil, err
	}
	return proxy, nil
}

// Revoke désactive la délégation active du mandant; no-op idempotent s'il
// n'y en a pas.
func (s *ProxyService) Revoke(ctx context.Context, tenantID, meetingID, giverID int64) error {
	if giverID == 0 || meetingID == 0 || tenantID == 0 {
		return ErrInvalidRequest
	}
	return s.db.WithContext(ctx).Model(&model.Proxy{}).
		Where("tenant_id = ? AND meeting_id = ? AND giver_member_id = ? AND active = ?",
			tenantID, meetingID, giverID, true).
		Update("active", false).Error
}

// HasActiveProxy existence d'une délégation active giver -> receiver,
// isolée par assemblée
func (s *ProxyService) HasActiveProxy(ctx context.Context, tenantID, meetingID, giverID, receiverID int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Proxy{}).
		Where("tenant_id = ? AND meeting_id = ? AND giver_member_id = ? AND receiver_member_id = ? AND active = ?",
			tenantID, meetingID, giverID, receiverID, true).
		Count(&count).Error
	return count > 0, err
}

// ActiveReceiverFor mandataire actif d'un mandant, nil si aucun
func (s *ProxyService) ActiveReceiverFor(ctx context.Context, tenantID, meetingID, giverID int64) (*model.Proxy, error) {
	var proxy model.Proxy
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND meeting_id = ? AND giver_member_id = ? AND active = ?",
			tenantID, meetingID, giverID, true).
		First(&proxy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &proxy, nil
}

// ListForMeeting délégations actives d'une assemblée
func (s *ProxyService) ListForMeeting(ctx context.Context, tenantID, meetingID int64) ([]model.Proxy, error) {
	var proxies []model.Proxy
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND meeting_id = ? AND active = ?", tenantID, meetingID, true).
		Order("id").Find(&proxies).Error
	return proxies, err
}
