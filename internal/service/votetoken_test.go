package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assembly-backend/internal/model"
)

func newTokenFixture(t *testing.T, expiry time.Duration) (*VoteTokenService, *model.Motion, []model.Member) {
	t.Helper()
	db := newTestDB(t)
	tenant, members := seedTenant(t, db, 2)
	meeting := seedMeeting(t, db, tenant.ID, model.MeetingStatusLive)
	motion := &model.Motion{TenantID: tenant.ID, MeetingID: meeting.ID, Title: "Budget prévisionnel"}
	require.NoError(t, db.Create(motion).Error)
	return NewVoteTokenService(db, NewMemberService(db), "secret-de-test", expiry), motion, members
}

func TestHashToken_DeterministicHex(t *testing.T) {
	svc, _, _ := newTokenFixture(t, time.Hour)

	hash := svc.HashToken("abc")
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, svc.HashToken("abc"))
	assert.NotEqual(t, hash, svc.HashToken("abd"))

	// une autre clé donne une autre empreinte
	other := NewVoteTokenService(nil, nil, "autre-secret", time.Hour)
	assert.NotEqual(t, hash, other.HashToken("abc"))
}

func TestGenerate_RawNeverStored(t *testing.T) {
	svc, motion, members := newTokenFixture(t, time.Hour)
	ctx := context.Background()

	raw, token, err := svc.Generate(ctx, motion.TenantID, motion.MeetingID, members[0].ID, motion.ID)
	require.NoError(t, err)
	assert.Len(t, raw, 64)
	assert.Equal(t, svc.HashToken(raw), token.TokenHash)
	assert.NotEqual(t, raw, token.TokenHash)
	assert.Nil(t, token.UsedAt)
}

func TestGenerate_RequiresActiveMember(t *testing.T) {
	svc, motion, members := newTokenFixture(t, time.Hour)
	ctx := context.Background()

	// membre inconnu
	_, _, err := svc.Generate(ctx, motion.TenantID, motion.MeetingID, 9999, motion.ID)
	assert.ErrorIs(t, err, ErrInvalidMember)

	// membre désactivé
	require.NoError(t, svc.db.Model(&members[1]).Update("active", false).Error)
	_, _, err = svc.Generate(ctx, motion.TenantID, motion.MeetingID, members[1].ID, motion.ID)
	assert.ErrorIs(t, err, ErrInvalidMember)
}

func TestValidate_DoesNotConsume(t *testing.T) {
	svc, motion, members := newTokenFixture(t, time.Hour)
	ctx := context.Background()

	raw, _, err := svc.Generate(ctx, motion.TenantID, motion.MeetingID, members[0].ID, motion.ID)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		token, err := svc.Validate(ctx, motion.TenantID, raw)
		require.NoError(t, err)
		assert.Nil(t, token.UsedAt)
	}
}

func TestValidateAndConsume_SingleUse(t *testing.T) {
	svc, motion, members := newTokenFixture(t, time.Hour)
	ctx := context.Background()

	raw, _, err := svc.Generate(ctx, motion.TenantID, motion.MeetingID, members[0].ID, motion.ID)
	require.NoError(t, err)

	token, err := svc.ValidateAndConsume(ctx, motion.TenantID, motion.ID, members[0].ID, raw)
	require.NoError(t, err)
	assert.NotNil(t, token.UsedAt)

	// la seconde consommation échoue, même empreinte ou pas
	_, err = svc.ValidateAndConsume(ctx, motion.TenantID, motion.ID, members[0].ID, raw)
	assert.ErrorIs(t, err, ErrTokenAlreadyUsed)
	_, err = svc.Validate(ctx, motion.TenantID, raw)
	assert.ErrorIs(t, err, ErrTokenAlreadyUsed)
}

func TestValidateAndConsume_WrongBindingLeavesTokenIntact(t *testing.T) {
	svc, motion, members := newTokenFixture(t, time.Hour)
	ctx := context.Background()

	raw, _, err := svc.Generate(ctx, motion.TenantID, motion.MeetingID, members[0].ID, motion.ID)
	require.NoError(t, err)

	// mauvaise motion: refus sans consommation
	_, err = svc.ValidateAndConsume(ctx, motion.TenantID, motion.ID+1, members[0].ID, raw)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	// mauvais membre: refus sans consommation
	_, err = svc.ValidateAndConsume(ctx, motion.TenantID, motion.ID, members[1].ID, raw)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	// le jeton reste utilisable sur son rattachement légitime
	token, err := svc.ValidateAndConsume(ctx, motion.TenantID, motion.ID, members[0].ID, raw)
	require.NoError(t, err)
	assert.NotNil(t, token.UsedAt)
}

func TestValidateAndConsume_Expired(t *testing.T) {
	svc, motion, members := newTokenFixture(t, -time.Minute)
	ctx := context.Background()

	raw, _, err := svc.Generate(ctx, motion.TenantID, motion.MeetingID, members[0].ID, motion.ID)
	require.NoError(t, err)

	_, err = svc.ValidateAndConsume(ctx, motion.TenantID, motion.ID, members[0].ID, raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateAndConsume_UnknownToken(t *testing.T) {
	svc, motion, members := newTokenFixture(t, time.Hour)

	_, err := svc.ValidateAndConsume(context.Background(), motion.TenantID, motion.ID, members[0].ID, "jeton-inconnu")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestValidate_WrongTenant(t *testing.T) {
	svc, motion, members := newTokenFixture(t, time.Hour)
	ctx := context.Background()

	raw, _, err := svc.Generate(ctx, motion.TenantID, motion.MeetingID, members[0].ID, motion.ID)
	require.NoError(t, err)

	_, err = svc.Validate(ctx, motion.TenantID+1, raw)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestRevokeForMotion_SparesConsumedTokens(t *testing.T) {
	svc, motion, members := newTokenFixture(t, time.Hour)
	ctx := context.Background()

	usedRaw, _, err := svc.Generate(ctx, motion.TenantID, motion.MeetingID, members[0].ID, motion.ID)
	require.NoError(t, err)
	_, _, err = svc.Generate(ctx, motion.TenantID, motion.MeetingID, members[1].ID, motion.ID)
	require.NoError(t, err)

	_, err = svc.ValidateAndConsume(ctx, motion.TenantID, motion.ID, members[0].ID, usedRaw)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeForMotion(ctx, motion.TenantID, motion.ID))

	var count int64
	require.NoError(t, svc.db.Model(&model.VoteToken{}).
		Where("motion_id = ?", motion.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
