package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assembly-backend/internal/model"
)

func newProxyFixture(t *testing.T, memberCount, cap int) (*ProxyService, *model.Meeting, []model.Member) {
	t.Helper()
	db := newTestDB(t)
	tenant, members := seedTenant(t, db, memberCount)
	meeting := seedMeeting(t, db, tenant.ID, model.MeetingStatusScheduled)
	return NewProxyService(db, NewMemberService(db), cap), meeting, members
}

func TestProxyUpsert_CreateAndReplace(t *testing.T) {
	svc, meeting, members := newProxyFixture(t, 3, 0)
	ctx := context.Background()
	tenantID := meeting.TenantID

	proxy, err := svc.Upsert(ctx, tenantID, meeting.ID, members[0].ID, members[1].ID)
	require.NoError(t, err)
	assert.Equal(t, members[1].ID, proxy.ReceiverMemberID)
	assert.True(t, proxy.Active)

	// le remplacement désactive l'ancienne délégation
	replaced, err := svc.Upsert(ctx, tenantID, meeting.ID, members[0].ID, members[2].ID)
	require.NoError(t, err)
	assert.Equal(t, members[2].ID, replaced.ReceiverMemberID)

	active, err := svc.ListForMeeting(ctx, tenantID, meeting.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, members[2].ID, active[0].ReceiverMemberID)
}

func TestProxyUpsert_Idempotent(t *testing.T) {
	svc, meeting, members := newProxyFixture(t, 2, 0)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, meeting.TenantID, meeting.ID, members[0].ID, members[1].ID)
	require.NoError(t, err)
	second, err := svc.Upsert(ctx, meeting.TenantID, meeting.ID, members[0].ID, members[1].ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	active, err := svc.ListForMeeting(ctx, meeting.TenantID, meeting.ID)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestProxyUpsert_SelfDelegation(t *testing.T) {
	svc, meeting, members := newProxyFixture(t, 1, 0)

	_, err := svc.Upsert(context.Background(), meeting.TenantID, meeting.ID, members[0].ID, members[0].ID)
	assert.ErrorIs(t, err, ErrSelfDelegation)
}

func TestProxyUpsert_ChainForbiddenBothWays(t *testing.T) {
	svc, meeting, members := newProxyFixture(t, 3, 0)
	ctx := context.Background()
	tenantID := meeting.TenantID

	// A délègue à B
	_, err := svc.Upsert(ctx, tenantID, meeting.ID, members[0].ID, members[1].ID)
	require.NoError(t, err)

	// C ne peut pas déléguer à A: A délègue déjà ailleurs
	_, err = svc.Upsert(ctx, tenantID, meeting.ID, members[2].ID, members[0].ID)
	assert.ErrorIs(t, err, ErrChainForbidden)

	// B ne peut pas déléguer à C: B détient déjà le pouvoir de A
	_, err = svc.Upsert(ctx, tenantID, meeting.ID, members[1].ID, members[2].ID)
	assert.ErrorIs(t, err, ErrChainForbidden)
}

func TestProxyUpsert_CapExceeded(t *testing.T) {
	svc, meeting, members := newProxyFixture(t, 4, 2)
	ctx := context.Background()
	tenantID := meeting.TenantID
	receiver := members[3].ID

	_, err := svc.Upsert(ctx, tenantID, meeting.ID, members[0].ID, receiver)
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, tenantID, meeting.ID, members[1].ID, receiver)
	require.NoError(t, err)

	// le troisième mandant dépasse le plafond de 2
	_, err = svc.Upsert(ctx, tenantID, meeting.ID, members[2].ID, receiver)
	assert.ErrorIs(t, err, ErrCapExceeded)
}

func TestProxyUpsert_ZeroReceiverIsRevokeAlias(t *testing.T) {
	svc, meeting, members := newProxyFixture(t, 2, 0)
	ctx := context.Background()
	tenantID := meeting.TenantID

	_, err := svc.Upsert(ctx, tenantID, meeting.ID, members[0].ID, members[1].ID)
	require.NoError(t, err)

	proxy, err := svc.Upsert(ctx, tenantID, meeting.ID, members[0].ID, 0)
	require.NoError(t, err)
	assert.Nil(t, proxy)

	has, err := svc.HasActiveProxy(ctx, tenantID, meeting.ID, members[0].ID, members[1].ID)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestProxyUpsert_Validation(t *testing.T) {
	svc, meeting, members := newProxyFixture(t, 2, 0)
	ctx := context.Background()
	tenantID := meeting.TenantID

	_, err := svc.Upsert(ctx, tenantID, meeting.ID, 0, members[1].ID)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Upsert(ctx, tenantID, 9999, members[0].ID, members[1].ID)
	assert.ErrorIs(t, err, ErrMeetingNotFound)

	// membre inconnu
	_, err = svc.Upsert(ctx, tenantID, meeting.ID, members[0].ID, 9999)
	assert.ErrorIs(t, err, ErrInvalidMember)
}

func TestProxyUpsert_InactiveMemberRejected(t *testing.T) {
	db := newTestDB(t)
	tenant, members := seedTenant(t, db, 2)
	meeting := seedMeeting(t, db, tenant.ID, model.MeetingStatusScheduled)
	require.NoError(t, db.Model(&members[1]).Update("active", false).Error)

	svc := NewProxyService(db, NewMemberService(db), 0)
	_, err := svc.Upsert(context.Background(), tenant.ID, meeting.ID, members[0].ID, members[1].ID)
	assert.ErrorIs(t, err, ErrInvalidMember)
}

func TestProxyRevoke_Idempotent(t *testing.T) {
	svc, meeting, members := newProxyFixture(t, 2, 0)
	ctx := context.Background()

	// révoquer sans délégation active est un no-op
	require.NoError(t, svc.Revoke(ctx, meeting.TenantID, meeting.ID, members[0].ID))

	_, err := svc.Upsert(ctx, meeting.TenantID, meeting.ID, members[0].ID, members[1].ID)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, meeting.TenantID, meeting.ID, members[0].ID))
	require.NoError(t, svc.Revoke(ctx, meeting.TenantID, meeting.ID, members[0].ID))

	receiver, err := svc.ActiveReceiverFor(ctx, meeting.TenantID, meeting.ID, members[0].ID)
	require.NoError(t, err)
	assert.Nil(t, receiver)
}

func TestProxy_IsolatedPerMeeting(t *testing.T) {
	db := newTestDB(t)
	tenant, members := seedTenant(t, db, 2)
	first := seedMeeting(t, db, tenant.ID, model.MeetingStatusScheduled)
	second := seedMeeting(t, db, tenant.ID, model.MeetingStatusLive)

	svc := NewProxyService(db, NewMemberService(db), 0)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, tenant.ID, first.ID, members[0].ID, members[1].ID)
	require.NoError(t, err)

	has, err := svc.HasActiveProxy(ctx, tenant.ID, second.ID, members[0].ID, members[1].ID)
	require.NoError(t, err)
	assert.False(t, has)

	// une délégation inverse dans l'autre assemblée reste permise
	_, err = svc.Upsert(ctx, tenant.ID, second.ID, members[1].ID, members[0].ID)
	require.NoError(t, err)
}
