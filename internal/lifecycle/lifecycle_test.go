package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"assembly-backend/internal/model"
)

func TestCanTransition_Table(t *testing.T) {
	tests := []struct {
		name string
		role model.Role
		from model.MeetingStatus
		to   model.MeetingStatus
		want bool
	}{
		{"operator schedules a draft", model.RoleOperator, model.MeetingStatusDraft, model.MeetingStatusScheduled, true},
		{"viewer cannot schedule", model.RoleViewer, model.MeetingStatusDraft, model.MeetingStatusScheduled, false},
		{"president freezes a draft", model.RolePresident, model.MeetingStatusDraft, model.MeetingStatusFrozen, true},
		{"operator cannot freeze", model.RoleOperator, model.MeetingStatusDraft, model.MeetingStatusFrozen, false},
		{"president freezes a scheduled meeting", model.RolePresident, model.MeetingStatusScheduled, model.MeetingStatusFrozen, true},
		{"admin reverts scheduled to draft", model.RoleAdmin, model.MeetingStatusScheduled, model.MeetingStatusDraft, true},
		{"president cannot revert scheduled to draft", model.RolePresident, model.MeetingStatusScheduled, model.MeetingStatusDraft, false},
		{"president opens a frozen meeting", model.RolePresident, model.MeetingStatusFrozen, model.MeetingStatusLive, true},
		{"admin unfreezes back to scheduled", model.RoleAdmin, model.MeetingStatusFrozen, model.MeetingStatusScheduled, true},
		{"operator pauses a live meeting", model.RoleOperator, model.MeetingStatusLive, model.MeetingStatusPaused, true},
		{"president closes a live meeting", model.RolePresident, model.MeetingStatusLive, model.MeetingStatusClosed, true},
		{"operator cannot close", model.RoleOperator, model.MeetingStatusLive, model.MeetingStatusClosed, false},
		{"operator resumes a paused meeting", model.RoleOperator, model.MeetingStatusPaused, model.MeetingStatusLive, true},
		{"president closes a paused meeting", model.RolePresident, model.MeetingStatusPaused, model.MeetingStatusClosed, true},
		{"president validates a closed meeting", model.RolePresident, model.MeetingStatusClosed, model.MeetingStatusValidated, true},
		{"admin archives a validated meeting", model.RoleAdmin, model.MeetingStatusValidated, model.MeetingStatusArchived, true},
		{"president cannot archive", model.RolePresident, model.MeetingStatusValidated, model.MeetingStatusArchived, false},
		{"no skipping draft to live", model.RoleAdmin, model.MeetingStatusDraft, model.MeetingStatusLive, false},
		{"no reopening a closed meeting", model.RoleAdmin, model.MeetingStatusClosed, model.MeetingStatusLive, false},
		{"no self transition", model.RoleAdmin, model.MeetingStatusLive, model.MeetingStatusLive, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.role, tt.from, tt.to))
		})
	}
}

func TestCanTransition_AdminCoversAllTableRows(t *testing.T) {
	for tr := range transitionRoles {
		assert.True(t, CanTransition(model.RoleAdmin, tr.From, tr.To),
			"admin refused %s -> %s", tr.From, tr.To)
	}
}

func TestCanTransition_ArchivedIsTerminal(t *testing.T) {
	roles := []model.Role{
		model.RoleAnonymous, model.RoleViewer, model.RoleAuditor,
		model.RoleOperator, model.RolePresident, model.RoleAdmin,
	}
	targets := []model.MeetingStatus{
		model.MeetingStatusDraft, model.MeetingStatusScheduled,
		model.MeetingStatusFrozen, model.MeetingStatusLive,
		model.MeetingStatusPaused, model.MeetingStatusClosed,
		model.MeetingStatusValidated, model.MeetingStatusArchived,
	}
	for _, role := range roles {
		for _, to := range targets {
			assert.False(t, CanTransition(role, model.MeetingStatusArchived, to),
				"%s escaped archived towards %s", role, to)
		}
		assert.Empty(t, AvailableTransitions(role, model.MeetingStatusArchived))
	}
}

func TestAvailableTransitions(t *testing.T) {
	assert.Equal(t,
		[]model.MeetingStatus{model.MeetingStatusScheduled},
		AvailableTransitions(model.RoleOperator, model.MeetingStatusDraft))

	assert.Equal(t,
		[]model.MeetingStatus{model.MeetingStatusScheduled, model.MeetingStatusFrozen},
		AvailableTransitions(model.RolePresident, model.MeetingStatusDraft))

	assert.Equal(t,
		[]model.MeetingStatus{model.MeetingStatusLive, model.MeetingStatusClosed},
		AvailableTransitions(model.RolePresident, model.MeetingStatusPaused))

	assert.Empty(t, AvailableTransitions(model.RoleViewer, model.MeetingStatusLive))
}

func TestRequiredRole(t *testing.T) {
	role, ok := RequiredRole(model.MeetingStatusClosed, model.MeetingStatusValidated)
	assert.True(t, ok)
	assert.Equal(t, model.RolePresident, role)

	_, ok = RequiredRole(model.MeetingStatusClosed, model.MeetingStatusDraft)
	assert.False(t, ok)
}

func TestApply(t *testing.T) {
	meeting := &model.Meeting{Status: model.MeetingStatusFrozen}

	assert.False(t, Apply(meeting, model.RoleOperator, model.MeetingStatusLive))
	assert.Equal(t, model.MeetingStatusFrozen, meeting.Status)

	assert.True(t, Apply(meeting, model.RolePresident, model.MeetingStatusLive))
	assert.Equal(t, model.MeetingStatusLive, meeting.Status)
}

func TestIsStatus(t *testing.T) {
	assert.True(t, IsStatus(model.MeetingStatusDraft))
	assert.False(t, IsStatus(model.MeetingStatus("cancelled")))
}
