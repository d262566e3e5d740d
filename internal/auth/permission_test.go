package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"assembly-backend/internal/model"
)

func TestCheck_CumulativeHierarchy(t *testing.T) {
	checker := NewPermissionChecker()

	// viewer: lecture seule
	assert.True(t, checker.Check(model.RoleViewer, PermMeetingRead))
	assert.True(t, checker.Check(model.RoleViewer, PermResultRead))
	assert.False(t, checker.Check(model.RoleViewer, PermAttendanceRead))
	assert.False(t, checker.Check(model.RoleViewer, PermBallotCast))

	// auditor hérite de viewer
	assert.True(t, checker.Check(model.RoleAuditor, PermMeetingRead))
	assert.True(t, checker.Check(model.RoleAuditor, PermProxyRead))
	assert.False(t, checker.Check(model.RoleAuditor, PermProxyWrite))

	// operator hérite d'auditor
	assert.True(t, checker.Check(model.RoleOperator, PermPolicyRead))
	assert.True(t, checker.Check(model.RoleOperator, PermBallotManualEntry))
	assert.True(t, checker.Check(model.RoleOperator, PermTokenIssue))
	assert.False(t, checker.Check(model.RoleOperator, PermMotionManage))
	assert.False(t, checker.Check(model.RoleOperator, PermPolicyWrite))

	// president hérite d'operator
	assert.True(t, checker.Check(model.RolePresident, PermBallotCast))
	assert.True(t, checker.Check(model.RolePresident, PermMotionManage))
	assert.True(t, checker.Check(model.RolePresident, PermPolicyWrite))
	assert.False(t, checker.Check(model.RolePresident, PermTenantManage))

	// admin a tout
	assert.True(t, checker.Check(model.RoleAdmin, PermTenantManage))
	assert.True(t, checker.Check(model.RoleAdmin, PermMeetingRead))
}

func TestCheck_AnonymousAndUnknown(t *testing.T) {
	checker := NewPermissionChecker()

	assert.False(t, checker.Check(model.RoleAnonymous, PermMeetingRead))
	assert.False(t, checker.Check(model.Role("superuser"), PermMeetingRead))
}

func TestParseRole_Aliases(t *testing.T) {
	assert.Equal(t, model.RoleAuditor, model.ParseRole("trust"))
	assert.Equal(t, model.RoleViewer, model.ParseRole("readonly"))
	assert.Equal(t, model.RolePresident, model.ParseRole("president"))
	assert.Equal(t, model.RoleAnonymous, model.ParseRole("manager"))
	assert.Equal(t, model.RoleAnonymous, model.ParseRole(""))
}

func TestPermissions_SortedAndFlattened(t *testing.T) {
	checker := NewPermissionChecker()

	viewer := checker.Permissions(model.RoleViewer)
	assert.Equal(t, []Permission{PermMeetingRead, PermMotionRead, PermResultRead}, viewer)

	auditor := checker.Permissions(model.RoleAuditor)
	assert.Len(t, auditor, 6)
	assert.Contains(t, auditor, PermMeetingRead)
	assert.Contains(t, auditor, PermPolicyRead)

	admin := checker.Permissions(model.RoleAdmin)
	assert.Contains(t, admin, PermTenantManage)
	assert.Len(t, admin, 15)

	assert.Nil(t, checker.Permissions(model.Role("superuser")))
}

func TestCanTransition_DelegatesToLifecycle(t *testing.T) {
	checker := NewPermissionChecker()

	assert.True(t, checker.CanTransition(model.RolePresident, model.MeetingStatusFrozen, model.MeetingStatusLive))
	assert.False(t, checker.CanTransition(model.RoleOperator, model.MeetingStatusFrozen, model.MeetingStatusLive))
	assert.False(t, checker.CanTransition(model.RoleAdmin, model.MeetingStatusArchived, model.MeetingStatusDraft))
}
