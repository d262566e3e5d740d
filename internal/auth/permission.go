package auth

import (
	"sort"

	"assembly-backend/internal/lifecycle"
	"assembly-backend/internal/model"
)

// Permission code de permission statique
type Permission string

const (
	PermMeetingRead       Permission = "meeting.read"
	PermMeetingCreate     Permission = "meeting.create"
	PermMotionRead        Permission = "motion.read"
	PermMotionManage      Permission = "motion.manage"
	PermResultRead        Permission = "result.read"
	PermAttendanceRead    Permission = "attendance.read"
	PermAttendanceWrite   Permission = "attendance.write"
	PermProxyRead         Permission = "proxy.read"
	PermProxyWrite        Permission = "proxy.write"
	PermBallotCast        Permission = "ballot.cast"
	PermBallotManualEntry Permission = "ballot.manual_entry"
	PermPolicyRead        Permission = "policy.read"
	PermPolicyWrite       Permission = "policy.write"
	PermTokenIssue        Permission = "token.issue"
	PermTenantManage      Permission = "tenant.manage"
)

// roleGrants permissions accordées par rôle, cumulatives le long de la
// hiérarchie. admin n'y figure pas: il a tout, inconditionnellement.
var roleGrants = map[model.Role][]Permission{
	model.RoleViewer: {
		PermMeetingRead, PermMotionRead, PermResultRead,
	},
	model.RoleAuditor: {
		PermAttendanceRead, PermProxyRead, PermPolicyRead,
	},
	model.RoleOperator: {
		PermMeetingCreate, PermAttendanceWrite, PermProxyWrite,
		PermBallotCast, PermBallotManualEntry, PermTokenIssue,
	},
	model.RolePresident: {
		PermMotionManage, PermPolicyWrite,
	},
}

// PermissionChecker consultation des tables statiques de permissions et de
// transitions. Les tables sont figées à la construction; aucun état
// mutable, aucun singleton.
type PermissionChecker struct {
	flattened map[model.Role]map[Permission]bool
	all       []Permission
}

// NewPermissionChecker construit les ensembles aplatis une fois pour toutes
func NewPermissionChecker() *PermissionChecker {
	hierarchy := []model.Role{
		model.RoleViewer, model.RoleAuditor, model.RoleOperator, model.RolePresident,
	}

	flattened := make(map[model.Role]map[Permission]bool)
	flattened[model.RoleAnonymous] = map[Permission]bool{}

	allSet := map[Permission]bool{PermTenantManage: true}
	acc := map[Permission]bool{}
	for _, role := range hierarchy {
		for _, perm := range roleGrants[role] {
			acc[perm] = true
			allSet[perm] = true
		}
		set := make(map[Permission]bool, len(acc))
		for perm := range acc {
			set[perm] = true
		}
		flattened[role] = set
	}
	flattened[model.RoleAdmin] = allSet

	all := make([]Permission, 0, len(allSet))
	for perm := range allSet {
		all = append(all, perm)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })

	return &PermissionChecker{flattened: flattened, all: all}
}

// Check le rôle détient-il la permission. admin passe toujours; un rôle
// inconnu est traité en anonymous (aucune permission).
func (p *PermissionChecker) Check(role model.Role, perm Permission) bool {
	if role == model.RoleAdmin {
		return true
	}
	set, ok := p.flattened[role]
	if !ok {
		return false
	}
	return set[perm]
}

// CanTransition délègue à l'unique table de transitions du package
// lifecycle, sans seconde copie côté permissions.
func (p *PermissionChecker) CanTransition(role model.Role, from, to model.MeetingStatus) bool {
	return lifecycle.CanTransition(role, from, to)
}

// Permissions ensemble aplati et trié des permissions du rôle, pour
// l'introspection côté UI
func (p *PermissionChecker) Permissions(role model.Role) []Permission {
	if role == model.RoleAdmin {
		out := make([]Permission, len(p.all))
		copy(out, p.all)
		return out
	}
	set, ok := p.flattened[role]
	if !ok {
		return nil
	}
	out := make([]Permission, 0, len(set))
	for perm := range set {
		out = append(out, perm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
