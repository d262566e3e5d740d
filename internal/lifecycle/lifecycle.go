// Package lifecycle porte la machine à états des assemblées. La table de
// transitions est l'unique source de vérité: la couche permission et les
// handlers la consultent tous les deux, il n'existe pas de seconde copie à
// garder synchronisée.
package lifecycle

import (
	"assembly-backend/internal/model"
)

// Transition arête orientée du graphe d'états
type Transition struct {
	From model.MeetingStatus
	To   model.MeetingStatus
}

// transitionRoles rôle minimal requis par transition. Toute paire absente
// de cette table est interdite, y compris pour admin. archived est
// terminal: aucune arête sortante.
var transitionRoles = map[Transition]model.Role{
	{model.MeetingStatusDraft, model.MeetingStatusScheduled}:    model.RoleOperator,
	{model.MeetingStatusDraft, model.MeetingStatusFrozen}:       model.RolePresident,
	{model.MeetingStatusScheduled, model.MeetingStatusFrozen}:   model.RolePresident,
	{model.MeetingStatusScheduled, model.MeetingStatusDraft}:    model.RoleAdmin,
	{model.MeetingStatusFrozen, model.MeetingStatusLive}:        model.RolePresident,
	{model.MeetingStatusFrozen, model.MeetingStatusScheduled}:   model.RoleAdmin,
	{model.MeetingStatusLive, model.MeetingStatusPaused}:        model.RoleOperator,
	{model.MeetingStatusLive, model.MeetingStatusClosed}:        model.RolePresident,
	{model.MeetingStatusPaused, model.MeetingStatusLive}:        model.RoleOperator,
	{model.MeetingStatusPaused, model.MeetingStatusClosed}:      model.RolePresident,
	{model.MeetingStatusClosed, model.MeetingStatusValidated}:   model.RolePresident,
	{model.MeetingStatusValidated, model.MeetingStatusArchived}: model.RoleAdmin,
}

// statuses ensemble des statuts connus
var statuses = map[model.MeetingStatus]bool{
	model.MeetingStatusDraft:     true,
	model.MeetingStatusScheduled: true,
	model.MeetingStatusFrozen:    true,
	model.MeetingStatusLive:      true,
	model.MeetingStatusPaused:    true,
	model.MeetingStatusClosed:    true,
	model.MeetingStatusValidated: true,
	model.MeetingStatusArchived:  true,
}

// IsStatus vrai si s est un statut connu
func IsStatus(s model.MeetingStatus) bool {
	return statuses[s]
}

// RequiredRole rôle minimal pour une transition, false si la transition
// n'existe pas
func RequiredRole(from, to model.MeetingStatus) (model.Role, bool) {
	role, ok := transitionRoles[Transition{From: from, To: to}]
	return role, ok
}

// CanTransition vrai si le rôle peut effectuer from -> to. Un rôle
// supérieur couvre les transitions des rôles inférieurs; admin couvre tout
// ce qui figure dans la table.
func CanTransition(role model.Role, from, to model.MeetingStatus) bool {
	required, ok := transitionRoles[Transition{From: from, To: to}]
	if !ok {
		return false
	}
	return role.AtLeast(required)
}

// AvailableTransitions statuts atteignables depuis from pour ce rôle
func AvailableTransitions(role model.Role, from model.MeetingStatus) []model.MeetingStatus {
	// ordre stable pour les réponses API
	order := []model.MeetingStatus{
		model.MeetingStatusDraft,
		model.MeetingStatusScheduled,
		model.MeetingStatusFrozen,
		model.MeetingStatusLive,
		model.MeetingStatusPaused,
		model.MeetingStatusClosed,
		model.MeetingStatusValidated,
		model.MeetingStatusArchived,
	}
	var out []model.MeetingStatus
	for _, to := range order {
		if CanTransition(role, from, to) {
			out = append(out, to)
		}
	}
	return out
}

// Apply valide la transition et met à jour le statut du meeting en
// mémoire. La persistance reste au service appelant.
func Apply(meeting *model.Meeting, role model.Role, to model.MeetingStatus) bool {
	if !CanTransition(role, meeting.Status, to) {
		return false
	}
	meeting.Status = to
	return true
}
