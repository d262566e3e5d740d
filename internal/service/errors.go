package service

// ErrorKind catégorie d'erreur métier, mappée côté handler sur un statut
// HTTP (validation=400, state/conflict=409, not_found=404).
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindState      ErrorKind = "state"
	KindNotFound   ErrorKind = "not_found"
)

// GovError erreur typée du moteur de gouvernance. Le code est la seule
// donnée exposée au client; aucun texte libre n'est formaté ici.
type GovError struct {
	Kind ErrorKind
	Code string
}

func (e *GovError) Error() string {
	return e.Code
}

var (
	// validation
	ErrInvalidRequest = &GovError{Kind: KindValidation, Code: "invalid_request"}
	ErrSelfDelegation = &GovError{Kind: KindValidation, Code: "self_delegation"}
	ErrInvalidMember  = &GovError{Kind: KindValidation, Code: "invalid_member"}
	ErrChainForbidden = &GovError{Kind: KindValidation, Code: "chain_forbidden"}
	ErrCapExceeded    = &GovError{Kind: KindValidation, Code: "cap_exceeded"}

	// état
	ErrInvalidTransition   = &GovError{Kind: KindState, Code: "invalid_transition"}
	ErrInvalidMeetingState = &GovError{Kind: KindState, Code: "invalid_meeting_state"}
	ErrMotionNotOpen       = &GovError{Kind: KindState, Code: "motion_not_open"}
	ErrMotionClosed        = &GovError{Kind: KindState, Code: "motion_closed"}
	ErrTokenAlreadyUsed    = &GovError{Kind: KindState, Code: "token_already_used"}
	ErrTokenExpired        = &GovError{Kind: KindState, Code: "token_expired"}

	// introuvable
	ErrMeetingNotFound = &GovError{Kind: KindNotFound, Code: "meeting_not_found"}
	ErrMotionNotFound  = &GovError{Kind: KindNotFound, Code: "motion_not_found"}
	ErrPolicyNotFound  = &GovError{Kind: KindNotFound, Code: "policy_not_found"}
	ErrTokenNotFound   = &GovError{Kind: KindNotFound, Code: "token_not_found"}
)
