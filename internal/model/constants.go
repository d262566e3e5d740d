package model

// MeetingStatus statut d'une assemblée
type MeetingStatus string

const (
	MeetingStatusDraft     MeetingStatus = "draft"
	MeetingStatusScheduled MeetingStatus = "scheduled"
	MeetingStatusFrozen    MeetingStatus = "frozen"
	MeetingStatusLive      MeetingStatus = "live"
	MeetingStatusPaused    MeetingStatus = "paused"
	MeetingStatusClosed    MeetingStatus = "closed"
	MeetingStatusValidated MeetingStatus = "validated"
	MeetingStatusArchived  MeetingStatus = "archived"
)

func (s MeetingStatus) String() string {
	return string(s)
}

// AttendanceMode mode de participation d'un membre
type AttendanceMode string

const (
	AttendancePresent AttendanceMode = "present"
	AttendanceRemote  AttendanceMode = "remote"
	AttendanceProxy   AttendanceMode = "proxy"
	AttendanceExcused AttendanceMode = "excused"
	AttendanceAbsent  AttendanceMode = "absent"
)

func (m AttendanceMode) String() string {
	return string(m)
}

// BallotValue valeur d'un bulletin
type BallotValue string

const (
	BallotFor     BallotValue = "for"
	BallotAgainst BallotValue = "against"
	BallotAbstain BallotValue = "abstain"
	BallotNSP     BallotValue = "nsp" // ne se prononce pas
)

func (v BallotValue) String() string {
	return string(v)
}

// BallotSource canal par lequel un bulletin a été saisi
type BallotSource string

const (
	SourceElectronic BallotSource = "electronic"
	SourceManual     BallotSource = "manual"
	SourceDegraded   BallotSource = "degraded"
)

func (s BallotSource) String() string {
	return string(s)
}

// QuorumBasis base de calcul du quorum
type QuorumBasis string

const (
	BasisEligibleMembers QuorumBasis = "eligible_members"
	BasisEligibleWeight  QuorumBasis = "eligible_weight"
)

func (b QuorumBasis) String() string {
	return string(b)
}

// QuorumMode simple ou double quorum
type QuorumMode string

const (
	QuorumModeSingle QuorumMode = "single"
	QuorumModeDouble QuorumMode = "double"
)

func (m QuorumMode) String() string {
	return string(m)
}

// VoteBase base de calcul de la majorité
type VoteBase string

const (
	VoteBaseExpressed VoteBase = "expressed"
	VoteBaseEligible  VoteBase = "eligible"
)

func (b VoteBase) String() string {
	return string(b)
}

// DecisionStatus résultat final d'une motion
type DecisionStatus string

const (
	DecisionNoVotes  DecisionStatus = "no_votes"
	DecisionNoQuorum DecisionStatus = "no_quorum"
	DecisionAdopted  DecisionStatus = "adopted"
	DecisionRejected DecisionStatus = "rejected"
	DecisionNoPolicy DecisionStatus = "no_policy"
)

func (s DecisionStatus) String() string {
	return string(s)
}

// Role rôle canonique d'un utilisateur
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleViewer    Role = "viewer"
	RoleAuditor   Role = "auditor"
	RoleOperator  Role = "operator"
	RolePresident Role = "president"
	RoleAdmin     Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

// roleRanks hiérarchie ascendante des rôles
var roleRanks = map[Role]int{
	RoleAnonymous: 0,
	RoleViewer:    1,
	RoleAuditor:   2,
	RoleOperator:  3,
	RolePresident: 4,
	RoleAdmin:     5,
}

// Rank position du rôle dans la hiérarchie (anonymous=0 .. admin=5)
func (r Role) Rank() int {
	return roleRanks[r]
}

// AtLeast vrai si le rôle est au moins au niveau de other
func (r Role) AtLeast(other Role) bool {
	return r.Rank() >= other.Rank()
}

// ParseRole normalise une chaîne de rôle brute en rôle canonique.
// Les alias historiques (trust, readonly) sont résolus ici, une seule fois,
// avant toute consultation des tables de permissions. Un rôle inconnu
// retombe sur anonymous (aucune permission).
func ParseRole(raw string) Role {
	switch raw {
	case "trust":
		return RoleAuditor
	case "readonly":
		return RoleViewer
	}
	r := Role(raw)
	if _, ok := roleRanks[r]; ok {
		return r
	}
	return RoleAnonymous
}
