package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tenant organisation propriétaire des assemblées
type Tenant struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(200);not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Members  []Member  `gorm:"foreignKey:TenantID" json:"members,omitempty"`
	Meetings []Meeting `gorm:"foreignKey:TenantID" json:"meetings,omitempty"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// Member membre votant d'un tenant
type Member struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID  int64     `gorm:"not null;index" json:"tenant_id"`
	Email     string    `gorm:"type:varchar(255);not null" json:"email"`
	FullName  string    `gorm:"type:varchar(200);not null" json:"full_name"`
	Role      string    `gorm:"type:varchar(20);default:'viewer'" json:"role"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Tenant Tenant `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}

func (Member) TableName() string {
	return "members"
}

// Meeting assemblée générale
type Meeting struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID      int64         `gorm:"not null;index" json:"tenant_id"`
	Title         string        `gorm:"type:varchar(200);not null" json:"title"`
	Code          string        `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"`
	Status        MeetingStatus `gorm:"type:varchar(20);default:'draft'" json:"status"`
	ConvocationNo int           `gorm:"default:1" json:"convocation_no"` // 1 ou 2
	ScheduledAt   *time.Time    `json:"scheduled_at,omitempty"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Tenant     Tenant             `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Motions    []Motion           `gorm:"foreignKey:MeetingID" json:"motions,omitempty"`
	Attendance []AttendanceRecord `gorm:"foreignKey:MeetingID" json:"attendance,omitempty"`
	Proxies    []Proxy            `gorm:"foreignKey:MeetingID" json:"proxies,omitempty"`
}

func (Meeting) TableName() string {
	return "meetings"
}

// AttendanceRecord émargement d'un membre pour une assemblée
type AttendanceRecord struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID    int64           `gorm:"not null;index" json:"tenant_id"`
	MeetingID   int64           `gorm:"not null;index:idx_attendance_meeting_member,unique" json:"meeting_id"`
	MemberID    int64           `gorm:"not null;index:idx_attendance_meeting_member,unique" json:"member_id"`
	Mode        AttendanceMode  `gorm:"type:varchar(20);not null" json:"mode"`
	VotingPower decimal.Decimal `gorm:"type:numeric(14,4);default:1" json:"voting_power"`
	RecordedAt  time.Time       `gorm:"autoCreateTime" json:"recorded_at"`

	// Relations
	Meeting Meeting `gorm:"foreignKey:MeetingID" json:"meeting,omitempty"`
	Member  Member  `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// QuorumPolicy règle de quorum; en mode double, la paire secondaire est
// évaluée indépendamment et les deux blocs doivent être atteints.
type QuorumPolicy struct {
	ID                 int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID           int64            `gorm:"not null;index" json:"tenant_id"`
	Name               string           `gorm:"type:varchar(200);not null" json:"name"`
	Basis              QuorumBasis      `gorm:"type:varchar(30);not null" json:"basis"`
	Mode               QuorumMode       `gorm:"type:varchar(10);default:'single'" json:"mode"`
	Threshold1         decimal.Decimal  `gorm:"type:numeric(6,4);not null" json:"threshold_1"`
	Threshold2         *decimal.Decimal `gorm:"type:numeric(6,4)" json:"threshold_2,omitempty"` // seuil réduit en seconde convocation
	SecondaryBasis     *QuorumBasis     `gorm:"type:varchar(30)" json:"secondary_basis,omitempty"`
	SecondaryThreshold *decimal.Decimal `gorm:"type:numeric(6,4)" json:"secondary_threshold,omitempty"`
	CountRemote        bool             `gorm:"default:true" json:"count_remote"`
	IncludeProxies     bool             `gorm:"default:true" json:"include_proxies"`
	CreatedAt          time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (QuorumPolicy) TableName() string {
	return "quorum_policies"
}

// VotePolicy règle de majorité
type VotePolicy struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID            int64           `gorm:"not null;index" json:"tenant_id"`
	Name                string          `gorm:"type:varchar(200);not null" json:"name"`
	Base                VoteBase        `gorm:"type:varchar(20);not null" json:"base"`
	Threshold           decimal.Decimal `gorm:"type:numeric(6,4);not null" json:"threshold"`
	AbstentionAsAgainst bool            `gorm:"default:false" json:"abstention_as_against"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (VotePolicy) TableName() string {
	return "vote_policies"
}

// Motion résolution soumise au vote. Ouverte ssi opened_at est posé et
// closed_at est nul.
type Motion struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID       int64      `gorm:"not null;index" json:"tenant_id"`
	MeetingID      int64      `gorm:"not null;index" json:"meeting_id"`
	Title          string     `gorm:"type:varchar(300);not null" json:"title"`
	VotePolicyID   *int64     `json:"vote_policy_id,omitempty"`
	QuorumPolicyID *int64     `json:"quorum_policy_id,omitempty"`
	Secret         bool       `gorm:"default:false" json:"secret"`
	OpenedAt       *time.Time `json:"opened_at,omitempty"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Meeting      Meeting       `gorm:"foreignKey:MeetingID" json:"meeting,omitempty"`
	VotePolicy   *VotePolicy   `gorm:"foreignKey:VotePolicyID" json:"vote_policy,omitempty"`
	QuorumPolicy *QuorumPolicy `gorm:"foreignKey:QuorumPolicyID" json:"quorum_policy,omitempty"`
	Ballots      []Ballot      `gorm:"foreignKey:MotionID" json:"ballots,omitempty"`
}

func (Motion) TableName() string {
	return "motions"
}

// IsOpen vrai si la motion accepte des bulletins
func (m *Motion) IsOpen() bool {
	return m.OpenedAt != nil && m.ClosedAt == nil
}

// Ballot bulletin de vote; au plus un bulletin actif par (motion, votant)
type Ballot struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID      int64           `gorm:"not null;index" json:"tenant_id"`
	MotionID      int64           `gorm:"not null;index:idx_ballot_motion_voter,unique" json:"motion_id"`
	VoterMemberID int64           `gorm:"not null;index:idx_ballot_motion_voter,unique" json:"voter_member_id"`
	Value         BallotValue     `gorm:"type:varchar(10);not null" json:"value"`
	Weight        decimal.Decimal `gorm:"type:numeric(14,4);default:1" json:"weight"`
	IsProxyVote   bool            `gorm:"default:false" json:"is_proxy_vote"`
	Source        BallotSource    `gorm:"type:varchar(20);default:'electronic'" json:"source"`
	CastAt        time.Time       `gorm:"autoCreateTime" json:"cast_at"`

	// Relations
	Motion Motion `gorm:"foreignKey:MotionID" json:"motion,omitempty"`
	Voter  Member `gorm:"foreignKey:VoterMemberID" json:"voter,omitempty"`
}

func (Ballot) TableName() string {
	return "ballots"
}

// Proxy délégation de pouvoir (mandant -> mandataire) pour une assemblée.
// Invariants: giver ≠ receiver; une seule délégation active par mandant;
// relation en forêt de profondeur 1 (un mandataire ne délègue pas);
// nombre de mandants par mandataire plafonné.
type Proxy struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID         int64     `gorm:"not null;index" json:"tenant_id"`
	MeetingID        int64     `gorm:"not null;index" json:"meeting_id"`
	GiverMemberID    int64     `gorm:"not null;index" json:"giver_member_id"`
	ReceiverMemberID int64     `gorm:"not null;index" json:"receiver_member_id"`
	Active           bool      `gorm:"default:true" json:"active"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Meeting  Meeting `gorm:"foreignKey:MeetingID" json:"meeting,omitempty"`
	Giver    Member  `gorm:"foreignKey:GiverMemberID" json:"giver,omitempty"`
	Receiver Member  `gorm:"foreignKey:ReceiverMemberID" json:"receiver,omitempty"`
}

func (Proxy) TableName() string {
	return "proxies"
}

// VoteToken jeton anonyme de vote électronique. Seul l'empreinte
// HMAC-SHA256 du jeton est persistée, jamais le jeton brut. Usage unique:
// une fois used_at posé le jeton est définitivement invalide.
type VoteToken struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	TokenHash string     `gorm:"type:char(64);uniqueIndex;not null" json:"-"`
	TenantID  int64      `gorm:"not null;index" json:"tenant_id"`
	MeetingID int64      `gorm:"not null" json:"meeting_id"`
	MemberID  int64      `gorm:"not null" json:"member_id"`
	MotionID  int64      `gorm:"not null;index" json:"motion_id"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (VoteToken) TableName() string {
	return "vote_tokens"
}
