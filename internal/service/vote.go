package service

import (
	"github.com/shopspring/decimal"

	"assembly-backend/internal/model"
)

// TallyLine effectif et poids cumulés pour une valeur de bulletin
type TallyLine struct {
	Count  int             `json:"count"`
	Weight decimal.Decimal `json:"weight"`
}

func (l *TallyLine) add(weight decimal.Decimal) {
	l.Count++
	l.Weight = l.Weight.Add(weight)
}

// Tally dépouillement d'une motion. Expressed couvre for/against/abstain;
// les bulletins nsp sont comptés à part et n'entrent pas dans la base des
// suffrages exprimés.
type Tally struct {
	For       TallyLine `json:"for"`
	Against   TallyLine `json:"against"`
	Abstain   TallyLine `json:"abstain"`
	NSP       TallyLine `json:"nsp"`
	Expressed TallyLine `json:"expressed"`
}

// MajorityResult verdict de majorité quand une règle de vote existe
type MajorityResult struct {
	Base           model.VoteBase  `json:"base"`
	Threshold      decimal.Decimal `json:"threshold"`
	Ratio          decimal.Decimal `json:"ratio"`
	Met            bool            `json:"met"`
	DisplayAgainst TallyLine       `json:"display_against"` // abstentions fusionnées si abstention_as_against
}

// MotionResult décision finale d'une motion
type MotionResult struct {
	MotionID int64                `json:"motion_id"`
	Status   model.DecisionStatus `json:"status"`
	Tally    Tally                `json:"tally"`
	Quorum   QuorumResult         `json:"quorum"`
	Majority *MajorityResult      `json:"majority,omitempty"`
}

// VoteEngine agrège les bulletins et combine majorité et quorum
type VoteEngine struct {
	quorum *QuorumEngine
}

func NewVoteEngine(quorum *QuorumEngine) *VoteEngine {
	return &VoteEngine{quorum: quorum}
}

// tallyBallots dépouille les bulletins
func tallyBallots(ballots []model.Ballot) Tally {
	var t Tally
	for _, b := range ballots {
		switch b.Value {
		case model.BallotFor:
			t.For.add(b.Weight)
		case model.BallotAgainst:
			t.Against.add(b.Weight)
		case model.BallotAbstain:
			t.Abstain.add(b.Weight)
		case model.BallotNSP:
			t.NSP.add(b.Weight)
		}
	}
	t.Expressed.Count = t.For.Count + t.Against.Count + t.Abstain.Count
	t.Expressed.Weight = t.For.Weight.Add(t.Against.Weight).Add(t.Abstain.Weight)
	return t
}

// eligibleWeight poids éligible total de la feuille d'émargement
func eligibleWeight(attendance []model.AttendanceRecord) decimal.Decimal {
	var total decimal.Decimal
	for _, rec := range attendance {
		total = total.Add(rec.VotingPower)
	}
	return total
}

// ComputeMotionResult calcule la décision d'une motion. Ordre de priorité
// contractuel: no_votes, puis no_quorum, puis adopted/rejected, puis
// no_policy. Un échec de quorum l'emporte quel que soit le score; no_votes
// court-circuite avant même la consultation du quorum.
func (e *VoteEngine) ComputeMotionResult(meeting *model.Meeting, motion *model.Motion, ballots []model.Ballot, attendance []model.AttendanceRecord, votePolicy *model.VotePolicy, quorumPolicy *model.QuorumPolicy) MotionResult {
	result := MotionResult{
		MotionID: motion.ID,
		Tally:    tallyBallots(ballots),
	}

	// 1. aucun bulletin, nsp compris
	if result.Tally.Expressed.Count+result.Tally.NSP.Count == 0 {
		result.Status = model.DecisionNoVotes
		return result
	}

	// 2. quorum
	result.Quorum = e.quorum.ComputeForMeeting(meeting, quorumPolicy, attendance)
	if result.Quorum.Applied && result.Quorum.Met != nil && !*result.Quorum.Met {
		result.Status = model.DecisionNoQuorum
		return result
	}

	// 5. pas de règle de majorité configurée
	if votePolicy == nil {
		result.Status = model.DecisionNoPolicy
		return result
	}

	// 3/4. majorité
	base := result.Tally.Expressed.Weight
	if votePolicy.Base == model.VoteBaseEligible {
		base = eligibleWeight(attendance)
	}
	var ratio decimal.Decimal
	if base.IsPositive() {
		ratio = result.Tally.For.Weight.DivRound(base, 8)
	}

	majority := &MajorityResult{
		Base:           votePolicy.Base,
		Threshold:      votePolicy.Threshold,
		Ratio:          ratio,
		Met:            ratio.GreaterThanOrEqual(votePolicy.Threshold),
		DisplayAgainst: result.Tally.Against,
	}
	if votePolicy.AbstentionAsAgainst {
		// affichage seulement: le ratio pour reste inchangé
		majority.DisplayAgainst = TallyLine{
			Count:  result.Tally.Against.Count + result.Tally.Abstain.Count,
			Weight: result.Tally.Against.Weight.Add(result.Tally.Abstain.Weight),
		}
	}
	result.Majority = majority

	if majority.Met {
		result.Status = model.DecisionAdopted
	} else {
		result.Status = model.DecisionRejected
	}
	return result
}
