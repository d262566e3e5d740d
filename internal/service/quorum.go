package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"assembly-backend/internal/model"
)

// zeroWeightFallback dénominateur de repli quand le poids éligible total
// est nul. Garantit un ratio fini; voir DESIGN.md (question ouverte: un
// poids éligible nul avec des bulletins pondérés est plutôt un problème de
// données qu'une règle métier).
var zeroWeightFallback = decimal.NewFromFloat(0.0001)

// QuorumBlock un bloc (base, seuil) évalué indépendamment
type QuorumBlock struct {
	Basis       model.QuorumBasis `json:"basis"`
	Threshold   decimal.Decimal   `json:"threshold"`
	Numerator   decimal.Decimal   `json:"numerator"`
	Denominator decimal.Decimal   `json:"denominator"`
	Ratio       decimal.Decimal   `json:"ratio"`
	Met         bool              `json:"met"`
}

// QuorumResult verdict de quorum pour une assemblée
type QuorumResult struct {
	Applied       bool         `json:"applied"`
	Met           *bool        `json:"met"`
	Primary       *QuorumBlock `json:"primary,omitempty"`
	Secondary     *QuorumBlock `json:"secondary,omitempty"`
	Justification string       `json:"justification,omitempty"`
}

// QuorumEngine calcul pur du quorum; aucun état, aucun accès base
type QuorumEngine struct{}

func NewQuorumEngine() *QuorumEngine {
	return &QuorumEngine{}
}

// allowedModes modes de participation comptés au numérateur. present est
// toujours compté; remote et proxy suivent la politique.
func allowedModes(policy *model.QuorumPolicy) map[model.AttendanceMode]bool {
	allowed := map[model.AttendanceMode]bool{model.AttendancePresent: true}
	if policy.CountRemote {
		allowed[model.AttendanceRemote] = true
	}
	if policy.IncludeProxies {
		allowed[model.AttendanceProxy] = true
	}
	return allowed
}

// modesLabel libellé stable des modes comptés, pour la justification
func modesLabel(policy *model.QuorumPolicy) string {
	parts := []string{"présents"}
	if policy.CountRemote {
		parts = append(parts, "distanciel")
	}
	if policy.IncludeProxies {
		parts = append(parts, "pouvoirs")
	}
	return strings.Join(parts, "+")
}

// ratioBlock calcule un bloc (base, seuil) sur la liste d'émargement.
// Base membres: dénominateur max(1, effectif éligible), jamais de division
// par zéro. Base poids: repli sur zeroWeightFallback si le poids éligible
// est nul.
func ratioBlock(basis model.QuorumBasis, threshold decimal.Decimal, attendance []model.AttendanceRecord, allowed map[model.AttendanceMode]bool) *QuorumBlock {
	var num, den decimal.Decimal
	switch basis {
	case model.BasisEligibleWeight:
		for _, rec := range attendance {
			den = den.Add(rec.VotingPower)
			if allowed[rec.Mode] {
				num = num.Add(rec.VotingPower)
			}
		}
		if !den.IsPositive() {
			den = zeroWeightFallback
		}
	default: // eligible_members
		counted := 0
		for _, rec := range attendance {
			if allowed[rec.Mode] {
				counted++
			}
		}
		num = decimal.NewFromInt(int64(counted))
		total := int64(len(attendance))
		if total < 1 {
			total = 1
		}
		den = decimal.NewFromInt(total)
	}

	ratio := num.DivRound(den, 8)
	return &QuorumBlock{
		Basis:       basis,
		Threshold:   threshold,
		Numerator:   num,
		Denominator: den,
		Ratio:       ratio,
		Met:         ratio.GreaterThanOrEqual(threshold), // borne incluse
	}
}

// effectiveThreshold seuil applicable au bloc primaire: en seconde
// convocation, threshold_2 s'il est défini, sinon threshold_1.
func effectiveThreshold(meeting *model.Meeting, policy *model.QuorumPolicy) decimal.Decimal {
	if meeting.ConvocationNo == 2 && policy.Threshold2 != nil {
		return *policy.Threshold2
	}
	return policy.Threshold1
}

// ComputeForMeeting calcule le verdict de quorum. policy nil signifie
// aucune règle: applied=false, met=nil. L'absence de politique ne bloque
// jamais un vote.
func (e *QuorumEngine) ComputeForMeeting(meeting *model.Meeting, policy *model.QuorumPolicy, attendance []model.AttendanceRecord) QuorumResult {
	if policy == nil {
		return QuorumResult{Applied: false, Met: nil}
	}

	allowed := allowedModes(policy)
	primary := ratioBlock(policy.Basis, effectiveThreshold(meeting, policy), attendance, allowed)

	result := QuorumResult{
		Applied: true,
		Primary: primary,
	}

	met := primary.Met
	if policy.Mode == model.QuorumModeDouble && policy.SecondaryBasis != nil && policy.SecondaryThreshold != nil {
		secondary := ratioBlock(*policy.SecondaryBasis, *policy.SecondaryThreshold, attendance, allowed)
		result.Secondary = secondary
		met = met && secondary.Met
	}
	result.Met = &met
	result.Justification = justification(meeting, policy, &result)
	return result
}

// justification chaîne d'audit reproductible octet par octet pour des
// entrées identiques. Format figé, ne pas reformater.
func justification(meeting *model.Meeting, policy *model.QuorumPolicy, r *QuorumResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Quorum « %s » (convocation n°%d, %s) : %s",
		policy.Name, meeting.ConvocationNo, modesLabel(policy), blockLabel(r.Primary))
	if r.Secondary != nil {
		fmt.Fprintf(&b, " ; %s", blockLabel(r.Secondary))
	}
	if *r.Met {
		b.WriteString(" — quorum atteint")
	} else {
		b.WriteString(" — quorum non atteint")
	}
	return b.String()
}

func blockLabel(block *QuorumBlock) string {
	var label string
	if block.Basis == model.BasisEligibleWeight {
		label = "poids éligible"
	} else {
		label = "membres éligibles"
	}
	verdict := "atteint"
	if !block.Met {
		verdict = "non atteint"
	}
	return fmt.Sprintf("%s ratio %s / seuil %s (%s)",
		label, block.Ratio.StringFixed(4), block.Threshold.StringFixed(4), verdict)
}
