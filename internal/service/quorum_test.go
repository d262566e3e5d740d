package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assembly-backend/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// roster feuille d'émargement: n membres par mode, poids 1 chacun
func roster(counts map[model.AttendanceMode]int) []model.AttendanceRecord {
	var records []model.AttendanceRecord
	for mode, n := range counts {
		for i := 0; i < n; i++ {
			records = append(records, model.AttendanceRecord{
				Mode:        mode,
				VotingPower: decimal.NewFromInt(1),
			})
		}
	}
	return records
}

func TestComputeForMeeting_NoPolicy(t *testing.T) {
	engine := NewQuorumEngine()
	meeting := &model.Meeting{ConvocationNo: 1}

	result := engine.ComputeForMeeting(meeting, nil, roster(map[model.AttendanceMode]int{
		model.AttendancePresent: 10,
	}))

	assert.False(t, result.Applied)
	assert.Nil(t, result.Met)
	assert.Nil(t, result.Primary)
	assert.Empty(t, result.Justification)
}

func TestComputeForMeeting_MemberBasisBoundaryInclusive(t *testing.T) {
	engine := NewQuorumEngine()
	meeting := &model.Meeting{ConvocationNo: 1}
	policy := &model.QuorumPolicy{
		Name:        "Quorum ordinaire",
		Basis:       model.BasisEligibleMembers,
		Threshold1:  dec("0.5"),
		CountRemote: true,
	}

	// exactement au seuil: 50 présents sur 100 à 0.5, le quorum est atteint
	result := engine.ComputeForMeeting(meeting, policy, roster(map[model.AttendanceMode]int{
		model.AttendancePresent: 50,
		model.AttendanceAbsent:  50,
	}))
	require.NotNil(t, result.Met)
	assert.True(t, *result.Met)
	assert.Equal(t, "0.5", result.Primary.Ratio.String())

	// un de moins et il ne l'est plus
	result = engine.ComputeForMeeting(meeting, policy, roster(map[model.AttendanceMode]int{
		model.AttendancePresent: 49,
		model.AttendanceAbsent:  51,
	}))
	require.NotNil(t, result.Met)
	assert.False(t, *result.Met)
}

func TestComputeForMeeting_EmptyRosterNeverDividesByZero(t *testing.T) {
	engine := NewQuorumEngine()
	meeting := &model.Meeting{ConvocationNo: 1}
	policy := &model.QuorumPolicy{
		Name:       "Quorum ordinaire",
		Basis:      model.BasisEligibleMembers,
		Threshold1: dec("0.5"),
	}

	result := engine.ComputeForMeeting(meeting, policy, nil)
	require.NotNil(t, result.Met)
	assert.False(t, *result.Met)
	assert.True(t, result.Primary.Ratio.IsZero())
	assert.Equal(t, "1", result.Primary.Denominator.String())
}

func TestComputeForMeeting_WeightBasisZeroWeightFallback(t *testing.T) {
	engine := NewQuorumEngine()
	meeting := &model.Meeting{ConvocationNo: 1}
	policy := &model.QuorumPolicy{
		Name:       "Quorum pondéré",
		Basis:      model.BasisEligibleWeight,
		Threshold1: dec("0.5"),
	}

	records := []model.AttendanceRecord{
		{Mode: model.AttendancePresent, VotingPower: decimal.Zero},
		{Mode: model.AttendanceAbsent, VotingPower: decimal.Zero},
	}
	result := engine.ComputeForMeeting(meeting, policy, records)
	require.NotNil(t, result.Met)
	assert.False(t, *result.Met)
	assert.Equal(t, "0.0001", result.Primary.Denominator.String())
}

func TestComputeForMeeting_WeightBasis(t *testing.T) {
	engine := NewQuorumEngine()
	meeting := &model.Meeting{ConvocationNo: 1}
	policy := &model.QuorumPolicy{
		Name:        "Quorum pondéré",
		Basis:       model.BasisEligibleWeight,
		Threshold1:  dec("0.5"),
		CountRemote: true,
	}

	records := []model.AttendanceRecord{
		{Mode: model.AttendancePresent, VotingPower: dec("300")},
		{Mode: model.AttendanceRemote, VotingPower: dec("200")},
		{Mode: model.AttendanceAbsent, VotingPower: dec("500")},
	}
	result := engine.ComputeForMeeting(meeting, policy, records)
	require.NotNil(t, result.Met)
	assert.True(t, *result.Met)
	assert.Equal(t, "500", result.Primary.Numerator.String())
	assert.Equal(t, "1000", result.Primary.Denominator.String())
}

func TestComputeForMeeting_ModesFollowPolicy(t *testing.T) {
	engine := NewQuorumEngine()
	meeting := &model.Meeting{ConvocationNo: 1}
	records := roster(map[model.AttendanceMode]int{
		model.AttendancePresent: 2,
		model.AttendanceRemote:  4,
		model.AttendanceProxy:   3,
		model.AttendanceAbsent:  1,
	})

	tests := []struct {
		name           string
		countRemote    bool
		includeProxies bool
		numerator      string
	}{
		{"present only", false, false, "2"},
		{"present and remote", true, false, "6"},
		{"present and proxies", false, true, "5"},
		{"all counted", true, true, "9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := &model.QuorumPolicy{
				Name:           "Quorum ordinaire",
				Basis:          model.BasisEligibleMembers,
				Threshold1:     dec("0.5"),
				CountRemote:    tt.countRemote,
				IncludeProxies: tt.includeProxies,
			}
			result := engine.ComputeForMeeting(meeting, policy, records)
			assert.Equal(t, tt.numerator, result.Primary.Numerator.String())
			assert.Equal(t, "10", result.Primary.Denominator.String())
		})
	}
}

func TestComputeForMeeting_SecondConvocationThreshold(t *testing.T) {
	engine := NewQuorumEngine()
	policy := &model.QuorumPolicy{
		Name:       "Quorum ordinaire",
		Basis:      model.BasisEligibleMembers,
		Threshold1: dec("0.5"),
		Threshold2: decPtr("0.25"),
	}
	records := roster(map[model.AttendanceMode]int{
		model.AttendancePresent: 30,
		model.AttendanceAbsent:  70,
	})

	// première convocation: 30% < 50%, non atteint
	first := engine.ComputeForMeeting(&model.Meeting{ConvocationNo: 1}, policy, records)
	require.NotNil(t, first.Met)
	assert.False(t, *first.Met)
	assert.Equal(t, "0.5000", first.Primary.Threshold.StringFixed(4))

	// seconde convocation: le seuil réduit s'applique
	second := engine.ComputeForMeeting(&model.Meeting{ConvocationNo: 2}, policy, records)
	require.NotNil(t, second.Met)
	assert.True(t, *second.Met)
	assert.Equal(t, "0.2500", second.Primary.Threshold.StringFixed(4))
}

func TestComputeForMeeting_SecondConvocationWithoutReducedThreshold(t *testing.T) {
	engine := NewQuorumEngine()
	policy := &model.QuorumPolicy{
		Name:       "Quorum strict",
		Basis:      model.BasisEligibleMembers,
		Threshold1: dec("0.5"),
	}
	records := roster(map[model.AttendanceMode]int{
		model.AttendancePresent: 30,
		model.AttendanceAbsent:  70,
	})

	result := engine.ComputeForMeeting(&model.Meeting{ConvocationNo: 2}, policy, records)
	require.NotNil(t, result.Met)
	assert.False(t, *result.Met)
	assert.Equal(t, "0.5000", result.Primary.Threshold.StringFixed(4))
}

func TestComputeForMeeting_DoubleQuorum(t *testing.T) {
	engine := NewQuorumEngine()
	meeting := &model.Meeting{ConvocationNo: 1}
	secondaryBasis := model.BasisEligibleWeight

	// 6 présents sur 10 membres (0.6) mais 200 sur 1000 en poids (0.2)
	records := []model.AttendanceRecord{
		{Mode: model.AttendancePresent, VotingPower: dec("50")},
		{Mode: model.AttendancePresent, VotingPower: dec("50")},
		{Mode: model.AttendancePresent, VotingPower: dec("25")},
		{Mode: model.AttendancePresent, VotingPower: dec("25")},
		{Mode: model.AttendancePresent, VotingPower: dec("25")},
		{Mode: model.AttendancePresent, VotingPower: dec("25")},
		{Mode: model.AttendanceAbsent, VotingPower: dec("200")},
		{Mode: model.AttendanceAbsent, VotingPower: dec("200")},
		{Mode: model.AttendanceAbsent, VotingPower: dec("200")},
		{Mode: model.AttendanceAbsent, VotingPower: dec("200")},
	}

	tests := []struct {
		name               string
		threshold1         string
		secondaryThreshold string
		want               bool
	}{
		{"both blocks met", "0.5", "0.1", true},
		{"primary fails", "0.7", "0.1", false},
		{"secondary fails", "0.5", "0.5", false},
		{"both fail", "0.7", "0.5", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := &model.QuorumPolicy{
				Name:               "Double quorum",
				Basis:              model.BasisEligibleMembers,
				Mode:               model.QuorumModeDouble,
				Threshold1:         dec(tt.threshold1),
				SecondaryBasis:     &secondaryBasis,
				SecondaryThreshold: decPtr(tt.secondaryThreshold),
			}
			result := engine.ComputeForMeeting(meeting, policy, records)
			require.NotNil(t, result.Met)
			require.NotNil(t, result.Secondary)
			assert.Equal(t, tt.want, *result.Met)
		})
	}
}

func TestJustification_StableAndExact(t *testing.T) {
	engine := NewQuorumEngine()
	meeting := &model.Meeting{ConvocationNo: 1}
	policy := &model.QuorumPolicy{
		Name:           "Quorum ordinaire",
		Basis:          model.BasisEligibleMembers,
		Threshold1:     dec("0.5"),
		CountRemote:    true,
		IncludeProxies: true,
	}
	records := roster(map[model.AttendanceMode]int{
		model.AttendancePresent: 50,
		model.AttendanceAbsent:  50,
	})

	want := "Quorum « Quorum ordinaire » (convocation n°1, présents+distanciel+pouvoirs) : " +
		"membres éligibles ratio 0.5000 / seuil 0.5000 (atteint) — quorum atteint"

	first := engine.ComputeForMeeting(meeting, policy, records)
	assert.Equal(t, want, first.Justification)

	// reproductible octet par octet
	second := engine.ComputeForMeeting(meeting, policy, records)
	assert.Equal(t, first.Justification, second.Justification)
}
