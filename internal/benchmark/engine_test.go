package benchmark

import (
	"encoding/json"
	"testing"

	"rcm-benchmark/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultConfig())
}

// legacyReferenceData reproduces the fixed-ratio calculator: one staffing
// ratio, a flat 85000 salary and a 40% current turnover rate.
func legacyReferenceData() *ReferenceData {
	flat := OccupationWage{MeanAnnual: 85000, MedianAnnual: 85000, EntryLevel: 85000, Experienced: 85000}
	ref := DefaultReferenceData()
	ref.Wages = WageTable{
		MedicalRecordsSpecialists: flat,
		MedicalCoders:             flat,
		BillingSpecialists:        flat,
	}
	ref.RegionalFactors = map[string]float64{}
	ref.Benchmarks.StaffPerBed = StaffPerBed{Small: 0.025, Medium: 0.025, Large: 0.025}
	ref.Benchmarks.TurnoverByFunction = map[string]float64{OverallRCMFunction: 0.40}
	return ref
}

func TestCompute_NationalBaseline(t *testing.T) {
	m, err := newTestEngine().Compute(HospitalInput{Name: "General Hospital", Beds: 250}, DefaultReferenceData())
	require.NoError(t, err)

	assert.Equal(t, "US", m.State)
	assert.Equal(t, SizeMedium, m.SizeCategory)
	assert.Equal(t, 1.0, m.RegionalFactor)
	assert.Equal(t, 48804, m.AverageSalary)
	assert.Equal(t, 6, m.EstimatedRCMStaff)
	assert.Equal(t, 2, m.StaffTurningOverNow)
	assert.Equal(t, 97608, m.ReplacementCostPerHead)
	assert.Equal(t, 195216, m.CurrentTurnoverCost)
	assert.Equal(t, 0, m.StaffTurningOverOptimized)
	assert.Equal(t, 0, m.ReducedCost)
	assert.Equal(t, 195216, m.PotentialSavings)
	assert.Equal(t, 58564, m.ProductivityLoss)
	assert.Equal(t, 29282, m.QualityImprovement)
	assert.Equal(t, 283063, m.TotalImpact)
	assert.Equal(t, 780, m.CostPerBed)
	assert.Equal(t, 780, m.SavingsPerBed)
	assert.Equal(t, 27, m.BreakEvenMonths)
	assert.Equal(t, 450000, m.ImplementationInvestment)

	assert.Equal(t, 0.13, m.DenialRateBenchmark)
	assert.Equal(t, 48, m.DaysInARBenchmark)
	assert.Equal(t, 0.95, m.CollectionRateBenchmark)
	assert.Equal(t, 0.37, m.CurrentTurnoverRate)
	assert.Len(t, m.FunctionTurnover, 7)
}

func TestCompute_LegacyFixedRatioScenario(t *testing.T) {
	m, err := newTestEngine().Compute(HospitalInput{Name: "Legacy", Beds: 350}, legacyReferenceData())
	require.NoError(t, err)

	assert.Equal(t, 8, m.EstimatedRCMStaff)
	assert.Equal(t, 85000, m.AverageSalary)
	assert.Equal(t, 3, m.StaffTurningOverNow)
	assert.Equal(t, 510000, m.CurrentTurnoverCost)
	assert.Equal(t, 1, m.StaffTurningOverOptimized)
	assert.Equal(t, 170000, m.ReducedCost)
	assert.Equal(t, 340000, m.PotentialSavings)
	assert.Equal(t, 15, m.BreakEvenMonths)
}

func TestCompute_RegionalFactorAppliedPerWageField(t *testing.T) {
	ref := DefaultReferenceData()
	m, err := newTestEngine().Compute(HospitalInput{Name: "Coastal", Beds: 50, State: "CA"}, ref)
	require.NoError(t, err)

	assert.Equal(t, SizeSmall, m.SizeCategory)
	assert.Equal(t, 1.39, m.RegionalFactor)
	assert.Equal(t, 1, m.EstimatedRCMStaff)

	for occ, base := range ref.Wages {
		adjusted := m.WageData[occ]
		assert.Equal(t, int(float64(base.MeanAnnual)*1.39), adjusted.MeanAnnual, occ)
		assert.Equal(t, int(float64(base.MedianAnnual)*1.39), adjusted.MedianAnnual, occ)
		assert.Equal(t, int(float64(base.EntryLevel)*1.39), adjusted.EntryLevel, occ)
		assert.Equal(t, int(float64(base.Experienced)*1.39), adjusted.Experienced, occ)
	}
	assert.Equal(t, 65677, m.WageData[MedicalRecordsSpecialists].MeanAnnual)

	expected := int(float64(m.WageData[MedicalRecordsSpecialists].MeanAnnual)*0.3 +
		float64(m.WageData[MedicalCoders].MeanAnnual)*0.4 +
		float64(m.WageData[BillingSpecialists].MeanAnnual)*0.3)
	assert.Equal(t, expected, m.AverageSalary)
	assert.Greater(t, m.AverageSalary, 48804)

	// one head at 37% rounds down to nobody leaving
	assert.Equal(t, 0, m.StaffTurningOverNow)
	assert.Equal(t, 0, m.PotentialSavings)
	assert.Equal(t, NoBreakEven, m.BreakEvenMonths)
	assert.False(t, m.HasBreakEven())
}

func TestCompute_LargeBucket(t *testing.T) {
	m, err := newTestEngine().Compute(HospitalInput{Name: "Metro", Beds: 400}, DefaultReferenceData())
	require.NoError(t, err)

	assert.Equal(t, SizeLarge, m.SizeCategory)
	assert.Equal(t, 0.020, m.StaffPerBedRatio)
	assert.Equal(t, 8, m.EstimatedRCMStaff)
}

func TestCompute_NegativeSavingsIsPreserved(t *testing.T) {
	ref := DefaultReferenceData()
	ref.Benchmarks.TurnoverByFunction = map[string]float64{OverallRCMFunction: 0.10}

	m, err := newTestEngine().Compute(HospitalInput{Name: "Stable", Beds: 1000}, ref)
	require.NoError(t, err)

	assert.Equal(t, 20, m.EstimatedRCMStaff)
	assert.Equal(t, 2, m.StaffTurningOverNow)
	assert.Equal(t, 3, m.StaffTurningOverOptimized)
	assert.Less(t, m.PotentialSavings, 0)
	assert.Equal(t, m.CurrentTurnoverCost-m.ReducedCost, m.PotentialSavings)
	assert.Equal(t, -m.ReplacementCostPerHead, m.PotentialSavings)
	assert.Less(t, m.SavingsPerBed, 0)
	assert.Equal(t, NoBreakEven, m.BreakEvenMonths)
}

func TestCompute_UnknownOrBaselineStateUsesNationalTable(t *testing.T) {
	ref := DefaultReferenceData()
	for _, state := range []string{"", "US", "ZZ", " us "} {
		t.Run("state="+state, func(t *testing.T) {
			m, err := newTestEngine().Compute(HospitalInput{Name: "H", Beds: 120, State: state}, ref)
			require.NoError(t, err)
			assert.Equal(t, 1.0, m.RegionalFactor)
			assert.Equal(t, ref.Wages, m.WageData)
			assert.Equal(t, 48804, m.AverageSalary)
		})
	}
}

func TestCompute_LowercaseStateIsNormalized(t *testing.T) {
	m, err := newTestEngine().Compute(HospitalInput{Name: "H", Beds: 120, State: "tx"}, DefaultReferenceData())
	require.NoError(t, err)
	assert.Equal(t, "TX", m.State)
	assert.Equal(t, 0.97, m.RegionalFactor)
}

func TestCompute_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input HospitalInput
		field string
	}{
		{"zero beds", HospitalInput{Name: "H", Beds: 0}, "hospital_beds"},
		{"negative beds", HospitalInput{Name: "H", Beds: -10}, "hospital_beds"},
		{"three letter state", HospitalInput{Name: "H", Beds: 10, State: "CAL"}, "state"},
		{"digits in state", HospitalInput{Name: "H", Beds: 10, State: "C1"}, "state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := newTestEngine().Compute(tt.input, DefaultReferenceData())
			require.Error(t, err)
			assert.Nil(t, m)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
			assert.Equal(t, tt.field, errors.AsStandardError(err).Metadata["field"])
		})
	}
}

func TestCompute_ReferenceDataUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ReferenceData) *ReferenceData
	}{
		{"nil reference", func(*ReferenceData) *ReferenceData { return nil }},
		{"missing coders", func(r *ReferenceData) *ReferenceData {
			delete(r.Wages, MedicalCoders)
			return r
		}},
		{"missing overall turnover", func(r *ReferenceData) *ReferenceData {
			delete(r.Benchmarks.TurnoverByFunction, OverallRCMFunction)
			return r
		}},
		{"zero ratio", func(r *ReferenceData) *ReferenceData {
			r.Benchmarks.StaffPerBed.Medium = 0
			return r
		}},
		{"zero replacement multiplier", func(r *ReferenceData) *ReferenceData {
			r.Benchmarks.ReplacementCostMultiplier = 0
			return r
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := tt.mutate(DefaultReferenceData())
			_, err := newTestEngine().Compute(HospitalInput{Name: "H", Beds: 150}, ref)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeReferenceDataUnavailable))
		})
	}
}

func TestCompute_StaffFollowsBucketRatio(t *testing.T) {
	engine := newTestEngine()
	ref := DefaultReferenceData()
	prev := map[SizeCategory]int{}

	for beds := 1; beds <= 1200; beds++ {
		m, err := engine.Compute(HospitalInput{Name: "H", Beds: beds}, ref)
		require.NoError(t, err)

		_, ratio := sizeBucket(beds, ref.Benchmarks.StaffPerBed)
		require.Equal(t, int(float64(beds)*ratio), m.EstimatedRCMStaff, "beds=%d", beds)
		require.GreaterOrEqual(t, m.EstimatedRCMStaff, prev[m.SizeCategory], "beds=%d", beds)
		prev[m.SizeCategory] = m.EstimatedRCMStaff

		require.Equal(t, m.CurrentTurnoverCost-m.ReducedCost, m.PotentialSavings, "beds=%d", beds)
		require.Equal(t, m.PotentialSavings <= 0, m.BreakEvenMonths == NoBreakEven, "beds=%d", beds)
	}
}

func TestCompute_IsDeterministic(t *testing.T) {
	engine := newTestEngine()
	input := HospitalInput{Name: "Mercy", Beds: 275, State: "NY"}

	m1, err := engine.Compute(input, DefaultReferenceData())
	require.NoError(t, err)
	m2, err := engine.Compute(input, DefaultReferenceData())
	require.NoError(t, err)

	b1, err := json.Marshal(m1)
	require.NoError(t, err)
	b2, err := json.Marshal(m2)
	require.NoError(t, err)
	assert.Equal(t, string(b1), string(b2))
}

func TestCompute_DoesNotMutateReference(t *testing.T) {
	ref := DefaultReferenceData()
	m, err := newTestEngine().Compute(HospitalInput{Name: "H", Beds: 200, State: "HI"}, ref)
	require.NoError(t, err)

	m.FunctionTurnover["coding"] = 0.99
	assert.Equal(t, 0.35, ref.Benchmarks.TurnoverByFunction["coding"])
	assert.Equal(t, 47250, ref.Wages[MedicalRecordsSpecialists].MeanAnnual)
}

func TestBreakEvenMonths(t *testing.T) {
	assert.Equal(t, 27, BreakEvenMonths(195216, 450000))
	assert.Equal(t, 15, BreakEvenMonths(340000, 450000))
	assert.Equal(t, 12, BreakEvenMonths(450000, 450000))
	assert.Equal(t, NoBreakEven, BreakEvenMonths(0, 450000))
	assert.Equal(t, NoBreakEven, BreakEvenMonths(-1, 450000))
}

func TestNormalizeState(t *testing.T) {
	s, err := NormalizeState(" ny ")
	require.NoError(t, err)
	assert.Equal(t, "NY", s)

	s, err = NormalizeState("")
	require.NoError(t, err)
	assert.Equal(t, "", s)

	_, err = NormalizeState("New York")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}
