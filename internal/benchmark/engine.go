// internal/benchmark/engine.go
package benchmark

import (
	"fmt"
	"regexp"
	"strings"

	"rcm-benchmark/internal/common/errors"
)

// NationalBaseline is reported as the state when none is supplied.
const NationalBaseline = "US"

// Secondary impact factors applied to potential savings.
const (
	productivityFactor = 0.30
	qualityFactor      = 0.15
	totalImpactFactor  = 1.45
)

var stateCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)

// Config holds the program cost assumptions.
type Config struct {
	ImplementationInvestment int
	AnnualProgramCost        int
}

// DefaultConfig matches the standard engagement pricing.
func DefaultConfig() Config {
	return Config{
		ImplementationInvestment: 450000,
		AnnualProgramCost:        400000,
	}
}

// Engine computes Metrics. It holds no mutable state.
type Engine struct {
	config Config
}

func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

func (e *Engine) Config() Config {
	return e.config
}

// NormalizeState upper-cases and trims a state code. It rejects anything that
// is not empty or two letters.
func NormalizeState(state string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(state))
	if s == "" {
		return "", nil
	}
	if !stateCodePattern.MatchString(s) {
		return "", errors.NewInvalidInputError("state", fmt.Sprintf("state must be a 2-letter code, got %q", state))
	}
	return s, nil
}

// Compute runs the staffing and turnover pipeline for input against ref.
func (e *Engine) Compute(input HospitalInput, ref *ReferenceData) (*Metrics, error) {
	if input.Beds <= 0 {
		return nil, errors.NewInvalidInputError("hospital_beds",
			fmt.Sprintf("hospital_beds must be a positive integer, got %d", input.Beds))
	}
	state, err := NormalizeState(input.State)
	if err != nil {
		return nil, err
	}
	if state == "" {
		state = NationalBaseline
	}
	if err := validateReference(ref); err != nil {
		return nil, err
	}

	bench := ref.Benchmarks
	category, ratio := sizeBucket(input.Beds, bench.StaffPerBed)
	factor := ref.RegionalFactor(state)
	wages := AdjustWages(ref.Wages, factor)
	avgSalary := WeightedAverageSalary(wages)

	staff := int(float64(input.Beds) * ratio)
	currentRate := bench.TurnoverByFunction[OverallRCMFunction]
	turningOver := int(float64(staff) * currentRate)
	replacementCost := float64(avgSalary) * bench.ReplacementCostMultiplier
	currentCost := int(float64(turningOver) * replacementCost)

	optimized := int(float64(staff) * bench.BestPracticeTurnover)
	reducedCost := int(float64(optimized) * replacementCost)
	savings := currentCost - reducedCost

	return &Metrics{
		HospitalName: input.Name,
		HospitalBeds: input.Beds,
		State:        state,
		SizeCategory: category,

		StaffPerBedRatio: ratio,
		RegionalFactor:   factor,
		WageData:         wages,
		AverageSalary:    avgSalary,

		EstimatedRCMStaff:         staff,
		CurrentTurnoverRate:       currentRate,
		BestPracticeTurnoverRate:  bench.BestPracticeTurnover,
		ReplacementCostMultiplier: bench.ReplacementCostMultiplier,
		ReplacementCostPerHead:    int(replacementCost),

		StaffTurningOverNow:       turningOver,
		CurrentTurnoverCost:       currentCost,
		StaffTurningOverOptimized: optimized,
		ReducedCost:               reducedCost,
		PotentialSavings:          savings,

		ProductivityLoss:   int(float64(savings) * productivityFactor),
		QualityImprovement: int(float64(savings) * qualityFactor),
		TotalImpact:        int(float64(savings) * totalImpactFactor),
		CostPerBed:         int(float64(currentCost) / float64(input.Beds)),
		SavingsPerBed:      int(float64(savings) / float64(input.Beds)),

		ImplementationInvestment: e.config.ImplementationInvestment,
		BreakEvenMonths:          BreakEvenMonths(savings, e.config.ImplementationInvestment),

		DenialRateBenchmark:     bench.DenialRatesByPayer["overall"],
		DaysInARBenchmark:       bench.DaysInAR.Average,
		CollectionRateBenchmark: bench.CollectionRate.Average,
		FunctionTurnover:        copyRates(bench.TurnoverByFunction),
	}, nil
}

// BreakEvenMonths is investment divided by monthly savings, truncated, or
// NoBreakEven when savings are not positive.
func BreakEvenMonths(savings, investment int) int {
	if savings <= 0 {
		return NoBreakEven
	}
	return int(float64(investment) / (float64(savings) / 12))
}

// AdjustWages multiplies every wage field by factor, truncating each.
func AdjustWages(base WageTable, factor float64) WageTable {
	out := make(WageTable, len(base))
	for occ, w := range base {
		out[occ] = OccupationWage{
			MeanAnnual:   int(float64(w.MeanAnnual) * factor),
			MedianAnnual: int(float64(w.MedianAnnual) * factor),
			EntryLevel:   int(float64(w.EntryLevel) * factor),
			Experienced:  int(float64(w.Experienced) * factor),
		}
	}
	return out
}

// WeightedAverageSalary applies SalaryWeights to mean wages in order.
func WeightedAverageSalary(wages WageTable) int {
	var sum float64
	for _, sw := range SalaryWeights {
		sum += float64(wages[sw.Occupation].MeanAnnual) * sw.Weight
	}
	return int(sum)
}

func sizeBucket(beds int, ratios StaffPerBed) (SizeCategory, float64) {
	switch {
	case beds < 100:
		return SizeSmall, ratios.Small
	case beds < 300:
		return SizeMedium, ratios.Medium
	default:
		return SizeLarge, ratios.Large
	}
}

func validateReference(ref *ReferenceData) error {
	if ref == nil {
		return errors.NewReferenceDataUnavailableError("reference data", fmt.Errorf("no reference data supplied"))
	}
	for _, sw := range SalaryWeights {
		if _, ok := ref.Wages[sw.Occupation]; !ok {
			return errors.NewReferenceDataUnavailableError("wage table",
				fmt.Errorf("missing occupation %s", sw.Occupation))
		}
	}
	if _, ok := ref.Benchmarks.TurnoverByFunction[OverallRCMFunction]; !ok {
		return errors.NewReferenceDataUnavailableError("staffing benchmarks",
			fmt.Errorf("missing %s turnover rate", OverallRCMFunction))
	}
	r := ref.Benchmarks.StaffPerBed
	if r.Small <= 0 || r.Medium <= 0 || r.Large <= 0 {
		return errors.NewReferenceDataUnavailableError("staffing benchmarks",
			fmt.Errorf("staff per bed ratios must be positive"))
	}
	if ref.Benchmarks.ReplacementCostMultiplier <= 0 {
		return errors.NewReferenceDataUnavailableError("staffing benchmarks",
			fmt.Errorf("replacement cost multiplier must be positive"))
	}
	return nil
}

func copyRates(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
