// internal/benchmark/models.go
package benchmark

// Occupation keys the wage table.
type Occupation string

const (
	MedicalRecordsSpecialists Occupation = "medical_records_specialists"
	MedicalCoders             Occupation = "medical_coders"
	BillingSpecialists        Occupation = "billing_specialists"
)

// SalaryWeights is the fixed mix used for the weighted average salary,
// applied in this order.
var SalaryWeights = []struct {
	Occupation Occupation
	Weight     float64
}{
	{MedicalRecordsSpecialists, 0.3},
	{MedicalCoders, 0.4},
	{BillingSpecialists, 0.3},
}

// OccupationWage holds annual wages in whole currency units.
type OccupationWage struct {
	MeanAnnual   int `json:"mean_annual"`
	MedianAnnual int `json:"median_annual"`
	EntryLevel   int `json:"entry_level"`
	Experienced  int `json:"experienced"`
}

// WageTable maps occupation to its wages.
type WageTable map[Occupation]OccupationWage

// StaffPerBed is the RCM headcount ratio per size bucket.
type StaffPerBed struct {
	Small    float64 `json:"small_hospital"`
	Medium   float64 `json:"medium_hospital"`
	Large    float64 `json:"large_hospital"`
	Academic float64 `json:"academic_medical"`
}

type DaysInARBenchmarks struct {
	BestPractice int `json:"best_practice"`
	Average      int `json:"average"`
	Concerning   int `json:"concerning"`
	Critical     int `json:"critical"`
}

type CollectionRateBenchmarks struct {
	BestPractice float64 `json:"best_practice"`
	Average      float64 `json:"average"`
	BelowAverage float64 `json:"below_average"`
	Poor         float64 `json:"poor"`
}

// StaffingBenchmarks are industry constants. TurnoverByFunction must contain
// OverallRCMFunction.
type StaffingBenchmarks struct {
	StaffPerBed               StaffPerBed              `json:"rcm_staff_per_bed"`
	TurnoverByFunction        map[string]float64       `json:"turnover_rates_by_function"`
	BestPracticeTurnover      float64                  `json:"best_practice_turnover"`
	ReplacementCostMultiplier float64                  `json:"replacement_cost_multiplier"`
	IndustryAverageTurnover   float64                  `json:"industry_average_turnover"`
	DenialRatesByPayer        map[string]float64       `json:"denial_rates_by_payer"`
	DaysInAR                  DaysInARBenchmarks       `json:"days_in_ar_benchmarks"`
	CollectionRate            CollectionRateBenchmarks `json:"collection_rate_benchmarks"`
}

// OverallRCMFunction is the turnover key used as the hospital's current rate.
const OverallRCMFunction = "overall_rcm"

// ReferenceData bundles every table the engine reads. A value is never
// mutated after construction and may be shared across goroutines.
type ReferenceData struct {
	Wages           WageTable          `json:"wages"`
	RegionalFactors map[string]float64 `json:"regional_factors"`
	Benchmarks      StaffingBenchmarks `json:"benchmarks"`
}

// RegionalFactor returns the state's cost multiplier, 1.0 when unknown.
func (r *ReferenceData) RegionalFactor(state string) float64 {
	if f, ok := r.RegionalFactors[state]; ok {
		return f
	}
	return 1.0
}

// HospitalInput is one report request as seen by the engine.
type HospitalInput struct {
	Name  string `json:"hospital_name"`
	Beds  int    `json:"hospital_beds"`
	State string `json:"state,omitempty"`
}

// SizeCategory names the staffing bucket.
type SizeCategory string

const (
	SizeSmall  SizeCategory = "small_hospital"
	SizeMedium SizeCategory = "medium_hospital"
	SizeLarge  SizeCategory = "large_hospital"
)

// NoBreakEven is reported when savings are not positive.
const NoBreakEven = 999

// Metrics is the flat result of one computation. Monetary and count fields
// are truncated integers; rate fields stay fractional.
type Metrics struct {
	HospitalName string       `json:"hospital_name"`
	HospitalBeds int          `json:"hospital_beds"`
	State        string       `json:"state"`
	SizeCategory SizeCategory `json:"hospital_size_category"`

	StaffPerBedRatio float64   `json:"staff_per_bed_ratio"`
	RegionalFactor   float64   `json:"regional_factor"`
	WageData         WageTable `json:"wage_data"`
	AverageSalary    int       `json:"average_salary"`

	EstimatedRCMStaff         int     `json:"estimated_rcm_staff"`
	CurrentTurnoverRate       float64 `json:"current_turnover_rate"`
	BestPracticeTurnoverRate  float64 `json:"best_practice_turnover_rate"`
	ReplacementCostMultiplier float64 `json:"replacement_cost_multiplier"`
	ReplacementCostPerHead    int     `json:"replacement_cost_per_head"`

	StaffTurningOverNow       int `json:"staff_turning_over_now"`
	CurrentTurnoverCost       int `json:"current_turnover_cost"`
	StaffTurningOverOptimized int `json:"staff_turning_over_optimized"`
	ReducedCost               int `json:"reduced_cost"`
	PotentialSavings          int `json:"potential_savings"`

	ProductivityLoss   int `json:"productivity_loss"`
	QualityImprovement int `json:"quality_improvement"`
	TotalImpact        int `json:"total_impact"`
	CostPerBed         int `json:"cost_per_bed"`
	SavingsPerBed      int `json:"savings_per_bed"`

	ImplementationInvestment int `json:"implementation_investment"`
	BreakEvenMonths          int `json:"break_even_months"`

	DenialRateBenchmark     float64            `json:"denial_benchmark"`
	DaysInARBenchmark       int                `json:"ar_days_benchmark"`
	CollectionRateBenchmark float64            `json:"collection_rate_benchmark"`
	FunctionTurnover        map[string]float64 `json:"function_turnover"`
}

// HasBreakEven reports whether the savings ever repay the investment.
func (m *Metrics) HasBreakEven() bool {
	return m.BreakEvenMonths != NoBreakEven
}
