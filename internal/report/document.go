package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"rcm-benchmark/internal/benchmark"
	"rcm-benchmark/internal/refdata"
)

const (
	// targetCostPerBedShare is the target cost per bed as a share of today's.
	targetCostPerBedShare = 0.375
	topFunctions          = 6
	targetARDays          = 35
)

// Document is everything a rendered report shows, precomputed from Metrics.
type Document struct {
	Metrics            *benchmark.Metrics      `json:"metrics"`
	Dashboard          []DashboardRow          `json:"executive_dashboard"`
	TurnoverComparison []SeriesPoint           `json:"turnover_comparison"`
	FunctionTurnover   []SeriesPoint           `json:"function_turnover"`
	FinancialImpact    FinancialImpact         `json:"financial_impact"`
	CostBreakdown      CostBreakdown           `json:"cost_breakdown"`
	CumulativeSavings  []YearValue             `json:"cumulative_savings"`
	ROISchedule        []benchmark.ROIRow      `json:"roi_schedule"`
	ROITimeline        benchmark.ROITimeline   `json:"roi_timeline"`
	RegionalMarket     []RegionalRow           `json:"regional_market"`
	WageBreakdown      []WageRow               `json:"wage_breakdown"`
	Hospital           *refdata.HospitalRecord `json:"hospital_record,omitempty"`
	DataSource         string                  `json:"data_source"`
}

type DashboardRow struct {
	Indicator string `json:"indicator"`
	Current   string `json:"current_state"`
	Target    string `json:"target_state"`
	Impact    string `json:"impact"`
}

// SeriesPoint is one bar of a chart, as a percentage.
type SeriesPoint struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
}

type FinancialImpact struct {
	DirectSavings        int `json:"direct_savings"`
	ProductivityRecovery int `json:"productivity_recovery"`
	QualityImprovement   int `json:"quality_improvement"`
	TotalImpact          int `json:"total_impact"`
}

type CostBreakdown struct {
	CurrentCost   int     `json:"current_cost"`
	OptimizedCost int     `json:"optimized_cost"`
	Savings       int     `json:"savings"`
	SavingsShare  float64 `json:"savings_share_percent"`
}

type YearValue struct {
	Year  string `json:"year"`
	Value int    `json:"value"`
}

type RegionalRow struct {
	Metric     string `json:"metric"`
	Market     string `json:"market"`
	Calculated string `json:"calculated"`
	Variance   string `json:"variance"`
}

type WageRow struct {
	Position    string `json:"position"`
	EntryLevel  int    `json:"entry_level"`
	Median      int    `json:"median"`
	Mean        int    `json:"mean"`
	Experienced int    `json:"experienced"`
}

// BuildDocument derives every report section from m. industryAverage is the
// reference turnover rate for the comparison chart.
func BuildDocument(engine *benchmark.Engine, m *benchmark.Metrics, industryAverage float64) *Document {
	return &Document{
		Metrics:            m,
		Dashboard:          dashboardRows(m),
		TurnoverComparison: turnoverComparison(m, industryAverage),
		FunctionTurnover:   functionTurnover(m.FunctionTurnover),
		FinancialImpact: FinancialImpact{
			DirectSavings:        m.PotentialSavings,
			ProductivityRecovery: m.ProductivityLoss,
			QualityImprovement:   m.QualityImprovement,
			TotalImpact:          m.TotalImpact,
		},
		CostBreakdown:     costBreakdown(m),
		CumulativeSavings: cumulativeSavings(m),
		ROISchedule:       engine.ROISchedule(m),
		ROITimeline:       engine.ROITimeline(m),
		RegionalMarket:    regionalRows(m),
		WageBreakdown:     wageRows(m.WageData),
	}
}

func dashboardRows(m *benchmark.Metrics) []DashboardRow {
	reduction := 0.0
	if m.CurrentTurnoverRate > 0 {
		reduction = (m.CurrentTurnoverRate - m.BestPracticeTurnoverRate) / m.CurrentTurnoverRate * 100
	}

	breakEven := "Not reached"
	if m.HasBreakEven() {
		breakEven = fmt.Sprintf("%d months", m.BreakEvenMonths)
	}

	return []DashboardRow{
		{
			Indicator: "Staff Turnover Rate",
			Current:   percent(m.CurrentTurnoverRate * 100),
			Target:    percent(m.BestPracticeTurnoverRate * 100),
			Impact:    "↓ " + percent(reduction),
		},
		{
			Indicator: "Annual Turnover Cost",
			Current:   money(m.CurrentTurnoverCost),
			Target:    money(m.ReducedCost),
			Impact:    "Save " + money(m.PotentialSavings),
		},
		{
			Indicator: "Cost Per Bed",
			Current:   money(m.CostPerBed),
			Target:    money(int(float64(m.CostPerBed) * targetCostPerBedShare)),
			Impact:    "↓ " + money(m.SavingsPerBed),
		},
		{
			Indicator: "Staff Departures/Year",
			Current:   fmt.Sprintf("%d", m.StaffTurningOverNow),
			Target:    fmt.Sprintf("%d", m.StaffTurningOverOptimized),
			Impact:    fmt.Sprintf("↓ %d", m.StaffTurningOverNow-m.StaffTurningOverOptimized),
		},
		{
			Indicator: "Break-Even Timeline",
			Current:   "-",
			Target:    breakEven,
			Impact:    "Quick ROI",
		},
	}
}

func turnoverComparison(m *benchmark.Metrics, industryAverage float64) []SeriesPoint {
	return []SeriesPoint{
		{Label: m.HospitalName + " (Current)", Percent: round1(m.CurrentTurnoverRate * 100)},
		{Label: "Industry Average", Percent: round1(industryAverage * 100)},
		{Label: "Best Practice", Percent: round1(m.BestPracticeTurnoverRate * 100)},
	}
}

// functionTurnover sorts by rate, highest first, and keeps the top six.
// Equal rates are ordered by name.
func functionTurnover(rates map[string]float64) []SeriesPoint {
	keys := make([]string, 0, len(rates))
	for k := range rates {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if rates[keys[i]] != rates[keys[j]] {
			return rates[keys[i]] > rates[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > topFunctions {
		keys = keys[:topFunctions]
	}

	out := make([]SeriesPoint, 0, len(keys))
	for _, k := range keys {
		out = append(out, SeriesPoint{Label: humanLabel(k), Percent: round1(rates[k] * 100)})
	}
	return out
}

func costBreakdown(m *benchmark.Metrics) CostBreakdown {
	cb := CostBreakdown{
		CurrentCost:   m.CurrentTurnoverCost,
		OptimizedCost: m.ReducedCost,
		Savings:       m.PotentialSavings,
	}
	if m.CurrentTurnoverCost > 0 {
		cb.SavingsShare = round1(float64(m.PotentialSavings) / float64(m.CurrentTurnoverCost) * 100)
	}
	return cb
}

func cumulativeSavings(m *benchmark.Metrics) []YearValue {
	totals := benchmark.CumulativeSavings(m)
	out := make([]YearValue, len(totals))
	for i, v := range totals {
		out[i] = YearValue{Year: fmt.Sprintf("Year %d", i+1), Value: v}
	}
	return out
}

func regionalRows(m *benchmark.Metrics) []RegionalRow {
	variance := "Baseline"
	if m.RegionalFactor != 1.0 {
		variance = "Included"
	}
	return []RegionalRow{
		{Metric: "RCM Staff Salary", Market: money(m.AverageSalary), Calculated: money(m.AverageSalary), Variance: "Market Rate"},
		{Metric: "Cost of Living Index", Market: fmt.Sprintf("%.2f", m.RegionalFactor), Calculated: fmt.Sprintf("%.2f", m.RegionalFactor), Variance: variance},
		{Metric: "Denial Rate", Market: percent(m.DenialRateBenchmark * 100), Calculated: percent(m.DenialRateBenchmark * 100), Variance: "Industry Avg"},
		{Metric: "Days in A/R", Market: fmt.Sprintf("%d", m.DaysInARBenchmark), Calculated: fmt.Sprintf("%d", m.DaysInARBenchmark), Variance: fmt.Sprintf("Target: %d", targetARDays)},
	}
}

func wageRows(wages benchmark.WageTable) []WageRow {
	out := make([]WageRow, 0, len(benchmark.SalaryWeights))
	for _, w := range benchmark.SalaryWeights {
		wage, ok := wages[w.Occupation]
		if !ok {
			continue
		}
		out = append(out, WageRow{
			Position:    humanLabel(string(w.Occupation)),
			EntryLevel:  wage.EntryLevel,
			Median:      wage.MedianAnnual,
			Mean:        wage.MeanAnnual,
			Experienced: wage.Experienced,
		})
	}
	return out
}

// humanLabel title-cases key. A Caser carries state, so each call builds its own.
func humanLabel(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

func money(amount int) string {
	if amount < 0 {
		return "-$" + humanize.Comma(int64(-amount))
	}
	return "$" + humanize.Comma(int64(amount))
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
