// internal/benchmark/roi.go
package benchmark

import "math"

// ROIRow is one period of the ROI summary.
type ROIRow struct {
	Period     string  `json:"period"`
	Investment int     `json:"investment"`
	Savings    int     `json:"savings"`
	NetBenefit int     `json:"net_benefit"`
	ROIPercent float64 `json:"roi_percent"`
}

// ROIPoint is one sample of the cumulative ROI timeline.
type ROIPoint struct {
	Month      int     `json:"month"`
	Investment float64 `json:"cumulative_investment"`
	Savings    float64 `json:"cumulative_savings"`
	NetBenefit float64 `json:"net_benefit"`
}

// ROITimeline is the 36-month cumulative projection.
type ROITimeline struct {
	Points           []ROIPoint `json:"points"`
	BreakEvenReached bool       `json:"break_even_reached"`
	BreakEvenMonth   int        `json:"break_even_month,omitempty"`
}

const (
	timelineMonths = 36
	timelineStep   = 3
	yearsProjected = 3
)

// ROISchedule returns Year 1..3 and a 3-year total. Year 1 carries the
// implementation investment, later years the annual program cost.
func (e *Engine) ROISchedule(m *Metrics) []ROIRow {
	s := m.PotentialSavings
	y1 := e.config.ImplementationInvestment
	yn := e.config.AnnualProgramCost
	total := y1 + yn*(yearsProjected-1)

	return []ROIRow{
		roiRow("Year 1", y1, s),
		roiRow("Year 2", yn, s),
		roiRow("Year 3", yn, s),
		roiRow("3-Year Total", total, s*yearsProjected),
	}
}

func roiRow(period string, investment, savings int) ROIRow {
	net := savings - investment
	row := ROIRow{
		Period:     period,
		Investment: investment,
		Savings:    savings,
		NetBenefit: net,
	}
	if investment > 0 {
		row.ROIPercent = math.Round(float64(net)/float64(investment)*100*10) / 10
	}
	return row
}

// ROITimeline samples cumulative investment and savings every 3 months from
// month 0 to 36. Investment accrues linearly within each year. The break-even
// month is the first sample after month 0 where savings cover investment.
func (e *Engine) ROITimeline(m *Metrics) ROITimeline {
	s := float64(m.PotentialSavings)
	y1 := float64(e.config.ImplementationInvestment)
	yn := float64(e.config.AnnualProgramCost)

	var tl ROITimeline
	for month := 0; month <= timelineMonths; month += timelineStep {
		var inv, ret float64
		mf := float64(month)
		switch {
		case month == 0:
		case month <= 12:
			inv = (mf / 12) * y1
			ret = (mf / 12) * s
		case month <= 24:
			inv = y1 + ((mf-12)/12)*yn
			ret = s + ((mf-12)/12)*s
		default:
			inv = y1 + yn + ((mf-24)/12)*yn
			ret = 2*s + ((mf-24)/12)*s
		}

		idx := len(tl.Points)
		tl.Points = append(tl.Points, ROIPoint{
			Month:      month,
			Investment: inv,
			Savings:    ret,
			NetBenefit: ret - inv,
		})
		if !tl.BreakEvenReached && idx > 0 && ret >= inv {
			tl.BreakEvenReached = true
			tl.BreakEvenMonth = month
		}
	}
	return tl
}

// CumulativeSavings returns running savings totals for years 1..3.
func CumulativeSavings(m *Metrics) []int {
	out := make([]int, yearsProjected)
	for i := range out {
		out[i] = m.PotentialSavings * (i + 1)
	}
	return out
}
