package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"rcm-benchmark/internal/benchmark"
	apperrors "rcm-benchmark/internal/common/errors"
	"rcm-benchmark/internal/refdata"
	"rcm-benchmark/internal/report"
)

type computeFlags struct {
	Name       string
	Beds       int
	State      string
	Investment int
	AnnualCost int
}

var compute computeFlags

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute benchmark metrics for one hospital",
	RunE:  runCompute,
}

var roiCmd = &cobra.Command{
	Use:   "roi",
	Short: "Print the 3-year ROI schedule and break-even timeline",
	RunE:  runROI,
}

func init() {
	for _, c := range []*cobra.Command{computeCmd, roiCmd} {
		f := c.Flags()
		f.StringVar(&compute.Name, "name", "", "Hospital name (required)")
		f.IntVar(&compute.Beds, "beds", 0, "Licensed bed count (required)")
		f.StringVar(&compute.State, "state", "", "Two-letter state code; blank for the national baseline")
		f.IntVar(&compute.Investment, "investment", benchmark.DefaultConfig().ImplementationInvestment, "Implementation investment in dollars")
		f.IntVar(&compute.AnnualCost, "annual-cost", benchmark.DefaultConfig().AnnualProgramCost, "Annual program cost in dollars")
		_ = c.MarkFlagRequired("name")
		_ = c.MarkFlagRequired("beds")
		rootCmd.AddCommand(c)
	}
}

// buildDocument runs the engine against the bundled reference tables.
func buildDocument(ctx context.Context, f computeFlags) (*benchmark.Engine, *report.Document, error) {
	if f.Investment < 0 {
		return nil, nil, apperrors.NewInvalidInputError("investment", "--investment must not be negative")
	}
	if f.AnnualCost < 0 {
		return nil, nil, apperrors.NewInvalidInputError("annual-cost", "--annual-cost must not be negative")
	}
	state, err := benchmark.NormalizeState(f.State)
	if err != nil {
		return nil, nil, err
	}

	res, err := refdata.NewStaticDefaultsSource().Resolve(ctx, f.Name, state)
	if err != nil {
		return nil, nil, err
	}

	engine := benchmark.NewEngine(benchmark.Config{
		ImplementationInvestment: f.Investment,
		AnnualProgramCost:        f.AnnualCost,
	})
	m, err := engine.Compute(benchmark.HospitalInput{Name: f.Name, Beds: f.Beds, State: res.State}, res.Reference)
	if err != nil {
		return nil, nil, err
	}

	doc := report.BuildDocument(engine, m, res.Reference.Benchmarks.IndustryAverageTurnover)
	doc.DataSource = res.Source
	return engine, doc, nil
}

func runCompute(cmd *cobra.Command, args []string) error {
	newCLILogger().Debug("computing benchmark", map[string]interface{}{"hospital": compute.Name, "beds": compute.Beds})

	_, doc, err := buildDocument(cmd.Context(), compute)
	if err != nil {
		return err
	}
	if cli.JSON {
		return writeJSON(cmd.OutOrStdout(), doc)
	}
	return writeSummary(cmd.OutOrStdout(), doc)
}

func runROI(cmd *cobra.Command, args []string) error {
	_, doc, err := buildDocument(cmd.Context(), compute)
	if err != nil {
		return err
	}
	if cli.JSON {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
			"roi_schedule":       doc.ROISchedule,
			"roi_timeline":       doc.ROITimeline,
			"cumulative_savings": doc.CumulativeSavings,
		})
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Period\tInvestment\tSavings\tNet Benefit\tROI\t")
	for _, row := range doc.ROISchedule {
		fmt.Fprintf(w, "%s\t$%s\t$%s\t$%s\t%.1f%%\t\n",
			row.Period, humanize.Comma(int64(row.Investment)), humanize.Comma(int64(row.Savings)),
			humanize.Comma(int64(row.NetBenefit)), row.ROIPercent)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if doc.ROITimeline.BreakEvenReached {
		_, err = fmt.Fprintf(out, "\nBreak-even in month %d of the 36-month projection\n", doc.ROITimeline.BreakEvenMonth)
	} else {
		_, err = fmt.Fprintln(out, "\nBreak-even not reached within 36 months")
	}
	return err
}

func writeSummary(out io.Writer, doc *report.Document) error {
	m := doc.Metrics
	fmt.Fprintf(out, "%s (%d beds, %s, %s data)\n\n", m.HospitalName, m.HospitalBeds, m.State, doc.DataSource)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Indicator\tCurrent\tTarget\tImpact")
	for _, row := range doc.Dashboard {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row.Indicator, row.Current, row.Target, row.Impact)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nEstimated RCM staff:   %d\n", m.EstimatedRCMStaff)
	fmt.Fprintf(out, "Average salary:        $%s\n", humanize.Comma(int64(m.AverageSalary)))
	fmt.Fprintf(out, "Potential savings:     $%s\n", humanize.Comma(int64(m.PotentialSavings)))
	_, err := fmt.Fprintf(out, "Total annual impact:   $%s\n", humanize.Comma(int64(m.TotalImpact)))
	return err
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
