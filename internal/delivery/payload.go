// Package delivery forwards a generated report to the Clay webhook and,
// when enabled, to SES email and an SNS topic.
package delivery

import (
	"fmt"
	"strings"
	"time"

	"rcm-benchmark/internal/benchmark"
)

// Recipient identifies who the report is addressed to.
type Recipient struct {
	Name            string `json:"recipient_name"`
	Email           string `json:"recipient_email"`
	OriginalSubject string `json:"original_subject,omitempty"`
}

// ClayPayload is the record posted to the Clay webhook.
type ClayPayload struct {
	HospitalName        string `json:"hospital_name"`
	HospitalBeds        int    `json:"hospital_beds"`
	RecipientName       string `json:"recipient_name"`
	RecipientEmail      string `json:"recipient_email"`
	State               string `json:"state"`
	OriginalSubject     string `json:"original_subject"`
	ReportURL           string `json:"report_url"`
	PotentialSavings    int    `json:"potential_savings"`
	CurrentTurnoverCost int    `json:"current_turnover_cost"`
	BreakEvenMonths     int    `json:"break_even_months"`
	SavingsPerBed       int    `json:"savings_per_bed"`
	ReportGeneratedAt   string `json:"report_generated_at"`
	EmailHTML           string `json:"email_html"`
	EmailSubject        string `json:"email_subject"`
	EstimatedRCMStaff   int    `json:"estimated_rcm_staff"`
	StaffTurningOverNow int    `json:"staff_turning_over_now"`
	CostPerBed          int    `json:"cost_per_bed"`
}

// DefaultSubject is used when the inbound request carried no subject line.
func DefaultSubject(hospitalName string) string {
	return fmt.Sprintf("%s RCM Staffing Analysis", hospitalName)
}

// ReplySubject is the subject of the outbound report email.
func ReplySubject(originalSubject string) string {
	return fmt.Sprintf("Re: %s - Your RCM Benchmark Report is Ready", originalSubject)
}

// BuildPayload assembles the webhook record, rendering the email body.
func BuildPayload(m *benchmark.Metrics, to Recipient, reportURL string, generatedAt time.Time) (ClayPayload, error) {
	subject := strings.TrimSpace(to.OriginalSubject)
	if subject == "" {
		subject = DefaultSubject(m.HospitalName)
	}

	html, err := RenderEmail(EmailData{
		RecipientName:       to.Name,
		HospitalName:        m.HospitalName,
		HospitalBeds:        m.HospitalBeds,
		State:               m.State,
		ReportURL:           reportURL,
		CurrentTurnoverCost: m.CurrentTurnoverCost,
		PotentialSavings:    m.PotentialSavings,
		BreakEvenMonths:     m.BreakEvenMonths,
		HasBreakEven:        m.HasBreakEven(),
	})
	if err != nil {
		return ClayPayload{}, err
	}

	return ClayPayload{
		HospitalName:        m.HospitalName,
		HospitalBeds:        m.HospitalBeds,
		RecipientName:       to.Name,
		RecipientEmail:      to.Email,
		State:               m.State,
		OriginalSubject:     subject,
		ReportURL:           reportURL,
		PotentialSavings:    m.PotentialSavings,
		CurrentTurnoverCost: m.CurrentTurnoverCost,
		BreakEvenMonths:     m.BreakEvenMonths,
		SavingsPerBed:       m.SavingsPerBed,
		ReportGeneratedAt:   generatedAt.UTC().Format(time.RFC3339),
		EmailHTML:           html,
		EmailSubject:        ReplySubject(subject),
		EstimatedRCMStaff:   m.EstimatedRCMStaff,
		StaffTurningOverNow: m.StaffTurningOverNow,
		CostPerBed:          m.CostPerBed,
	}, nil
}
