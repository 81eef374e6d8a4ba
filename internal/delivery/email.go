package delivery

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/dustin/go-humanize"
)

// EmailData feeds the report-ready email.
type EmailData struct {
	RecipientName       string
	HospitalName        string
	HospitalBeds        int
	State               string
	ReportURL           string
	CurrentTurnoverCost int
	PotentialSavings    int
	BreakEvenMonths     int
	HasBreakEven        bool
}

func (d EmailData) FirstName() string {
	fields := strings.Fields(d.RecipientName)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

var emailTemplate = template.Must(template.New("report-ready").Funcs(template.FuncMap{
	"currency": FormatCurrency,
}).Parse(`<p>Hi {{.FirstName}},</p>

<p>Wow, that was fast! I just finished analyzing {{.HospitalName}}'s specific situation.</p>

<p>The report shows you're likely spending <strong>${{currency .CurrentTurnoverCost}}</strong> annually on RCM turnover costs alone.</p>

<p>But here's the good news: By implementing the strategies in your report, {{.HospitalName}} could save <strong>${{currency .PotentialSavings}}</strong> every year.</p>

<p><a href="{{.ReportURL}}" style="background-color: #1e3a8a; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; display: inline-block; margin: 20px 0; font-weight: bold;">DOWNLOAD YOUR PERSONALIZED REPORT</a></p>

<p>The report includes:<br>
&#10003; Your specific turnover cost analysis<br>
&#10003; {{if .HasBreakEven}}ROI timeline showing {{.BreakEvenMonths}}-month payback{{else}}ROI timeline and the savings levers for your facility{{end}}<br>
&#10003; Implementation roadmap for your {{.HospitalBeds}}-bed facility<br>
&#10003; {{.State}} market salary data</p>

<p>Quick question - are you free for a 15-minute call tomorrow to discuss the fastest path to these savings?</p>

<p>Best,<br>
Mike Patterson<br>
VP Healthcare Solutions<br>
Frost-Arnett Company</p>
`))

// RenderEmail renders the HTML body of the report-ready email.
func RenderEmail(data EmailData) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatCurrency groups thousands: 195216 -> "195,216".
func FormatCurrency(amount int) string {
	return humanize.Comma(int64(amount))
}
