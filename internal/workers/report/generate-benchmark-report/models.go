package generatebenchmarkreport

// Input mirrors the process variables set by the intake form.
type Input struct {
	HospitalName    string `json:"hospitalName"`
	HospitalBeds    int    `json:"hospitalBeds"`
	State           string `json:"state,omitempty"`
	RecipientName   string `json:"recipientName,omitempty"`
	RecipientEmail  string `json:"recipientEmail,omitempty"`
	OriginalSubject string `json:"originalSubject,omitempty"`
	Deliver         *bool  `json:"deliver,omitempty"`
}

type Output struct {
	ReportID            string   `json:"reportId"`
	ReportURL           string   `json:"reportUrl"`
	State               string   `json:"state"`
	EstimatedRCMStaff   int      `json:"estimatedRcmStaff"`
	CurrentTurnoverCost int      `json:"currentTurnoverCost"`
	PotentialSavings    int      `json:"potentialSavings"`
	BreakEvenMonths     int      `json:"breakEvenMonths"`
	ClayStatus          string   `json:"clayStatus,omitempty"`
	EmailStatus         string   `json:"emailStatus,omitempty"`
	EventStatus         string   `json:"eventStatus,omitempty"`
	Warnings            []string `json:"warnings,omitempty"`
}
