// Package reportstore archives generated reports so their links keep working.
package reportstore

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Record is one archived report. Document and Delivery hold JSON.
type Record struct {
	ID             string          `json:"id"`
	HospitalName   string          `json:"hospital_name"`
	HospitalBeds   int             `json:"hospital_beds"`
	State          string          `json:"state"`
	RecipientName  string          `json:"recipient_name,omitempty"`
	RecipientEmail string          `json:"recipient_email,omitempty"`
	Origin         string          `json:"origin"`
	Document       json.RawMessage `json:"document"`
	Delivery       json.RawMessage `json:"delivery,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Store is implemented by PostgresStore and MemoryStore. Get and
// UpdateDelivery return a REPORT_NOT_FOUND error for unknown ids; every other
// failure is a REPORT_STORE_FAILED error.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	UpdateDelivery(ctx context.Context, id string, delivery json.RawMessage) error
	// Find returns the newest records matching f, at most f.Limit of them,
	// and the number of records matching f overall.
	Find(ctx context.Context, f Filter) ([]Record, int, error)
}

// Filter narrows Find. Zero fields match everything.
type Filter struct {
	State    string
	Hospital string
	MinBeds  int
	Limit    int
}

func (f Filter) matches(rec Record) bool {
	if f.State != "" && !strings.EqualFold(rec.State, f.State) {
		return false
	}
	if f.MinBeds > 0 && rec.HospitalBeds < f.MinBeds {
		return false
	}
	if f.Hospital != "" && !strings.Contains(strings.ToLower(rec.HospitalName), strings.ToLower(f.Hospital)) {
		return false
	}
	return true
}

const defaultListLimit = 50

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return defaultListLimit
	}
	return limit
}
