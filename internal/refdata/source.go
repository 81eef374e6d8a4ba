// Package refdata resolves the reference tables and optional hospital
// identity used for one benchmark computation.
package refdata

import (
	"context"
	"fmt"

	"rcm-benchmark/internal/benchmark"
	"rcm-benchmark/internal/common/config"
	"rcm-benchmark/internal/common/logger"
)

const (
	SourceStatic = "static"
	SourceLive   = "live"
)

// HospitalRecord is the result of a registry lookup. Found is false when the
// registry had no match; the remaining fields are then empty.
type HospitalRecord struct {
	Found             bool   `json:"found"`
	HospitalName      string `json:"hospital_name,omitempty"`
	ProviderID        string `json:"provider_id,omitempty"`
	State             string `json:"state,omitempty"`
	City              string `json:"city,omitempty"`
	HospitalType      string `json:"hospital_type,omitempty"`
	HospitalOwnership string `json:"hospital_ownership,omitempty"`
	EmergencyServices string `json:"emergency_services,omitempty"`
	OverallRating     string `json:"hospital_overall_rating,omitempty"`
}

// Resolution is everything a source produced for one request.
type Resolution struct {
	Reference *benchmark.ReferenceData
	Hospital  HospitalRecord
	// State is the state the engine should use: the requested one, or the
	// registry's when none was requested.
	State  string
	Source string
	// LookupErr records a failed hospital lookup. It never fails Resolve.
	LookupErr error
}

// ReferenceDataSource supplies reference tables for a request.
type ReferenceDataSource interface {
	Name() string
	Resolve(ctx context.Context, hospitalName, state string) (*Resolution, error)
}

// HospitalLookup finds a hospital in a provider registry.
type HospitalLookup interface {
	Lookup(ctx context.Context, hospitalName string) (HospitalRecord, error)
}

// Deps are the optional collaborators of a live source.
type Deps struct {
	Lookup HospitalLookup
	Cache  HospitalCache
}

// NewSource builds the source named by cfg.Source.
func NewSource(cfg config.RefDataConfig, deps Deps, log logger.Logger) (ReferenceDataSource, error) {
	static := NewStaticDefaultsSource()
	switch cfg.Source {
	case "", SourceStatic:
		return static, nil
	case SourceLive:
		lookup := deps.Lookup
		if lookup == nil {
			return nil, fmt.Errorf("live reference data requires a hospital lookup")
		}
		if deps.Cache != nil {
			lookup = NewCachedLookup(lookup, deps.Cache, config.GetDuration(cfg.CacheTTL*1000), log)
		}
		return NewLiveLookupSource(static, lookup, config.GetDuration(cfg.LookupTimeout), log), nil
	default:
		return nil, fmt.Errorf("unknown reference data source %q", cfg.Source)
	}
}
