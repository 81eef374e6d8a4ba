package refdata

import (
	"context"
	"errors"
	"strings"
	"time"

	"rcm-benchmark/internal/benchmark"
	apperrors "rcm-benchmark/internal/common/errors"
	"rcm-benchmark/internal/common/logger"
	"rcm-benchmark/internal/common/metrics"
)

// LiveLookupSource serves the tables of its base source and enriches the
// request with a bounded hospital registry lookup.
type LiveLookupSource struct {
	base    ReferenceDataSource
	lookup  HospitalLookup
	timeout time.Duration
	logger  logger.Logger
}

func NewLiveLookupSource(base ReferenceDataSource, lookup HospitalLookup, timeout time.Duration, log logger.Logger) *LiveLookupSource {
	return &LiveLookupSource{
		base:    base,
		lookup:  lookup,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "refdata.live"}),
	}
}

func (s *LiveLookupSource) Name() string { return SourceLive }

// Resolve fails only when the base tables cannot be resolved. A failed or
// slow lookup is recorded in Resolution.LookupErr and the requested state is
// kept.
func (s *LiveLookupSource) Resolve(ctx context.Context, hospitalName, state string) (*Resolution, error) {
	res, err := s.base.Resolve(ctx, hospitalName, state)
	if err != nil {
		return nil, err
	}
	res.Source = SourceLive

	if strings.TrimSpace(hospitalName) == "" {
		metrics.HospitalLookups.WithLabelValues("skipped").Inc()
		return res, nil
	}

	record, err := s.lookupWithTimeout(ctx, hospitalName)
	if err != nil {
		outcome := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
		metrics.HospitalLookups.WithLabelValues(outcome).Inc()

		res.LookupErr = apperrors.NewHospitalLookupFailedError(hospitalName, err)
		s.logger.Warn("hospital lookup failed, using requested state", map[string]interface{}{
			"hospital": hospitalName,
			"state":    state,
			"outcome":  outcome,
			"error":    err.Error(),
		})
		return res, nil
	}

	res.Hospital = record
	if !record.Found {
		metrics.HospitalLookups.WithLabelValues("not_found").Inc()
		return res, nil
	}

	metrics.HospitalLookups.WithLabelValues("found").Inc()
	if state == "" && record.State != "" {
		registryState, err := benchmark.NormalizeState(record.State)
		if err != nil {
			res.LookupErr = apperrors.NewHospitalLookupFailedError(hospitalName, err)
			s.logger.Warn("registry state unusable, using national baseline", map[string]interface{}{
				"hospital": hospitalName,
				"state":    record.State,
			})
			return res, nil
		}
		res.State = registryState
	}
	s.logger.Debug("hospital resolved", map[string]interface{}{
		"hospital":   record.HospitalName,
		"providerId": record.ProviderID,
		"state":      res.State,
	})
	return res, nil
}

func (s *LiveLookupSource) lookupWithTimeout(ctx context.Context, hospitalName string) (HospitalRecord, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.lookup.Lookup(ctx, hospitalName)
}
