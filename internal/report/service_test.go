package report

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rcm-benchmark/internal/benchmark"
	apperrors "rcm-benchmark/internal/common/errors"
	"rcm-benchmark/internal/common/logger"
	"rcm-benchmark/internal/delivery"
	"rcm-benchmark/internal/refdata"
	"rcm-benchmark/internal/reportindex"
	"rcm-benchmark/internal/reportstore"
)

const testReportID = "7c4d6c32-6127-42df-958a-bf6c54f13b71"

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeIndex struct {
	put      []reportindex.Summary
	putErr   error
	searched *reportindex.Query
}

func (f *fakeIndex) Put(_ context.Context, s reportindex.Summary) error {
	f.put = append(f.put, s)
	return f.putErr
}

func (f *fakeIndex) Search(_ context.Context, q reportindex.Query) (*reportindex.SearchResult, error) {
	f.searched = &q
	return &reportindex.SearchResult{Total: len(f.put), Reports: f.put}, nil
}

type fakeDeliverer struct {
	payload *delivery.ClayPayload
	status  delivery.Status
}

func (f *fakeDeliverer) Deliver(_ context.Context, p delivery.ClayPayload) delivery.Status {
	f.payload = &p
	return f.status
}

type failingSource struct{}

func (failingSource) Name() string { return "broken" }
func (failingSource) Resolve(context.Context, string, string) (*refdata.Resolution, error) {
	return nil, errors.New("tables missing")
}

type lookupFailingSource struct{ refdata.ReferenceDataSource }

func (s lookupFailingSource) Resolve(ctx context.Context, name, state string) (*refdata.Resolution, error) {
	res, err := s.ReferenceDataSource.Resolve(ctx, name, state)
	if err == nil {
		res.LookupErr = apperrors.NewHospitalLookupFailedError(name, context.DeadlineExceeded)
	}
	return res, err
}

type countingSource struct {
	refdata.ReferenceDataSource
	calls int
}

func (s *countingSource) Resolve(ctx context.Context, name, state string) (*refdata.Resolution, error) {
	s.calls++
	return s.ReferenceDataSource.Resolve(ctx, name, state)
}

type registryLookup struct{ record refdata.HospitalRecord }

func (l registryLookup) Lookup(context.Context, string) (refdata.HospitalRecord, error) {
	return l.record, nil
}

func newTestService(t *testing.T, deps Deps) *Service {
	t.Helper()
	if deps.Engine == nil {
		deps.Engine = benchmark.NewEngine(benchmark.DefaultConfig())
	}
	if deps.Source == nil {
		deps.Source = refdata.NewStaticDefaultsSource()
	}
	if deps.Store == nil {
		deps.Store = reportstore.NewMemoryStore()
	}
	deps.Logger = logger.NewTestLogger(t)

	svc := NewService(deps, "http://reports.example.org/")
	svc.now = func() time.Time { return fixedNow }
	svc.newID = func() string { return testReportID }
	return svc
}

func TestGenerate(t *testing.T) {
	store := reportstore.NewMemoryStore()
	index := &fakeIndex{}
	svc := newTestService(t, Deps{Store: store, Index: index})

	rep, err := svc.Generate(context.Background(), Request{
		HospitalName: "  General Hospital ",
		HospitalBeds: 250,
		Recipient:    delivery.Recipient{Name: "Jane Smith", Email: "jane@example.org"},
		Origin:       OriginAPI,
	})
	require.NoError(t, err)

	assert.Equal(t, testReportID, rep.ID)
	assert.Equal(t, "http://reports.example.org/reports/"+testReportID, rep.URL)
	assert.Equal(t, fixedNow, rep.CreatedAt)
	assert.Nil(t, rep.Delivery)
	assert.Empty(t, rep.Warnings)

	m := rep.Document.Metrics
	assert.Equal(t, "General Hospital", m.HospitalName)
	assert.Equal(t, "US", m.State)
	assert.Equal(t, 195216, m.PotentialSavings)
	assert.Equal(t, 27, m.BreakEvenMonths)
	assert.Equal(t, refdata.SourceStatic, rep.Document.DataSource)

	rec, err := store.Get(context.Background(), testReportID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.org", rec.RecipientEmail)
	assert.Equal(t, OriginAPI, rec.Origin)

	require.Len(t, index.put, 1)
	assert.Equal(t, 195216, index.put[0].PotentialSavings)
	assert.Equal(t, string(benchmark.SizeMedium), index.put[0].SizeCategory)
}

func TestGenerate_InvalidInput(t *testing.T) {
	svc := newTestService(t, Deps{})
	ctx := context.Background()

	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"missing name", Request{HospitalBeds: 100}, "hospital_name"},
		{"zero beds", Request{HospitalName: "A", HospitalBeds: 0}, "hospital_beds"},
		{"bad state", Request{HospitalName: "A", HospitalBeds: 10, State: "California"}, "state"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Generate(ctx, tt.req)
			require.Error(t, err)
			stdErr := apperrors.AsStandardError(err)
			assert.Equal(t, apperrors.ErrCodeInvalidInput, stdErr.Code)
			assert.Equal(t, tt.field, stdErr.Metadata["field"])
		})
	}
}

func TestGenerate_SourceFailureIsReferenceDataUnavailable(t *testing.T) {
	svc := newTestService(t, Deps{Source: failingSource{}})

	_, err := svc.Generate(context.Background(), Request{HospitalName: "A", HospitalBeds: 10})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeReferenceDataUnavailable))
}

func TestGenerate_LookupFailureIsAWarning(t *testing.T) {
	svc := newTestService(t, Deps{Source: lookupFailingSource{refdata.NewStaticDefaultsSource()}})

	rep, err := svc.Generate(context.Background(), Request{HospitalName: "A", HospitalBeds: 250, State: "tx"})
	require.NoError(t, err)
	assert.Equal(t, "TX", rep.Document.Metrics.State)
	assert.Len(t, rep.Warnings, 1)
}

func TestGenerate_RejectsBedsBeforeLookup(t *testing.T) {
	src := &countingSource{ReferenceDataSource: refdata.NewStaticDefaultsSource()}
	svc := newTestService(t, Deps{Source: src})

	_, err := svc.Generate(context.Background(), Request{HospitalName: "A", HospitalBeds: -5})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))
	assert.Zero(t, src.calls)
}

func TestGenerate_MalformedRegistryStateUsesBaseline(t *testing.T) {
	lookup := registryLookup{record: refdata.HospitalRecord{Found: true, HospitalName: "X", State: "Ohio"}}
	src := refdata.NewLiveLookupSource(refdata.NewStaticDefaultsSource(), lookup, time.Second, logger.NewTestLogger(t))
	svc := newTestService(t, Deps{Source: src})

	rep, err := svc.Generate(context.Background(), Request{HospitalName: "X", HospitalBeds: 200})
	require.NoError(t, err)
	assert.Equal(t, "US", rep.Document.Metrics.State)
	assert.Len(t, rep.Warnings, 1)
}

func TestGenerate_IndexFailureDoesNotFail(t *testing.T) {
	svc := newTestService(t, Deps{Index: &fakeIndex{putErr: errors.New("es down")}})

	_, err := svc.Generate(context.Background(), Request{HospitalName: "A", HospitalBeds: 250})
	assert.NoError(t, err)
}

func TestGenerateAndDeliver(t *testing.T) {
	store := reportstore.NewMemoryStore()
	deliverer := &fakeDeliverer{status: delivery.Status{
		Clay:  "error: 500",
		Email: delivery.StatusDisabled,
		Event: delivery.StatusDisabled,
	}}
	svc := newTestService(t, Deps{Store: store, Delivery: deliverer})

	rep, err := svc.GenerateAndDeliver(context.Background(), Request{
		HospitalName: "General Hospital",
		HospitalBeds: 250,
		State:        "",
		Recipient:    delivery.Recipient{Name: "Jane Smith", Email: "jane@example.org"},
		Origin:       OriginWebhook,
	})
	require.NoError(t, err)
	require.NotNil(t, rep.Delivery)
	assert.Equal(t, "error: 500", rep.Delivery.Clay)

	require.NotNil(t, deliverer.payload)
	assert.Equal(t, rep.URL, deliverer.payload.ReportURL)
	assert.Equal(t, "General Hospital RCM Staffing Analysis", deliverer.payload.OriginalSubject)
	assert.Equal(t, "2026-03-01T12:00:00Z", deliverer.payload.ReportGeneratedAt)

	rec, err := store.Get(context.Background(), rep.ID)
	require.NoError(t, err)
	var status delivery.Status
	require.NoError(t, json.Unmarshal(rec.Delivery, &status))
	assert.Equal(t, "error: 500", status.Clay)
}

func TestGet(t *testing.T) {
	svc := newTestService(t, Deps{})
	ctx := context.Background()

	created, err := svc.Generate(ctx, Request{HospitalName: "General Hospital", HospitalBeds: 250})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.URL, got.URL)
	assert.Equal(t, created.Document.Metrics.PotentialSavings, got.Document.Metrics.PotentialSavings)
	assert.Equal(t, created.Document.Dashboard, got.Document.Dashboard)

	_, err = svc.Get(ctx, "../etc/passwd")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeReportNotFound))

	_, err = svc.Get(ctx, "11111111-2222-3333-4444-555555555555")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeReportNotFound))
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("uses the index when configured", func(t *testing.T) {
		index := &fakeIndex{}
		svc := newTestService(t, Deps{Index: index})
		_, err := svc.Generate(ctx, Request{HospitalName: "General Hospital", HospitalBeds: 250})
		require.NoError(t, err)

		res, err := svc.Search(ctx, reportindex.Query{State: "US"})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		require.NotNil(t, index.searched)
		assert.Equal(t, "US", index.searched.State)
	})

	t.Run("falls back to the archive", func(t *testing.T) {
		svc := newTestService(t, Deps{})
		ids := []string{
			"00000000-0000-0000-0000-000000000001",
			"00000000-0000-0000-0000-000000000002",
		}
		i := 0
		svc.newID = func() string { id := ids[i]; i++; return id }

		_, err := svc.Generate(ctx, Request{HospitalName: "Mercy Medical", HospitalBeds: 250, State: "CA"})
		require.NoError(t, err)
		_, err = svc.Generate(ctx, Request{HospitalName: "General Hospital", HospitalBeds: 80, State: "TX"})
		require.NoError(t, err)

		res, err := svc.Search(ctx, reportindex.Query{State: "ca"})
		require.NoError(t, err)
		require.Equal(t, 1, res.Total)
		assert.Equal(t, "Mercy Medical", res.Reports[0].HospitalName)

		res, err = svc.Search(ctx, reportindex.Query{MinBeds: 100})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)

		res, err = svc.Search(ctx, reportindex.Query{Hospital: "hospital"})
		require.NoError(t, err)
		require.Equal(t, 1, res.Total)
		assert.Equal(t, ids[1], res.Reports[0].ReportID)
	})
}
