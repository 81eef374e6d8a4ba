// Package report runs the full pipeline for one benchmark report: reference
// data resolution, metric computation, archiving, indexing and delivery.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rcm-benchmark/internal/benchmark"
	apperrors "rcm-benchmark/internal/common/errors"
	"rcm-benchmark/internal/common/logger"
	"rcm-benchmark/internal/common/metrics"
	"rcm-benchmark/internal/common/observability"
	"rcm-benchmark/internal/delivery"
	"rcm-benchmark/internal/refdata"
	"rcm-benchmark/internal/reportindex"
	"rcm-benchmark/internal/reportstore"
)

// Origins label where a request came from.
const (
	OriginForm    = "form"
	OriginAPI     = "api"
	OriginWebhook = "webhook"
	OriginReply   = "reply"
	OriginWorker  = "worker"
)

type Request struct {
	HospitalName string
	HospitalBeds int
	State        string
	Recipient    delivery.Recipient
	Origin       string
}

// Report is a generated (or archived) report.
type Report struct {
	ID        string             `json:"id"`
	URL       string             `json:"report_url"`
	Origin    string             `json:"origin"`
	CreatedAt time.Time          `json:"created_at"`
	Recipient delivery.Recipient `json:"recipient"`
	Document  *Document          `json:"document"`
	Delivery  *delivery.Status   `json:"delivery,omitempty"`
	Warnings  []string           `json:"warnings,omitempty"`
}

// Indexer is satisfied by *reportindex.Index.
type Indexer interface {
	Put(ctx context.Context, s reportindex.Summary) error
	Search(ctx context.Context, q reportindex.Query) (*reportindex.SearchResult, error)
}

// Deliverer is satisfied by *delivery.Dispatcher.
type Deliverer interface {
	Deliver(ctx context.Context, payload delivery.ClayPayload) delivery.Status
}

// Deps are the collaborators of a Service. Index, Delivery and
// Observability are optional.
type Deps struct {
	Engine        *benchmark.Engine
	Source        refdata.ReferenceDataSource
	Store         reportstore.Store
	Index         Indexer
	Delivery      Deliverer
	Observability *observability.Observability
	Logger        logger.Logger
}

type Service struct {
	engine  *benchmark.Engine
	source  refdata.ReferenceDataSource
	store   reportstore.Store
	index   Indexer
	deliver Deliverer
	obs     *observability.Observability
	logger  logger.Logger
	baseURL string

	now   func() time.Time
	newID func() string
}

func NewService(deps Deps, publicBaseURL string) *Service {
	return &Service{
		engine:  deps.Engine,
		source:  deps.Source,
		store:   deps.Store,
		index:   deps.Index,
		deliver: deps.Delivery,
		obs:     deps.Observability,
		logger:  deps.Logger.WithFields(map[string]interface{}{"component": "report"}),
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// ReportURL is where an archived report is served.
func (s *Service) ReportURL(id string) string {
	return s.baseURL + "/reports/" + id
}

// Generate computes and archives a report without delivering it.
func (s *Service) Generate(ctx context.Context, req Request) (*Report, error) {
	start := s.now()
	rep, err := s.generate(ctx, req)
	s.record(ctx, req.Origin, start, err)
	return rep, err
}

// GenerateAndDeliver also forwards the report over every delivery channel.
// Delivery failures are reported in Report.Delivery and never fail the call.
func (s *Service) GenerateAndDeliver(ctx context.Context, req Request) (*Report, error) {
	start := s.now()
	rep, err := s.generate(ctx, req)
	s.record(ctx, req.Origin, start, err)
	if err != nil {
		return nil, err
	}
	if s.deliver == nil {
		return rep, nil
	}

	payload, err := delivery.BuildPayload(rep.Document.Metrics, rep.Recipient, rep.URL, rep.CreatedAt)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	status := s.deliver.Deliver(ctx, payload)
	rep.Delivery = &status

	raw, err := json.Marshal(status)
	if err == nil {
		err = s.store.UpdateDelivery(ctx, rep.ID, raw)
	}
	if err != nil {
		s.logger.Warn("failed to record delivery status", map[string]interface{}{
			"reportId": rep.ID,
			"error":    err.Error(),
		})
	}
	return rep, nil
}

func (s *Service) generate(ctx context.Context, req Request) (*Report, error) {
	name := strings.TrimSpace(req.HospitalName)
	if name == "" {
		return nil, apperrors.NewInvalidInputError("hospital_name", "hospital_name is required")
	}
	if req.HospitalBeds <= 0 {
		return nil, apperrors.NewInvalidInputError("hospital_beds",
			fmt.Sprintf("hospital_beds must be a positive integer, got %d", req.HospitalBeds))
	}
	state, err := benchmark.NormalizeState(req.State)
	if err != nil {
		return nil, err
	}

	res, err := s.source.Resolve(ctx, name, state)
	if err != nil {
		if apperrors.AsStandardError(err).Code == apperrors.ErrCodeInternal {
			err = apperrors.NewReferenceDataUnavailableError(s.source.Name(), err)
		}
		return nil, err
	}

	m, err := s.engine.Compute(benchmark.HospitalInput{
		Name:  name,
		Beds:  req.HospitalBeds,
		State: res.State,
	}, res.Reference)
	if err != nil {
		return nil, err
	}

	doc := BuildDocument(s.engine, m, res.Reference.Benchmarks.IndustryAverageTurnover)
	doc.DataSource = res.Source
	if res.Hospital.Found {
		hospital := res.Hospital
		doc.Hospital = &hospital
	}

	rep := &Report{
		ID:        s.newID(),
		Origin:    req.Origin,
		CreatedAt: s.now().UTC(),
		Recipient: req.Recipient,
		Document:  doc,
	}
	rep.URL = s.ReportURL(rep.ID)
	if res.LookupErr != nil {
		rep.Warnings = append(rep.Warnings, "hospital lookup unavailable; using requested state")
	}

	if err := s.archive(ctx, rep); err != nil {
		return nil, err
	}
	s.indexReport(ctx, rep)

	s.logger.Info("report generated", map[string]interface{}{
		"reportId":         rep.ID,
		"hospital":         m.HospitalName,
		"beds":             m.HospitalBeds,
		"state":            m.State,
		"origin":           req.Origin,
		"potentialSavings": m.PotentialSavings,
		"breakEvenMonths":  m.BreakEvenMonths,
	})
	return rep, nil
}

func (s *Service) archive(ctx context.Context, rep *Report) error {
	doc, err := json.Marshal(rep.Document)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	m := rep.Document.Metrics
	return s.store.Save(ctx, &reportstore.Record{
		ID:             rep.ID,
		HospitalName:   m.HospitalName,
		HospitalBeds:   m.HospitalBeds,
		State:          m.State,
		RecipientName:  rep.Recipient.Name,
		RecipientEmail: rep.Recipient.Email,
		Origin:         rep.Origin,
		Document:       doc,
		CreatedAt:      rep.CreatedAt,
	})
}

func (s *Service) indexReport(ctx context.Context, rep *Report) {
	if s.index == nil {
		return
	}
	if err := s.index.Put(ctx, summarize(rep)); err != nil {
		s.logger.Warn("failed to index report", map[string]interface{}{
			"reportId": rep.ID,
			"error":    err.Error(),
		})
	}
}

func summarize(rep *Report) reportindex.Summary {
	m := rep.Document.Metrics
	return reportindex.Summary{
		ReportID:            rep.ID,
		HospitalName:        m.HospitalName,
		HospitalBeds:        m.HospitalBeds,
		State:               m.State,
		SizeCategory:        string(m.SizeCategory),
		Origin:              rep.Origin,
		EstimatedRCMStaff:   m.EstimatedRCMStaff,
		CurrentTurnoverCost: m.CurrentTurnoverCost,
		PotentialSavings:    m.PotentialSavings,
		BreakEvenMonths:     m.BreakEvenMonths,
		ReportURL:           rep.URL,
		CreatedAt:           rep.CreatedAt,
	}
}

func (s *Service) record(ctx context.Context, origin string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
		metrics.ComputeFailures.WithLabelValues(string(apperrors.AsStandardError(err).Code)).Inc()
	} else {
		metrics.ReportsGenerated.WithLabelValues(origin).Inc()
	}
	s.obs.RecordReport(ctx, origin, status)
	s.obs.RecordReportDuration(ctx, s.now().Sub(start), status)
}

// Get loads an archived report.
func (s *Service) Get(ctx context.Context, id string) (*Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewReportNotFoundError(id)
	}
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		ID:        rec.ID,
		URL:       s.ReportURL(rec.ID),
		Origin:    rec.Origin,
		CreatedAt: rec.CreatedAt,
		Recipient: delivery.Recipient{Name: rec.RecipientName, Email: rec.RecipientEmail},
	}
	var doc Document
	if err := json.Unmarshal(rec.Document, &doc); err != nil {
		return nil, apperrors.NewReportStoreFailedError("decode", err)
	}
	rep.Document = &doc
	if len(rec.Delivery) > 0 {
		var status delivery.Status
		if err := json.Unmarshal(rec.Delivery, &status); err == nil {
			rep.Delivery = &status
		}
	}
	return rep, nil
}

// Search queries the report index, or the archive when no index is
// configured.
func (s *Service) Search(ctx context.Context, q reportindex.Query) (*reportindex.SearchResult, error) {
	if s.index != nil {
		res, err := s.index.Search(ctx, q)
		if err != nil {
			return nil, apperrors.NewReportStoreFailedError("search", err)
		}
		return res, nil
	}

	recs, total, err := s.store.Find(ctx, reportstore.Filter{
		State:    q.State,
		Hospital: q.Hospital,
		MinBeds:  q.MinBeds,
		Limit:    q.Size,
	})
	if err != nil {
		return nil, err
	}
	out := &reportindex.SearchResult{Total: total, Reports: []reportindex.Summary{}}
	for _, rec := range recs {
		var doc Document
		if err := json.Unmarshal(rec.Document, &doc); err != nil || doc.Metrics == nil {
			continue
		}
		out.Reports = append(out.Reports, summarize(&Report{
			ID:        rec.ID,
			URL:       s.ReportURL(rec.ID),
			Origin:    rec.Origin,
			CreatedAt: rec.CreatedAt,
			Document:  &doc,
		}))
	}
	return out, nil
}
