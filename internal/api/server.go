// Package api serves the report form, the report generation endpoints and
// the operational routes over gin.
package api

import (
	"context"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "rcm-benchmark/internal/common/errors"
	"rcm-benchmark/internal/common/logger"
	"rcm-benchmark/internal/report"
	"rcm-benchmark/internal/reportindex"
)

// ServiceName is reported by /health.
const ServiceName = "Enhanced RCM Benchmark Report Generator"

// ReportService is satisfied by *report.Service.
type ReportService interface {
	Generate(ctx context.Context, req report.Request) (*report.Report, error)
	GenerateAndDeliver(ctx context.Context, req report.Request) (*report.Report, error)
	Get(ctx context.Context, id string) (*report.Report, error)
	Search(ctx context.Context, q reportindex.Query) (*reportindex.SearchResult, error)
}

// ReadinessCheck pings one dependency.
type ReadinessCheck func(ctx context.Context) error

type Options struct {
	Version        string
	RefDataSource  string
	RequestTimeout time.Duration
	Checks         map[string]ReadinessCheck
}

type Server struct {
	reports ReportService
	opts    Options
	logger  logger.Logger
}

func NewServer(reports ReportService, opts Options, log logger.Logger) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	return &Server{
		reports: reports,
		opts:    opts,
		logger:  log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), requestMetrics())
	r.SetHTMLTemplate(template.Must(template.New("form").Parse(formTemplate)))

	r.GET("/", s.form)
	r.POST("/generate", s.generate(report.OriginForm))
	r.POST("/api/generate", s.apiGenerate)
	r.POST("/webhook/send-to-clay", s.sendToClay)
	r.POST("/webhook/staffing-reply", s.staffingReply)
	r.GET("/reports/:id", s.getReport)
	r.GET("/api/reports", s.searchReports)
	r.GET("/api/data-sources", s.dataSources)
	r.GET("/health", s.health)
	r.GET("/ready", s.ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func (s *Server) form(c *gin.Context) {
	c.HTML(http.StatusOK, "form", gin.H{"Version": s.opts.Version})
}

func (s *Server) generate(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := bindReportRequest(c, reportValidator)
		if err != nil {
			s.fail(c, err)
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.RequestTimeout)
		defer cancel()

		rep, err := s.reports.Generate(ctx, req.toServiceRequest(origin))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, rep)
	}
}

func (s *Server) apiGenerate(c *gin.Context) {
	req, err := bindReportRequest(c, reportValidator)
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.RequestTimeout)
	defer cancel()

	rep, err := s.reports.Generate(ctx, req.toServiceRequest(report.OriginAPI))
	if err != nil {
		s.fail(c, err)
		return
	}
	m := rep.Document.Metrics
	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"message":    "Enhanced report generated for " + m.HospitalName,
		"location":   m.HospitalName + ", " + m.State,
		"report_id":  rep.ID,
		"report_url": rep.URL,
		"features":   []string{"real_wage_data", "regional_adjustments", "industry_benchmarks"},
		"warnings":   rep.Warnings,
		"metrics":    m,
	})
}

func (s *Server) sendToClay(c *gin.Context) {
	req, err := bindReportRequest(c, deliveryValidator)
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.RequestTimeout)
	defer cancel()

	rep, err := s.reports.GenerateAndDeliver(ctx, req.toServiceRequest(report.OriginWebhook))
	if err != nil {
		s.fail(c, err)
		return
	}
	body := gin.H{
		"status":     "success",
		"report_id":  rep.ID,
		"report_url": rep.URL,
		"metrics":    rep.Document.Metrics,
	}
	if rep.Delivery != nil {
		body["clay_webhook_status"] = rep.Delivery.Clay
		body["delivery"] = rep.Delivery
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) staffingReply(c *gin.Context) {
	req, err := bindReportRequest(c, deliveryValidator)
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.RequestTimeout)
	defer cancel()

	rep, err := s.reports.Generate(ctx, req.toServiceRequest(report.OriginReply))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"message":    "Report generated and ready for delivery",
		"report_id":  rep.ID,
		"report_url": rep.URL,
		"recipient":  rep.Recipient.Email,
	})
}

func (s *Server) getReport(c *gin.Context) {
	rep, err := s.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (s *Server) searchReports(c *gin.Context) {
	q := reportindex.Query{
		State:    c.Query("state"),
		Hospital: c.Query("hospital"),
	}
	for name, dst := range map[string]*int{"min_beds": &q.MinBeds, "size": &q.Size} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.fail(c, apperrors.NewInvalidInputError(name, "must be a non-negative integer"))
			return
		}
		*dst = n
	}

	res, err := s.reports.Search(c.Request.Context(), q)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) dataSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"active_source": s.opts.RefDataSource,
		"integrated_sources": gin.H{
			"cms": gin.H{
				"name":        "CMS Hospital Compare",
				"description": "Hospital identity, state and ratings from the provider-data API",
				"used_for":    "hospital lookup",
			},
			"bls": gin.H{
				"name":        "Bureau of Labor Statistics",
				"description": "Mean, median, entry and experienced wages for RCM occupations",
				"used_for":    "salary and replacement cost",
			},
			"benchmarks": gin.H{
				"name":        "Industry staffing benchmarks",
				"description": "MGMA, HFMA and ACHE staffing ratios, turnover, denial and A/R benchmarks",
				"used_for":    "staffing and turnover",
			},
			"regional": gin.H{
				"name":        "Regional cost of living",
				"description": "State cost factors applied to every wage",
				"used_for":    "regional adjustment",
			},
		},
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  ServiceName,
		"version":  s.opts.Version,
		"features": []string{"real_data", "charts", "roi_analysis", "clay_integration"},
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.opts.Checks))
	for name, check := range s.opts.Checks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}

func (s *Server) fail(c *gin.Context, err error) {
	stdErr := apperrors.AsStandardError(err)
	status := apperrors.HTTPStatus(stdErr.Code)
	fields := map[string]interface{}{
		"path":      c.FullPath(),
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields)
	} else {
		s.logger.Debug("request rejected", fields)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"status": "error",
		"error": gin.H{
			"code":    stdErr.Code,
			"message": stdErr.Message,
			"details": stdErr.Details,
		},
	})
}
