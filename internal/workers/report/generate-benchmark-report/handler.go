package generatebenchmarkreport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"rcm-benchmark/internal/common/camunda"
	"rcm-benchmark/internal/common/errors"
	"rcm-benchmark/internal/common/logger"
	"rcm-benchmark/internal/common/metrics"
	"rcm-benchmark/internal/common/validation"
	"rcm-benchmark/internal/delivery"
	"rcm-benchmark/internal/report"
)

const (
	TaskType = "generate-benchmark-report"
)

// ReportGenerator is satisfied by *report.Service.
type ReportGenerator interface {
	Generate(ctx context.Context, req report.Request) (*report.Report, error)
	GenerateAndDeliver(ctx context.Context, req report.Request) (*report.Report, error)
}

type Handler struct {
	config       *Config
	reports      ReportGenerator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, reports ReportGenerator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		reports:      reports,
		errorHandler: errors.NewErrorHandler(l),
		logger:       l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, start, errors.NewInvalidInputError("variables", fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, start, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.RecipientEmail != "" && !validation.ValidateEmail(input.RecipientEmail) {
		return nil, errors.NewInvalidInputError("recipientEmail",
			fmt.Sprintf("recipientEmail is not a valid address: %q", input.RecipientEmail))
	}

	req := report.Request{
		HospitalName: input.HospitalName,
		HospitalBeds: input.HospitalBeds,
		State:        input.State,
		Recipient: delivery.Recipient{
			Name:            input.RecipientName,
			Email:           input.RecipientEmail,
			OriginalSubject: input.OriginalSubject,
		},
		Origin: report.OriginWorker,
	}

	deliver := h.config.Deliver
	if input.Deliver != nil {
		deliver = *input.Deliver
	}

	var (
		rep *report.Report
		err error
	)
	if deliver && input.RecipientEmail != "" {
		rep, err = h.reports.GenerateAndDeliver(ctx, req)
	} else {
		rep, err = h.reports.Generate(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	m := rep.Document.Metrics
	out := &Output{
		ReportID:            rep.ID,
		ReportURL:           rep.URL,
		State:               m.State,
		EstimatedRCMStaff:   m.EstimatedRCMStaff,
		CurrentTurnoverCost: m.CurrentTurnoverCost,
		PotentialSavings:    m.PotentialSavings,
		BreakEvenMonths:     m.BreakEvenMonths,
		Warnings:            rep.Warnings,
	}
	if rep.Delivery != nil {
		out.ClayStatus = rep.Delivery.Clay
		out.EmailStatus = rep.Delivery.Email
		out.EventStatus = rep.Delivery.Event
	}

	h.logger.Info("benchmark report generated", map[string]interface{}{
		"reportId":         out.ReportID,
		"hospitalName":     m.HospitalName,
		"state":            m.State,
		"potentialSavings": out.PotentialSavings,
		"delivered":        rep.Delivery != nil,
	})
	return out, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	h.sendCommand(ctx, job.Key, "complete job", func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
}

// sendCommand resends transient broker failures. A job whose command never
// lands is reactivated by the broker once its timeout lapses.
func (h *Handler) sendCommand(ctx context.Context, jobKey int64, operation string, send func(context.Context) error) error {
	if err := camunda.SendWithRetry(ctx, h.config.CompleteRetry, operation, send); err != nil {
		h.logger.Error("failed to send job command", map[string]interface{}{
			"jobKey":    jobKey,
			"operation": operation,
			"errorCode": string(errors.AsStandardError(err).Code),
			"error":     err.Error(),
		})
		return err
	}
	h.logger.Info("job command sent", map[string]interface{}{
		"jobKey":    jobKey,
		"operation": operation,
	})
	return nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, start time.Time, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.AsStandardError(err).Code)).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
