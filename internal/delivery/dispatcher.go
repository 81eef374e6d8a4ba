package delivery

import (
	"context"
	"strings"

	apperrors "rcm-benchmark/internal/common/errors"
	"rcm-benchmark/internal/common/logger"
	"rcm-benchmark/internal/common/metrics"
)

const (
	ChannelClay  = "clay"
	ChannelEmail = "email"
	ChannelEvent = "event"
)

// Status records the outcome of each channel. A channel is "success" or
// "sent" when delivered, "disabled" when not configured and "error: ..." on
// failure.
type Status struct {
	Clay  string `json:"clay_webhook_status"`
	Email string `json:"email_status"`
	Event string `json:"event_status"`
}

// Failed reports whether any configured channel failed.
func (s Status) Failed() bool {
	for _, v := range []string{s.Clay, s.Email, s.Event} {
		if strings.HasPrefix(v, "error") {
			return true
		}
	}
	return false
}

// Dispatcher sends a payload over every configured channel. Failures are
// soft: they end up in Status and never abort the other channels.
type Dispatcher struct {
	clay   *ClayNotifier
	email  *SESNotifier
	events *SNSPublisher
	logger logger.Logger
}

func NewDispatcher(clay *ClayNotifier, email *SESNotifier, events *SNSPublisher, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		clay:   clay,
		email:  email,
		events: events,
		logger: log.WithFields(map[string]interface{}{"component": "delivery"}),
	}
}

func (d *Dispatcher) Deliver(ctx context.Context, payload ClayPayload) Status {
	status := Status{Clay: StatusDisabled, Email: StatusDisabled, Event: StatusDisabled}

	if d.clay.Enabled() {
		if err := d.clay.Send(ctx, payload); err != nil {
			status.Clay = d.fail(ChannelClay, payload, err)
		} else {
			status.Clay = StatusSuccess
			d.succeed(ChannelClay, payload, "")
		}
	}

	if d.email != nil {
		if id, err := d.email.Send(ctx, payload); err != nil {
			status.Email = d.fail(ChannelEmail, payload, err)
		} else {
			status.Email = StatusSent
			d.succeed(ChannelEmail, payload, id)
		}
	}

	if d.events != nil {
		if id, err := d.events.Publish(ctx, payload); err != nil {
			status.Event = d.fail(ChannelEvent, payload, err)
		} else {
			status.Event = StatusSent
			d.succeed(ChannelEvent, payload, id)
		}
	}

	return status
}

func (d *Dispatcher) succeed(channel string, payload ClayPayload, messageID string) {
	metrics.Deliveries.WithLabelValues(channel, "success").Inc()
	fields := map[string]interface{}{
		"channel":  channel,
		"hospital": payload.HospitalName,
	}
	if messageID != "" {
		fields["messageId"] = messageID
	}
	d.logger.Info("report delivered", fields)
}

func (d *Dispatcher) fail(channel string, payload ClayPayload, err error) string {
	metrics.Deliveries.WithLabelValues(channel, "failed").Inc()
	stdErr := apperrors.NewDeliveryFailedError(channel, err)
	d.logger.Warn("report delivery failed", map[string]interface{}{
		"channel":   channel,
		"hospital":  payload.HospitalName,
		"errorCode": string(stdErr.Code),
		"error":     stdErr.Details,
	})
	return failureStatus(err)
}
