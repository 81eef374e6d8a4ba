package delivery

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// EmailSender is satisfied by the SES client wrapper.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// EventPublisher is satisfied by the SNS client wrapper.
type EventPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// SESNotifier emails the report link straight to the recipient.
type SESNotifier struct {
	sender    EmailSender
	fromEmail string
}

func NewSESNotifier(sender EmailSender, fromEmail string) *SESNotifier {
	return &SESNotifier{sender: sender, fromEmail: fromEmail}
}

func (n *SESNotifier) Send(ctx context.Context, payload ClayPayload) (string, error) {
	if payload.RecipientEmail == "" {
		return "", fmt.Errorf("no recipient email")
	}
	out, err := n.sender.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.fromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{payload.RecipientEmail},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(payload.EmailSubject), Charset: aws.String("UTF-8")},
			Body: &sestypes.Body{
				Html: &sestypes.Content{Data: aws.String(payload.EmailHTML), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}

// ReportEvent is the message published for each generated report.
type ReportEvent struct {
	Event               string `json:"event"`
	HospitalName        string `json:"hospital_name"`
	HospitalBeds        int    `json:"hospital_beds"`
	State               string `json:"state"`
	RecipientEmail      string `json:"recipient_email"`
	ReportURL           string `json:"report_url"`
	PotentialSavings    int    `json:"potential_savings"`
	CurrentTurnoverCost int    `json:"current_turnover_cost"`
	BreakEvenMonths     int    `json:"break_even_months"`
	ReportGeneratedAt   string `json:"report_generated_at"`
}

const reportGeneratedEvent = "rcm.report.generated"

// SNSPublisher fans out a report summary to an SNS topic.
type SNSPublisher struct {
	publisher EventPublisher
	topicARN  string
}

func NewSNSPublisher(publisher EventPublisher, topicARN string) *SNSPublisher {
	return &SNSPublisher{publisher: publisher, topicARN: topicARN}
}

func (p *SNSPublisher) Publish(ctx context.Context, payload ClayPayload) (string, error) {
	body, err := json.Marshal(ReportEvent{
		Event:               reportGeneratedEvent,
		HospitalName:        payload.HospitalName,
		HospitalBeds:        payload.HospitalBeds,
		State:               payload.State,
		RecipientEmail:      payload.RecipientEmail,
		ReportURL:           payload.ReportURL,
		PotentialSavings:    payload.PotentialSavings,
		CurrentTurnoverCost: payload.CurrentTurnoverCost,
		BreakEvenMonths:     payload.BreakEvenMonths,
		ReportGeneratedAt:   payload.ReportGeneratedAt,
	})
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	out, err := p.publisher.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String("RCM benchmark report generated"),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"event": {DataType: aws.String("String"), StringValue: aws.String(reportGeneratedEvent)},
			"state": {DataType: aws.String("String"), StringValue: aws.String(payload.State)},
		},
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}
