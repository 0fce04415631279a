package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSPublisher is the part of the SNS client used to send text messages.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SMSService struct {
	client   SNSPublisher
	senderID string
	isDev    bool
}

func NewSMSService(client SNSPublisher, senderID string, isDev bool) *SMSService {
	return &SMSService{
		client:   client,
		senderID: senderID,
		isDev:    isDev,
	}
}

// NewSNSClient builds an SNS client from the default AWS credential chain.
func NewSNSClient(ctx context.Context, region string) (*sns.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return sns.NewFromConfig(cfg), nil
}

// Send delivers a transactional SMS to an E.164 phone number.
func (s *SMSService) Send(ctx context.Context, phone, message string) error {
	if s.isDev {
		slog.Info("sms sent (dev mode)", "to", phone, "message", message)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("sms service not configured")
	}

	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(phone),
		Message:           aws.String(message),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}

	slog.Info("sms sent", "to", phone, "message_id", aws.ToString(out.MessageId))
	return nil
}
