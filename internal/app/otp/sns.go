package otp

import (
	"context"
	"errors"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSSenderConfig holds the configuration required to publish SMS through AWS SNS.
type SNSSenderConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SenderID        string
}

// snsSender implements the Sender interface on top of AWS SNS.
type snsSender struct {
	cfg    SNSSenderConfig
	client *sns.Client
}

// NewSNSSender initializes an SNS-backed SMS sender.
func NewSNSSender(cfg SNSSenderConfig) (Sender, error) {
	// Load Configuration
	sdkCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		log.Printf("Failed to load AWS SDK config: %v", err)
		return nil, errors.New("failed to initialize SNS client configuration")
	}

	return &snsSender{
		cfg:    cfg,
		client: sns.NewFromConfig(sdkCfg),
	}, nil
}

// SendCode publishes the one-time code as a transactional SMS.
func (s *snsSender) SendCode(ctx context.Context, phoneNumber, code string) error {
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if s.cfg.SenderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.cfg.SenderID),
		}
	}

	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(phoneNumber),
		Message:           aws.String(MessageBody(code)),
		MessageAttributes: attrs,
	})

	if err != nil {
		log.Printf("SNS publish failed for %s: %v", phoneNumber, err)
		return errors.New("failed to deliver verification SMS")
	}

	return nil
}
