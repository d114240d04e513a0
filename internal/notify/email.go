package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailSender delivers alert emails via AWS SES using the SDK v2.
type EmailSender struct {
	from   string
	to     []string
	client *sesv2.Client
}

// NewEmailSender creates an SES email sender. With empty credentials the
// default AWS credential chain is used (IAM role on ECS).
func NewEmailSender(region, accessKey, secretKey, from string, to []string) *EmailSender {
	if region == "" {
		region = "us-west-2"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	sender := &EmailSender{from: from, to: to}
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		log.Printf("[notify] Warning: failed to initialize AWS config: %v", err)
		return sender
	}
	sender.client = sesv2.NewFromConfig(cfg)
	return sender
}

// Send delivers one alert email to the configured recipients.
func (s *EmailSender) Send(ctx context.Context, subject, htmlBody string) error {
	if s.client == nil {
		return fmt.Errorf("SES client not initialized - check credentials")
	}
	if len(s.to) == 0 {
		return fmt.Errorf("no email recipients configured")
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: s.to},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("sending alert email: %w", err)
	}
	return nil
}
