package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// ServiceInterface defines the contract for an operational email sender.
type ServiceInterface interface {
	Send(ctx context.Context, subject, body string) error
}

// SESMailer sends plain-text email through AWS SES v2.
type SESMailer struct {
	client *sesv2.Client
	from   string
	to     string
}

// NewSESMailer builds an SES-backed mailer using the default AWS credential
// chain. Returns nil when from or to is empty, which disables email cleanly.
func NewSESMailer(ctx context.Context, region, from, to string) (*SESMailer, error) {
	if from == "" || to == "" {
		return nil, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("mailer: load aws config: %w", err)
	}
	return &SESMailer{
		client: sesv2.NewFromConfig(cfg),
		from:   from,
		to:     to,
	}, nil
}

// Send delivers one plain-text message to the configured ops inbox.
func (m *SESMailer) Send(ctx context.Context, subject, body string) error {
	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{m.to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("mailer.Send: %w", err)
	}
	return nil
}
