package notifier

import (
	"context"
	"fmt"

	commonaws "attendance-notifier/internal/common/aws"
	"attendance-notifier/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// sesTransport delivers mail through Amazon SES. Selected when the mail
// settings name "ses" as the provider.
type sesTransport struct {
	client *commonaws.SESClient
	logger logger.Logger
}

func newSESTransport(cfg TransportConfig, log logger.Logger) (*sesTransport, error) {
	region := cfg.AWSRegion
	if region == "" {
		region = "us-east-1"
	}
	client, err := commonaws.NewSESClient(context.Background(), region)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &sesTransport{
		client: client,
		logger: log.WithFields(map[string]interface{}{"transport": "ses"}),
	}, nil
}

func (t *sesTransport) Send(ctx context.Context, msg *Message) error {
	body := &types.Body{}
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML)}
	}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text)}
	}

	_, err := t.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject)},
			Body:    body,
		},
		Source: aws.String(msg.From),
	})
	return err
}

func (t *sesTransport) Probe(ctx context.Context) error {
	_, err := t.client.GetSendQuota(ctx)
	return err
}
