package ses

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// Sender delivers HTML emails through Amazon SES.
type Sender struct {
	client *ses.Client
	// This address must be verified with Amazon SES.
	from string
}

func NewSender(awsCfg aws.Config, endpoint *string, from string) *Sender {
	return &Sender{
		client: ses.NewFromConfig(awsCfg, func(o *ses.Options) {
			if endpoint != nil {
				o.BaseEndpoint = endpoint
			}
		}),
		from: from,
	}
}

// Verify checks that SES is reachable and the account may send.
func (s *Sender) Verify(ctx context.Context) error {
	out, err := s.client.GetSendQuota(ctx, &ses.GetSendQuotaInput{})
	if err != nil {
		return fmt.Errorf("ses: get send quota: %w", err)
	}
	if out.Max24HourSend == 0 {
		return fmt.Errorf("ses: sending is disabled for this account")
	}
	return nil
}

func (s *Sender) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	_, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses: send email: %w", err)
	}
	return nil
}
