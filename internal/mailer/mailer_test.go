package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSend(t *testing.T) {
	fake := &fakeSES{}
	m := &SESMailer{client: fake, region: "us-east-1"}

	err := m.Send(context.Background(), Message{
		From:     "orders@powermanufacturing.com",
		FromName: "Power Manufacturing Orders",
		To:       "operations@powermanufacturing.com",
		Subject:  "Daily Orders Summary Report - August 20, 2024",
		HTML:     "<p>report</p>",
		Text:     "report",
	})
	require.NoError(t, err)

	require.NotNil(t, fake.input)
	assert.Equal(t, "Power Manufacturing Orders <orders@powermanufacturing.com>", *fake.input.FromEmailAddress)
	assert.Equal(t, []string{"operations@powermanufacturing.com"}, fake.input.Destination.ToAddresses)
	assert.Equal(t, "Daily Orders Summary Report - August 20, 2024", *fake.input.Content.Simple.Subject.Data)
	assert.Equal(t, "<p>report</p>", *fake.input.Content.Simple.Body.Html.Data)
	require.NotNil(t, fake.input.Content.Simple.Body.Text)
	assert.Equal(t, "report", *fake.input.Content.Simple.Body.Text.Data)
}

func TestSendOmitsEmptyTextPart(t *testing.T) {
	fake := &fakeSES{}
	m := &SESMailer{client: fake}

	err := m.Send(context.Background(), Message{
		From: "a@b.com", FromName: "A", To: "c@d.com", Subject: "s", HTML: "<p>x</p>",
	})
	require.NoError(t, err)
	assert.Nil(t, fake.input.Content.Simple.Body.Text)
}

func TestSendPropagatesTransportError(t *testing.T) {
	fake := &fakeSES{err: errors.New("throttled")}
	m := &SESMailer{client: fake}

	err := m.Send(context.Background(), Message{To: "c@d.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}
