package mailer_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/jobify/pkg/mailer"
	mailtpl "github.com/oksasatya/jobify/pkg/mailer/templates"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, to, subject, text, html string) error {
	return m.Called(ctx, to, subject, text, html).Error(0)
}

func newProcessor(s mailer.Sender) *mailer.Processor {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return mailer.NewProcessor(s, l)
}

func body(t *testing.T, job mailer.EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestProcessorRendersTemplate(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, "ann@x.com", "Welcome to Jobify, Ann", mock.MatchedBy(func(text string) bool {
		return strings.Contains(text, "ann@x.com")
	}), mock.Anything).Return(nil).Once()

	job := mailer.EmailJob{
		To:       "ann@x.com",
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData(mailtpl.Brand{AppName: "Jobify"}, "Ann", "ann@x.com"),
	}
	require.NoError(t, newProcessor(sender).Handle(context.Background(), body(t, job)))
	sender.AssertExpectations(t)
}

func TestProcessorRawMessage(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, "ann@x.com", "Hi", "plain", "").Return(nil).Once()

	job := mailer.EmailJob{To: "ann@x.com", Subject: "Hi", Text: "plain"}
	require.NoError(t, newProcessor(sender).Handle(context.Background(), body(t, job)))
	sender.AssertExpectations(t)
}

func TestProcessorPermanentFailures(t *testing.T) {
	sender := new(MockSender)
	p := newProcessor(sender)
	ctx := context.Background()

	assert.ErrorIs(t, p.Handle(ctx, []byte("{not json")), mailer.ErrPermanent)
	assert.ErrorIs(t, p.Handle(ctx, body(t, mailer.EmailJob{Subject: "x", Text: "y"})), mailer.ErrPermanent)
	assert.ErrorIs(t, p.Handle(ctx, body(t, mailer.EmailJob{To: "a@x.com", Template: "otp"})), mailer.ErrPermanent)
	assert.ErrorIs(t, p.Handle(ctx, body(t, mailer.EmailJob{To: "a@x.com", Subject: "only"})), mailer.ErrPermanent)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessorSendFailureIsRetryable(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("503")).Once()

	err := newProcessor(sender).Handle(context.Background(), body(t, mailer.EmailJob{To: "a@x.com", Subject: "s", HTML: "<p>x</p>"}))
	require.Error(t, err)
	assert.False(t, errors.Is(err, mailer.ErrPermanent))
}
