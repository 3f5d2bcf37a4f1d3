package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	mailtpl "github.com/oksasatya/jobify/pkg/mailer/templates"
)

// ErrPermanent marks a message that will never succeed and must not be requeued.
var ErrPermanent = errors.New("permanent email failure")

// Processor turns queue messages into sent emails.
type Processor struct {
	Sender Sender
	Logger *logrus.Logger
}

func NewProcessor(sender Sender, logger *logrus.Logger) *Processor {
	return &Processor{Sender: sender, Logger: logger}
}

// Handle decodes, renders and sends one message body. Errors wrapping
// ErrPermanent should be dropped; any other error is worth a retry.
func (p *Processor) Handle(ctx context.Context, body []byte) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrPermanent, err)
	}
	if job.To == "" {
		return fmt.Errorf("%w: missing recipient", ErrPermanent)
	}
	job.Normalize()

	msg, err := p.render(job)
	if err != nil {
		return err
	}
	if err := p.Sender.Send(ctx, job.To, msg.Subject, msg.Text, msg.HTML); err != nil {
		return fmt.Errorf("send to %s: %w", job.To, err)
	}
	p.Logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Info("email sent")
	return nil
}

func (p *Processor) render(job EmailJob) (mailtpl.Message, error) {
	if job.Template == "" {
		if job.Subject == "" || (job.Text == "" && job.HTML == "") {
			return mailtpl.Message{}, fmt.Errorf("%w: subject with text or html is required", ErrPermanent)
		}
		return mailtpl.Message{Subject: job.Subject, Text: job.Text, HTML: job.HTML}, nil
	}
	if !mailtpl.Known(job.Template) {
		return mailtpl.Message{}, fmt.Errorf("%w: unknown template %q", ErrPermanent, job.Template)
	}
	msg, err := mailtpl.Render(job.Template, job.Data)
	if err != nil {
		return mailtpl.Message{}, fmt.Errorf("%w: render %s: %v", ErrPermanent, job.Template, err)
	}
	return msg, nil
}
