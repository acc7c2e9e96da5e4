package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// ErrNoRecipient indicates the message has no destination address.
var ErrNoRecipient = errors.New("mail message has no recipient")

// Message is a single outgoing e-mail.
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	PlainText string
	HTML      string
}

// Sender delivers e-mail messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendGrid delivers mail through the SendGrid v3 API.
type SendGrid struct {
	apiKey  string
	from    *sgmail.Email
	subject string
	logger  zerolog.Logger
}

// NewSendGrid constructs a SendGrid sender. Subjects are prefixed with the app name.
func NewSendGrid(apiKey, fromAddress, fromName, appName string, logger zerolog.Logger) (*SendGrid, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("sendgrid api key must be provided")
	}
	if strings.TrimSpace(fromAddress) == "" {
		return nil, fmt.Errorf("sender address must be provided")
	}

	prefix := ""
	if appName != "" {
		prefix = "[" + appName + "] "
	}

	return &SendGrid{
		apiKey:  apiKey,
		from:    sgmail.NewEmail(fromName, fromAddress),
		subject: prefix,
		logger:  logger.With().Str("component", "sendgrid").Logger(),
	}, nil
}

// Send posts the message to SendGrid and treats any 4xx/5xx response as failure.
func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.ToAddress) == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	req := sendgrid.GetRequest(s.apiKey, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("send mail: sendgrid responded %d: %s", res.StatusCode, res.Body)
	}

	s.logger.Debug().Str("to", msg.ToAddress).Int("status", res.StatusCode).Msg("mail accepted")
	return nil
}

func (s *SendGrid) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = s.subject + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToAddress))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)

	m.AddContent(sgmail.NewContent("text/plain", msg.PlainText))
	if msg.HTML != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	return m
}
