package sendgrid

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	sendgridSDK "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/integrations/notification"
)

const (
	sinkName = "sendgrid"

	// headerEventID ключ идемпотентности события в заголовках письма
	headerEventID = "X-Booking-Event-ID"
)

// Sender часть *sendgrid.Client, которой пользуется клиент
type Sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Logger интерфейс логгера
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client отправляет письма клиенту студии, если он указал email
type Client struct {
	sender    Sender
	fromEmail string
	fromName  string
	log       Logger
}

// NewClient создает клиента SendGrid. Без API ключа отправка отключена
func NewClient(apiKey, fromEmail, fromName string, log Logger) *Client {
	if apiKey == "" || fromEmail == "" {
		log.Warn("SendGrid API key or sender is not configured, client email disabled")
		return &Client{log: log}
	}

	return &Client{
		sender:    sendgridSDK.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
		log:       log,
	}
}

// NewClientWithSender создает клиента поверх готового отправителя
func NewClientWithSender(sender Sender, fromEmail, fromName string, log Logger) *Client {
	return &Client{sender: sender, fromEmail: fromEmail, fromName: fromName, log: log}
}

// Name имя канала доставки
func (c *Client) Name() string {
	return sinkName
}

// Handle отправляет письмо, если событие адресовано клиенту и у него есть email
func (c *Client) Handle(ctx context.Context, event *domain.Event) error {
	if c.sender == nil {
		c.log.Debug("SendGrid: event %s skipped (email disabled)", event.EventID)
		return nil
	}

	msg, err := notification.Render(event)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	if !msg.NotifyClient || msg.ClientEmail == nil || *msg.ClientEmail == "" {
		return nil
	}

	from := mail.NewEmail(c.fromName, c.fromEmail)
	to := mail.NewEmail(msg.ClientName, *msg.ClientEmail)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.ClientText, "")
	message.Headers = map[string]string{headerEventID: msg.EventID.String()}

	response, err := c.sender.SendWithContext(ctx, message)
	if err != nil {
		c.log.Error("SendGrid: failed to send email for event %s (booking %s): %v", event.EventID, msg.Reference, err)
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		c.log.Error("SendGrid: event %s rejected, status=%d, body=%s", event.EventID, response.StatusCode, response.Body)
		return fmt.Errorf("%w: status %d: %s", ErrUnexpectedStatus, response.StatusCode, response.Body)
	}

	c.log.Info("SendGrid: email sent for event %s (booking %s), status=%d", event.EventID, msg.Reference, response.StatusCode)
	return nil
}
