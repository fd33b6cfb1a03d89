package twilio

import (
	"context"
	"fmt"
	"strings"

	twilioSDK "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/integrations/notification"
)

const sinkName = "twilio"

// MessageCreator часть Twilio REST API, которой пользуется клиент (*openapi.ApiService)
type MessageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// Logger интерфейс логгера
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client отправляет клиенту студии SMS о его бронировании
type Client struct {
	api        MessageCreator
	fromNumber string
	log        Logger
}

// NewClient создает клиента Twilio. Без учётных данных отправка отключена
func NewClient(accountSID, authToken, fromNumber string, log Logger) *Client {
	if accountSID == "" || authToken == "" || fromNumber == "" {
		log.Warn("Twilio credentials are not configured, client SMS disabled")
		return &Client{log: log}
	}

	rest := twilioSDK.NewRestClientWithParams(twilioSDK.ClientParams{
		Username:   accountSID,
		Password:   authToken,
		AccountSid: accountSID,
	})

	return &Client{api: rest.Api, fromNumber: fromNumber, log: log}
}

// NewClientWithAPI создает клиента поверх готового API
func NewClientWithAPI(api MessageCreator, fromNumber string, log Logger) *Client {
	return &Client{api: api, fromNumber: fromNumber, log: log}
}

// Name имя канала доставки
func (c *Client) Name() string {
	return sinkName
}

// Handle отправляет SMS, если событие адресовано клиенту
func (c *Client) Handle(ctx context.Context, event *domain.Event) error {
	if c.api == nil {
		c.log.Debug("Twilio: event %s skipped (sms disabled)", event.EventID)
		return nil
	}

	msg, err := notification.Render(event)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	if !msg.NotifyClient {
		return nil
	}

	if !strings.HasPrefix(msg.ClientPhone, "+") {
		return fmt.Errorf("%w: %q", ErrInvalidPhone, msg.ClientPhone)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(msg.ClientPhone)
	params.SetFrom(c.fromNumber)
	params.SetBody(msg.ClientText)

	resp, err := c.api.CreateMessage(params)
	if err != nil {
		c.log.Error("Twilio: failed to send sms for event %s (booking %s): %v", event.EventID, msg.Reference, err)
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	c.log.Info("Twilio: sms sent for event %s (booking %s), sid=%s", event.EventID, msg.Reference, sid)
	return nil
}
