package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/integrations/notification"
)

const sinkName = "telegram"

// Sender часть *tgbotapi.BotAPI, которой пользуется клиент
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Logger интерфейс логгера
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client уведомляет администраторов студии в чат Telegram о каждом событии бронирования
type Client struct {
	bot    Sender
	chatID int64
	log    Logger
}

// NewClient создает клиента. Пустой токен отключает отправку (сообщения только логируются)
func NewClient(token string, chatID int64, log Logger) (*Client, error) {
	if token == "" {
		log.Warn("Telegram bot token is empty, admin notifications disabled")
		return &Client{chatID: chatID, log: log}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("%w: create bot: %v", ErrInternal, err)
	}

	return &Client{bot: bot, chatID: chatID, log: log}, nil
}

// NewClientWithSender создает клиента поверх готового отправителя
func NewClientWithSender(bot Sender, chatID int64, log Logger) *Client {
	return &Client{bot: bot, chatID: chatID, log: log}
}

// Name имя канала доставки
func (c *Client) Name() string {
	return sinkName
}

// Handle отправляет событие в чат администраторов
func (c *Client) Handle(ctx context.Context, event *domain.Event) error {
	if c.bot == nil || c.chatID == 0 {
		c.log.Debug("Telegram: event %s skipped (bot disabled)", event.EventID)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	msg, err := notification.Render(event)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}

	out := tgbotapi.NewMessage(c.chatID, msg.AdminText)
	out.ParseMode = tgbotapi.ModeMarkdown

	if _, err := c.bot.Send(out); err != nil {
		c.log.Error("Telegram: failed to send event %s (booking %s): %v", event.EventID, msg.Reference, err)
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	c.log.Info("Telegram: event %s sent (booking %s)", event.EventID, msg.Reference)
	return nil
}
