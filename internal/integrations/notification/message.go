package notification

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// ErrUnsupportedEvent возвращается для событий, которые не умеем отображать
var ErrUnsupportedEvent = errors.New("notification: unsupported event kind")

// Message текст уведомления, общий для всех каналов доставки
type Message struct {
	EventID   uuid.UUID
	BookingID int64
	Reference string

	Subject    string
	ClientText string // plain text для SMS и email
	AdminText  string // Markdown для Telegram

	ClientName  string
	ClientPhone string
	ClientEmail *string

	// NotifyClient false - событие интересно только администраторам
	NotifyClient bool
}

// clientStates состояния, о переходе в которые сообщаем клиенту
var clientStates = map[domain.BookingState]string{
	domain.StateConfirmed:   "подтверждено",
	domain.StateCancelled:   "отменено",
	domain.StateRescheduled: "перенесено",
}

// Render строит сообщение по доменному событию
func Render(event *domain.Event) (*Message, error) {
	switch event.Kind {
	case domain.EventBookingCreated:
		p, err := event.DecodeCreated()
		if err != nil {
			return nil, err
		}
		return renderCreated(event, p), nil

	case domain.EventBookingStateChanged:
		p, err := event.DecodeStateChanged()
		if err != nil {
			return nil, err
		}
		return renderStateChanged(event, p), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEvent, event.Kind)
	}
}

func renderCreated(event *domain.Event, p *domain.BookingCreated) *Message {
	hours := strings.Join(p.Hours, ", ")

	return &Message{
		EventID:   event.EventID,
		BookingID: p.BookingID,
		Reference: p.Reference,
		Subject:   fmt.Sprintf("Бронирование %s принято", p.Reference),
		ClientText: fmt.Sprintf(
			"%s, ваше бронирование %s на %s (%s) принято. Стоимость: %.2f. Мы свяжемся с вами для подтверждения.",
			p.ClientName, p.Reference, p.Date, hours, p.TotalPrice,
		),
		AdminText: fmt.Sprintf(
			"*Новое бронирование %s*\n\nДата: %s\nЧасы: %s\nГостей: %d\nСумма: %.2f\nКлиент: %s, %s\nИсточник: %s",
			p.Reference, p.Date, hours, p.PeopleCount, p.TotalPrice, p.ClientName, p.ClientPhone, p.Source,
		),
		ClientName:   p.ClientName,
		ClientPhone:  p.ClientPhone,
		ClientEmail:  p.ClientEmail,
		NotifyClient: true,
	}
}

func renderStateChanged(event *domain.Event, p *domain.BookingStateChanged) *Message {
	verb, notifyClient := clientStates[domain.BookingState(p.To)]

	msg := &Message{
		EventID:   event.EventID,
		BookingID: p.BookingID,
		Reference: p.Reference,
		Subject:   fmt.Sprintf("Бронирование %s: %s", p.Reference, p.To),
		AdminText: fmt.Sprintf(
			"*Бронирование %s*\n\n%s → %s\nДата: %s\nКем: %s",
			p.Reference, p.From, p.To, p.Date, p.Actor,
		),
		ClientName:   p.ClientName,
		ClientPhone:  p.ClientPhone,
		ClientEmail:  p.ClientEmail,
		NotifyClient: notifyClient,
	}
	if p.Notes != nil && *p.Notes != "" {
		msg.AdminText += fmt.Sprintf("\nКомментарий: %s", *p.Notes)
	}

	if notifyClient {
		msg.ClientText = fmt.Sprintf("%s, ваше бронирование %s на %s %s.", p.ClientName, p.Reference, p.Date, verb)
	}
	return msg
}
