package sendgrid

import "errors"

var (
	// ErrRender возвращается, когда событие не удалось превратить в сообщение
	ErrRender = errors.New("sendgrid client: failed to render event")

	// ErrSendFailed возвращается при сетевой ошибке отправки
	ErrSendFailed = errors.New("sendgrid client: failed to send email")

	// ErrUnexpectedStatus возвращается, когда SendGrid ответил не 2xx
	ErrUnexpectedStatus = errors.New("sendgrid client: unexpected response status")
)
