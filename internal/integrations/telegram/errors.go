package telegram

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("telegram client: internal error")

	// ErrRender возвращается, когда событие не удалось превратить в сообщение
	ErrRender = errors.New("telegram client: failed to render event")

	// ErrSendFailed возвращается, когда Telegram API не принял сообщение
	ErrSendFailed = errors.New("telegram client: failed to send message")
)
