package twilio

import "errors"

var (
	// ErrRender возвращается, когда событие не удалось превратить в сообщение
	ErrRender = errors.New("twilio client: failed to render event")

	// ErrInvalidPhone возвращается, если телефон клиента не в формате E.164
	ErrInvalidPhone = errors.New("twilio client: phone is not in E.164 format")

	// ErrSendFailed возвращается, когда Twilio не принял сообщение
	ErrSendFailed = errors.New("twilio client: failed to send sms")
)
