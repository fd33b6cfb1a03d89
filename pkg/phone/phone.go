package phone

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// ErrInvalidPhone возвращается, когда номер не удаётся привести к E.164
var ErrInvalidPhone = errors.New("phone: invalid phone number")

// Normalize приводит номер к формату E.164 (+79991234567)
// defaultRegion используется для номеров без кода страны (например, "RU")
func Normalize(raw, defaultRegion string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPhone)
	}

	num, err := phonenumbers.Parse(raw, defaultRegion)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhone, err)
	}

	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPhone, raw)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
