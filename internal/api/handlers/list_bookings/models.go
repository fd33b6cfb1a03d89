package list_bookings

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/service/bookings/models"
)

// ParseQuery собирает фильтр из query параметров from, to, state, phone, limit, offset
func ParseQuery(q url.Values) (*models.ListBookingsRequest, error) {
	req := &models.ListBookingsRequest{}

	if raw := q.Get("from"); raw != "" {
		from, err := domain.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		req.StartDate = &from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := domain.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
		req.EndDate = &to
	}
	if raw := strings.TrimSpace(q.Get("state")); raw != "" {
		state := strings.ToUpper(raw)
		req.State = &state
	}
	if raw := strings.TrimSpace(q.Get("phone")); raw != "" {
		req.Phone = &raw
	}

	var err error
	if req.Limit, err = parseInt(q, "limit"); err != nil {
		return nil, err
	}
	if req.Offset, err = parseInt(q, "offset"); err != nil {
		return nil, err
	}

	return req, nil
}

func parseInt(q url.Values, key string) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s: invalid value %q", key, raw)
	}
	return v, nil
}
