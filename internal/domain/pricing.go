package domain

import "math"

// PricingPolicy pure pricing inputs
type PricingPolicy struct {
	HourlyRate           float64 // цена часа аренды
	FreeHeadcount        int     // количество человек, входящих в базовую цену
	ExtraPersonHourlyFee float64 // доплата за каждого сверх порога, за час
}

// Quote result of the pricing function
type Quote struct {
	BasePrice  float64
	ExtraFees  float64
	TotalPrice float64
}

// Calculate returns the price of durationHours for peopleCount people
func (p PricingPolicy) Calculate(durationHours float64, peopleCount int) Quote {
	base := roundMoney(durationHours * p.HourlyRate)

	extraPeople := peopleCount - p.FreeHeadcount
	if extraPeople < 0 {
		extraPeople = 0
	}
	extra := roundMoney(float64(extraPeople) * p.ExtraPersonHourlyFee * durationHours)

	return Quote{
		BasePrice:  base,
		ExtraFees:  extra,
		TotalPrice: roundMoney(base + extra),
	}
}

// Apply copies the quote onto the booking
func (q Quote) Apply(b *Booking) {
	b.BasePrice = q.BasePrice
	b.ExtraFees = q.ExtraFees
	b.TotalPrice = q.TotalPrice
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
