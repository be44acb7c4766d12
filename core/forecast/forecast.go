// Package forecast defines the price forecast data model for a quote session.
// A forecast is produced by the backend once per booking request and is
// read-only for the lifetime of the workflow that displays it.
package forecast

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"vanquote/internal/errors"
)

// DateLayout is the calendar date format used on the wire
const DateLayout = "2006-01-02"

// reconcileTolerance is the allowed rounding drift between a price and the
// sum of its components
var reconcileTolerance = decimal.NewFromFloat(0.01)

// TierID identifies a staff-count tier by a stable label ("staff_1",
// "staff_2", ...) derived from the staff count, never from array position.
type TierID string

// TierForCount returns the tier identifier for a staff count
func TierForCount(count int) TierID {
	return TierID(fmt.Sprintf("staff_%d", count))
}

// StaffCount returns the staff count encoded in the tier identifier,
// or 0 if the identifier is malformed
func (t TierID) StaffCount() int {
	rest, ok := strings.CutPrefix(string(t), "staff_")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// String returns the string representation
func (t TierID) String() string {
	return string(t)
}

// StaffPrice is the price for one staff-count tier on one day
type StaffPrice struct {
	// StaffCount is the number of staff in this tier
	StaffCount int `json:"staff_count"`

	// Price is the total price for the tier. A nil price means the tier
	// cannot service this day (the source sends null for it).
	Price *decimal.Decimal `json:"price"`

	// Components is the additive breakdown of the price (base, distance,
	// weight, property, staff, vehicle, service, time, weather, insurance,
	// fuel surcharge, carbon offset)
	Components map[string]decimal.Decimal `json:"components"`

	// Multipliers are informational factors already baked into the price
	Multipliers map[string]decimal.Decimal `json:"multipliers"`
}

// TierID returns the stable tier identifier for this price
func (sp StaffPrice) TierID() TierID {
	return TierForCount(sp.StaffCount)
}

// Available reports whether the tier can service the day
func (sp StaffPrice) Available() bool {
	return sp.Price != nil
}

// ComponentTotal returns the sum of all price components
func (sp StaffPrice) ComponentTotal() decimal.Decimal {
	total := decimal.Zero
	for _, v := range sp.Components {
		total = total.Add(v)
	}
	return total
}

// Reconciles reports whether the component sum matches the price within
// rounding tolerance. An unavailable tier has nothing to reconcile.
func (sp StaffPrice) Reconciles() bool {
	if sp.Price == nil {
		return true
	}
	return sp.Price.Sub(sp.ComponentTotal()).Abs().LessThanOrEqual(reconcileTolerance)
}

// DayPrice is one candidate moving date
type DayPrice struct {
	// Date is the calendar date, unique within the forecast
	Date string `json:"date"`

	// Day is the day of the month
	Day int `json:"day"`

	// IsWeekend marks Saturday and Sunday dates
	IsWeekend bool `json:"is_weekend"`

	// IsHoliday marks public holidays
	IsHoliday bool `json:"is_holiday"`

	// HolidayName names the holiday, if any
	HolidayName *string `json:"holiday_name"`

	// WeatherType is the forecast weather for the day
	WeatherType string `json:"weather_type"`

	// StaffPrices holds one entry per staff tier, ascending by staff count
	StaffPrices []StaffPrice `json:"staff_prices"`

	// Status is a read-only lifecycle hint (available, booked, blocked)
	Status string `json:"status"`
}

// Weekday derives the day of week from the date
func (d DayPrice) Weekday() (time.Weekday, error) {
	t, err := time.Parse(DateLayout, d.Date)
	if err != nil {
		return 0, errors.Parsing("invalid day date", err).WithContext("date", d.Date)
	}
	return t.Weekday(), nil
}

// Tier returns the staff price with the given tier identifier
func (d DayPrice) Tier(id TierID) (StaffPrice, bool) {
	for _, sp := range d.StaffPrices {
		if sp.TierID() == id {
			return sp, true
		}
	}
	return StaffPrice{}, false
}

// Tiers returns the day's staff prices in iteration order
// (ascending staff count)
func (d DayPrice) Tiers() []StaffPrice {
	out := make([]StaffPrice, len(d.StaffPrices))
	copy(out, d.StaffPrices)
	return out
}

// BaseParameters are the inputs used to generate the forecast prices.
// They are immutable once the forecast is produced.
type BaseParameters struct {
	// Distance is the move distance
	Distance decimal.Decimal `json:"distance"`

	// Weight is the load weight
	Weight decimal.Decimal `json:"weight"`

	// ServiceLevel is the requested service level
	ServiceLevel string `json:"service_level"`

	// PropertyType is the property type at the origin
	PropertyType string `json:"property_type"`

	// VehicleType is the vehicle class used for pricing
	VehicleType string `json:"vehicle_type"`
}

// PriceForecast is the root object for a quote session
type PriceForecast struct {
	// PricingConfiguration identifies which pricing rules produced
	// this forecast
	PricingConfiguration string `json:"pricing_configuration"`

	// BaseParameters are the pricing inputs
	BaseParameters BaseParameters `json:"base_parameters"`

	// MonthlyCalendar maps a month key ("2025-06") to the days of that
	// month in calendar order, covering a fixed forward window
	MonthlyCalendar map[string][]DayPrice `json:"monthly_calendar"`
}

// Months returns the month keys in chronological order.
// Month keys sort lexically in date order.
func (f *PriceForecast) Months() []string {
	months := make([]string, 0, len(f.MonthlyCalendar))
	for m := range f.MonthlyCalendar {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}

// Days returns the days of a month in calendar order
func (f *PriceForecast) Days(month string) []DayPrice {
	return f.MonthlyCalendar[month]
}

// FindDay returns the day with the given date, searching all months
func (f *PriceForecast) FindDay(date string) (DayPrice, bool) {
	for _, month := range f.Months() {
		for _, day := range f.MonthlyCalendar[month] {
			if day.Date == date {
				return day, true
			}
		}
	}
	return DayPrice{}, false
}

// TierOptions derives the selectable staff tiers from the shape of the
// first day of the first month. An empty forecast, or a first day with no
// staff prices, yields no options; that is a degenerate-but-valid state in
// which no day can produce a selectable price.
func (f *PriceForecast) TierOptions() []TierID {
	months := f.Months()
	if len(months) == 0 {
		return nil
	}
	days := f.MonthlyCalendar[months[0]]
	if len(days) == 0 {
		return nil
	}
	tiers := days[0].Tiers()
	if len(tiers) == 0 {
		return nil
	}
	out := make([]TierID, 0, len(tiers))
	for _, sp := range tiers {
		out = append(out, sp.TierID())
	}
	return out
}

// Parse decodes a forecast from its wire form and normalizes tier
// identities. Staff counts missing from the wire payload are assigned
// positionally (position 0 is one staff member), then each day's tiers are
// ordered by ascending staff count so that iteration order is stable even
// if the backend reorders the array.
func Parse(data []byte) (*PriceForecast, error) {
	var f PriceForecast
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Parsing("invalid price forecast payload", err)
	}
	f.normalize()
	return &f, nil
}

func (f *PriceForecast) normalize() {
	for month, days := range f.MonthlyCalendar {
		for di := range days {
			prices := days[di].StaffPrices
			for pi := range prices {
				if prices[pi].StaffCount == 0 {
					prices[pi].StaffCount = pi + 1
				}
			}
			sort.SliceStable(prices, func(a, b int) bool {
				return prices[a].StaffCount < prices[b].StaffCount
			})
		}
		f.MonthlyCalendar[month] = days
	}
}
