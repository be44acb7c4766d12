package forecast

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func price(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

const sampleForecast = `{
  "pricing_configuration": "cfg-2025-standard",
  "base_parameters": {
    "distance": 42.5,
    "weight": 350,
    "service_level": "standard",
    "property_type": "flat",
    "vehicle_type": "luton"
  },
  "monthly_calendar": {
    "2025-07": [
      {
        "date": "2025-07-01",
        "day": 1,
        "is_weekend": false,
        "is_holiday": false,
        "holiday_name": null,
        "weather_type": "sunny",
        "status": "available",
        "staff_prices": [
          {"price": 120.50, "components": {"base_price": 100, "staff_cost": 20.50}, "multipliers": {"service_multiplier": 1.0}},
          {"price": null, "components": {}, "multipliers": {}}
        ]
      }
    ],
    "2025-06": [
      {
        "date": "2025-06-14",
        "day": 14,
        "is_weekend": true,
        "is_holiday": true,
        "holiday_name": "Summer Fair",
        "weather_type": "rainy",
        "status": "available",
        "staff_prices": [
          {"staff_count": 1, "price": 99.99, "components": {"base_price": 80, "staff_cost": 19.99}, "multipliers": {"time_multiplier": 1.2}},
          {"staff_count": 2, "price": 150.00, "components": {"base_price": 80, "staff_cost": 70}, "multipliers": {"time_multiplier": 1.2}}
        ]
      }
    ]
  }
}`

func TestParseNormalizesTierIdentity(t *testing.T) {
	f, err := Parse([]byte(sampleForecast))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Months come back in chronological order regardless of map order.
	months := f.Months()
	if len(months) != 2 || months[0] != "2025-06" || months[1] != "2025-07" {
		t.Fatalf("expected chronological months, got %v", months)
	}

	// Staff counts missing from the wire form are assigned positionally.
	day, ok := f.FindDay("2025-07-01")
	if !ok {
		t.Fatal("expected to find 2025-07-01")
	}
	if got := day.StaffPrices[0].TierID(); got != "staff_1" {
		t.Errorf("expected staff_1, got %s", got)
	}
	if got := day.StaffPrices[1].TierID(); got != "staff_2" {
		t.Errorf("expected staff_2, got %s", got)
	}

	// A null price means the tier cannot service the day.
	if day.StaffPrices[1].Available() {
		t.Error("expected staff_2 on 2025-07-01 to be unavailable")
	}
	if !day.StaffPrices[0].Available() {
		t.Error("expected staff_1 on 2025-07-01 to be available")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("{not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestTierOptions(t *testing.T) {
	f, err := Parse([]byte(sampleForecast))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	options := f.TierOptions()
	if len(options) != 2 || options[0] != "staff_1" || options[1] != "staff_2" {
		t.Fatalf("expected [staff_1 staff_2], got %v", options)
	}
}

func TestTierOptionsDegenerate(t *testing.T) {
	tests := []struct {
		name string
		f    *PriceForecast
	}{
		{
			name: "empty calendar",
			f:    &PriceForecast{MonthlyCalendar: map[string][]DayPrice{}},
		},
		{
			name: "nil calendar",
			f:    &PriceForecast{},
		},
		{
			name: "month with no days",
			f:    &PriceForecast{MonthlyCalendar: map[string][]DayPrice{"2025-06": {}}},
		},
		{
			name: "first day with no staff prices",
			f: &PriceForecast{MonthlyCalendar: map[string][]DayPrice{
				"2025-06": {{Date: "2025-06-01"}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if options := tt.f.TierOptions(); len(options) != 0 {
				t.Errorf("expected no tier options, got %v", options)
			}
		})
	}
}

func TestTierLookupByIdentifierNotPosition(t *testing.T) {
	// Tiers arrive out of order; lookup must go by staff count.
	day := DayPrice{
		Date: "2025-06-14",
		StaffPrices: []StaffPrice{
			{StaffCount: 3, Price: price("200")},
			{StaffCount: 1, Price: price("90")},
		},
	}

	sp, ok := day.Tier("staff_1")
	if !ok {
		t.Fatal("expected staff_1 to resolve")
	}
	if !sp.Price.Equal(dec("90")) {
		t.Errorf("expected 90, got %s", sp.Price)
	}

	if _, ok := day.Tier("staff_2"); ok {
		t.Error("expected staff_2 to be absent")
	}
}

func TestTierIDStaffCount(t *testing.T) {
	tests := []struct {
		id   TierID
		want int
	}{
		{"staff_1", 1},
		{"staff_4", 4},
		{"staff_", 0},
		{"crew_2", 0},
		{"staff_-1", 0},
	}

	for _, tt := range tests {
		if got := tt.id.StaffCount(); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.id, tt.want, got)
		}
	}
}

func TestReconciles(t *testing.T) {
	tests := []struct {
		name string
		sp   StaffPrice
		want bool
	}{
		{
			name: "exact match",
			sp: StaffPrice{
				StaffCount: 1,
				Price:      price("120.50"),
				Components: map[string]decimal.Decimal{"base_price": dec("100"), "staff_cost": dec("20.50")},
			},
			want: true,
		},
		{
			name: "within rounding tolerance",
			sp: StaffPrice{
				StaffCount: 1,
				Price:      price("120.51"),
				Components: map[string]decimal.Decimal{"base_price": dec("100"), "staff_cost": dec("20.50")},
			},
			want: true,
		},
		{
			name: "outside tolerance",
			sp: StaffPrice{
				StaffCount: 1,
				Price:      price("125.00"),
				Components: map[string]decimal.Decimal{"base_price": dec("100"), "staff_cost": dec("20.50")},
			},
			want: false,
		},
		{
			name: "unavailable tier has nothing to reconcile",
			sp:   StaffPrice{StaffCount: 2},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sp.Reconciles(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestWeekdayDerived(t *testing.T) {
	day := DayPrice{Date: "2025-06-14"}
	wd, err := day.Weekday()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wd != time.Saturday {
		t.Errorf("expected Saturday, got %s", wd)
	}

	bad := DayPrice{Date: "14/06/2025"}
	if _, err := bad.Weekday(); err == nil {
		t.Error("expected error for malformed date")
	}
}
