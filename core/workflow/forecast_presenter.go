package workflow

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vanquote/core/currency"
	"vanquote/core/forecast"
	"vanquote/internal/errors"
)

// ForecastCallbacks are invoked by the forecast presenter on terminal
// events
type ForecastCallbacks struct {
	// OnAccept fires once a submission started from this forecast
	// succeeds. Both presenters are already closed when it fires.
	OnAccept func(choice AcceptedChoice)

	// OnClose fires when the presenter is closed without acceptance
	OnClose func()
}

// DayView is one calendar day prepared for display against the active
// staff tier
type DayView struct {
	// Date is the calendar date
	Date string

	// Weekend marks Saturday and Sunday dates
	Weekend bool

	// Holiday marks public holidays
	Holiday bool

	// HolidayName names the holiday, or ""
	HolidayName string

	// Price is the active tier's price formatted as currency, or ""
	// when the tier cannot service the day
	Price string

	// RawPrice is the active tier's price, nil when unavailable
	RawPrice *decimal.Decimal

	// Best marks the active tier as the day's cheapest available tier
	Best bool

	// Selectable reports whether clicking the day opens the detail
	// presenter. Days where the active tier has no price are inert.
	Selectable bool
}

// ForecastPresenter renders the two-month price calendar, computes the
// cheapest available tier per day and hands a selected day off to a
// detail presenter. It owns the forecast for the lifetime of the modal.
type ForecastPresenter struct {
	mu        sync.Mutex
	cfg       Config
	svc       Service
	logger    *zap.Logger
	callbacks ForecastCallbacks

	f         *forecast.PriceForecast
	requestID string

	ctx    context.Context
	cancel context.CancelFunc

	open   bool
	tier   forecast.TierID
	detail *DetailPresenter
}

// NewForecastPresenter creates a presenter for one quote session. The
// default tier is the first tier option derived from the forecast; a
// degenerate forecast yields no options and no selectable days.
func NewForecastPresenter(f *forecast.PriceForecast, requestID string, svc Service, cfg Config, logger *zap.Logger, callbacks ForecastCallbacks) *ForecastPresenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &ForecastPresenter{
		cfg:       cfg.withDefaults(),
		svc:       svc,
		logger:    logger.With(zap.String("request_id", requestID)),
		callbacks: callbacks,
		f:         f,
		requestID: requestID,
	}
	if options := f.TierOptions(); len(options) > 0 {
		p.tier = options[0]
	}
	return p
}

// Open makes the calendar visible
func (p *ForecastPresenter) Open() {
	p.mu.Lock()
	if !p.open {
		p.open = true
		p.ctx, p.cancel = context.WithCancel(context.Background())
	}
	p.mu.Unlock()
	p.logger.Debug("forecast presenter opened")
}

// Close discards all ephemeral selection state, including any open detail
// presenter
func (p *ForecastPresenter) Close() {
	p.mu.Lock()
	if !p.open {
		p.mu.Unlock()
		return
	}
	p.open = false
	detail := p.detail
	p.detail = nil
	cancel := p.cancel
	onClose := p.callbacks.OnClose
	p.mu.Unlock()

	if detail != nil {
		detail.Close()
	}
	if cancel != nil {
		cancel()
	}
	p.logger.Debug("forecast presenter closed")
	if onClose != nil {
		onClose()
	}
}

// TierOptions returns the selectable staff tiers
func (p *ForecastPresenter) TierOptions() []forecast.TierID {
	return p.f.TierOptions()
}

// ActiveTier returns the currently chosen staff tier
func (p *ForecastPresenter) ActiveTier() forecast.TierID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tier
}

// Detail returns the open detail presenter, or nil
func (p *ForecastPresenter) Detail() *DetailPresenter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.detail
}

// SelectTier switches the active staff tier. The calendar recomputes
// which day/price combination is displayed; an already-open detail
// presenter for a previously selected day is left alone.
func (p *ForecastPresenter) SelectTier(id forecast.TierID) error {
	found := false
	for _, opt := range p.f.TierOptions() {
		if opt == id {
			found = true
			break
		}
	}
	if !found {
		return errors.NotFound("staff tier", id.String())
	}

	p.mu.Lock()
	p.tier = id
	p.mu.Unlock()
	return nil
}

// Months returns the forecast months in chronological order
func (p *ForecastPresenter) Months() []string {
	return p.f.Months()
}

// CalendarDays returns a month's days prepared for display against the
// active tier
func (p *ForecastPresenter) CalendarDays(month string) []DayView {
	p.mu.Lock()
	tier := p.tier
	p.mu.Unlock()

	days := p.f.Days(month)
	out := make([]DayView, 0, len(days))
	for _, day := range days {
		view := DayView{
			Date:    day.Date,
			Weekend: day.IsWeekend,
			Holiday: day.IsHoliday,
		}
		if day.HolidayName != nil {
			view.HolidayName = *day.HolidayName
		}
		if sp, ok := day.Tier(tier); ok && sp.Available() {
			view.RawPrice = sp.Price
			view.Price = currency.Format(*sp.Price)
			view.Selectable = true
			view.Best = forecast.IsBest(day, tier)
		}
		out = append(out, view)
	}
	return out
}

// SelectDay opens a detail presenter scoped to the given date. Selection
// is only permitted when the active tier has an available price for that
// day; otherwise the day is inert and the call is a no-op apart from the
// returned error. The selection is also recorded with the backend as
// best-effort telemetry that never blocks the flow.
func (p *ForecastPresenter) SelectDay(date string) (*DetailPresenter, error) {
	p.mu.Lock()
	if !p.open {
		p.mu.Unlock()
		return nil, errors.State("forecast presenter is not open")
	}
	tier := p.tier
	day, ok := p.f.FindDay(date)
	if !ok {
		p.mu.Unlock()
		return nil, errors.NotFound("forecast day", date)
	}
	sp, ok := day.Tier(tier)
	if !ok || !sp.Available() {
		p.mu.Unlock()
		return nil, errors.Unavailable(tier.String(), date)
	}

	detail := p.newDetailLocked(day)
	previous := p.detail
	p.detail = detail
	ctx := p.ctx
	p.mu.Unlock()

	if previous != nil {
		previous.Close()
	}
	detail.Open()

	go p.recordSelection(ctx, SelectionEvent{Date: date, TierID: tier, Price: *sp.Price})

	return detail, nil
}

func (p *ForecastPresenter) newDetailLocked(day forecast.DayPrice) *DetailPresenter {
	var detail *DetailPresenter
	detail = NewDetailPresenter(day, p.requestID, p.svc, p.cfg, p.logger, DetailCallbacks{
		OnAccept: func(choice AcceptedChoice) { p.detailAccepted(detail, choice) },
		OnClose:  func() { p.detailClosed(detail) },
	})
	return detail
}

// detailAccepted closes both presenters and reports the accepted pair to
// the caller
func (p *ForecastPresenter) detailAccepted(detail *DetailPresenter, choice AcceptedChoice) {
	p.mu.Lock()
	if p.detail == detail {
		p.detail = nil
	}
	wasOpen := p.open
	p.open = false
	cancel := p.cancel
	onAccept := p.callbacks.OnAccept
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if wasOpen && onAccept != nil {
		onAccept(choice)
	}
}

func (p *ForecastPresenter) detailClosed(detail *DetailPresenter) {
	p.mu.Lock()
	if p.detail == detail {
		p.detail = nil
	}
	p.mu.Unlock()
}

// recordSelection reports the selection to the backend. Failure is logged
// and never surfaced, retried, or allowed to block opening the detail
// presenter.
func (p *ForecastPresenter) recordSelection(ctx context.Context, sel SelectionEvent) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.TelemetryTimeout)
	defer cancel()

	if err := p.svc.RecordSelection(ctx, sel); err != nil {
		p.logger.Warn("failed to record price selection",
			zap.String("date", sel.Date),
			zap.String("tier", sel.TierID.String()),
			zap.Error(err))
		return
	}
	p.logger.Debug("price selection recorded", zap.String("date", sel.Date))
}
