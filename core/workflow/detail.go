package workflow

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"vanquote/core/currency"
	"vanquote/core/forecast"
	"vanquote/internal/errors"
)

// RetryMessage is the single generic, non-technical message surfaced when
// a quote submission fails
const RetryMessage = "We couldn't confirm your booking. Please try again."

// DetailCallbacks are invoked by the detail presenter on terminal events
type DetailCallbacks struct {
	// OnAccept fires after a successful submission, with the accepted
	// tier and price. The presenter is already closed when it fires.
	OnAccept func(choice AcceptedChoice)

	// OnClose fires when the presenter is closed before acceptance
	OnClose func()
}

// BreakdownRow is one price component prepared for display
type BreakdownRow struct {
	// Name is the component key as present in the breakdown map
	Name string

	// Amount is the component value formatted as currency
	Amount string
}

// MultiplierRow is one informational multiplier prepared for display
type MultiplierRow struct {
	// Name is the multiplier key
	Name string

	// Factor is the formatted factor ("x1.2")
	Factor string
}

// DetailPresenter shows the full price breakdown for one day across staff
// tiers, accepts a tier choice and submits it for confirmation. It never
// mutates the forecast; it reads one day and reports the final choice
// upward.
type DetailPresenter struct {
	mu        sync.Mutex
	cfg       Config
	svc       Service
	logger    *zap.Logger
	callbacks DetailCallbacks
	selection DaySelection

	ctx    context.Context
	cancel context.CancelFunc

	open       bool
	ready      bool
	readyTimer *time.Timer
	selected   forecast.TierID
	expanded   bool
	submitting bool
	errMsg     string
	gen        uint64
}

// NewDetailPresenter creates a presenter for one selected day. The default
// tier selection is the first tier of the day.
func NewDetailPresenter(day forecast.DayPrice, requestID string, svc Service, cfg Config, logger *zap.Logger, callbacks DetailCallbacks) *DetailPresenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &DetailPresenter{
		cfg:       cfg.withDefaults(),
		svc:       svc,
		logger:    logger.With(zap.String("request_id", requestID), zap.String("date", day.Date)),
		callbacks: callbacks,
		selection: DaySelection{Day: day, RequestID: requestID},
	}
	if tiers := day.Tiers(); len(tiers) > 0 {
		p.selected = tiers[0].TierID()
	}
	return p
}

// Open makes the presenter visible and starts the mandatory minimum
// display delay. Pricing is not interactive until the delay elapses, even
// when the data is already available.
func (p *DetailPresenter) Open() {
	p.mu.Lock()
	if p.open {
		p.mu.Unlock()
		return
	}
	p.open = true
	p.ready = p.cfg.MinDisplayDelay <= 0
	p.errMsg = ""
	p.gen++
	p.ctx, p.cancel = context.WithCancel(context.Background())
	if !p.ready {
		gen := p.gen
		p.readyTimer = time.AfterFunc(p.cfg.MinDisplayDelay, func() { p.markReady(gen) })
	}
	p.mu.Unlock()
	p.logger.Debug("detail presenter opened")
}

// Close discards the in-progress selection with no backend call. A
// submission already in flight is cancelled; its response, if it still
// arrives, is ignored.
func (p *DetailPresenter) Close() {
	p.mu.Lock()
	if !p.open {
		p.mu.Unlock()
		return
	}
	p.open = false
	p.gen++
	if p.readyTimer != nil {
		p.readyTimer.Stop()
		p.readyTimer = nil
	}
	cancel := p.cancel
	onClose := p.callbacks.OnClose
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.logger.Debug("detail presenter closed")
	if onClose != nil {
		onClose()
	}
}

// Ready reports whether the minimum display delay has elapsed
func (p *DetailPresenter) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// Submitting reports whether a submission is in flight
func (p *DetailPresenter) Submitting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitting
}

// SelectedTier returns the currently selected tier
func (p *DetailPresenter) SelectedTier() forecast.TierID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// InlineError returns the retryable error message to display, or ""
func (p *DetailPresenter) InlineError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errMsg
}

// Day returns the day this presenter is scoped to
func (p *DetailPresenter) Day() forecast.DayPrice {
	return p.selection.Day
}

// Selection returns the ephemeral day selection
func (p *DetailPresenter) Selection() DaySelection {
	return p.selection
}

// SelectTier switches the active tier. The previous selection, including
// any inline error, is otherwise left intact.
func (p *DetailPresenter) SelectTier(id forecast.TierID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return errors.State("detail presenter is not open")
	}
	if !p.ready {
		return errors.State("pricing is not interactive yet")
	}
	if _, ok := p.selection.Day.Tier(id); !ok {
		return errors.NotFound("staff tier", id.String())
	}
	p.selected = id
	return nil
}

// ToggleBreakdown expands or collapses the component breakdown for the
// selected tier. Purely local state.
func (p *DetailPresenter) ToggleBreakdown() {
	p.mu.Lock()
	p.expanded = !p.expanded
	p.mu.Unlock()
}

// BreakdownVisible reports whether the breakdown is expanded
func (p *DetailPresenter) BreakdownVisible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.expanded
}

// Breakdown returns every component of the selected tier, key and value,
// formatted as currency. Keys are sorted for stable rendering.
func (p *DetailPresenter) Breakdown() []BreakdownRow {
	p.mu.Lock()
	sp, ok := p.selection.Day.Tier(p.selected)
	p.mu.Unlock()
	if !ok {
		return nil
	}

	keys := make([]string, 0, len(sp.Components))
	for k := range sp.Components {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]BreakdownRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, BreakdownRow{Name: k, Amount: currency.Format(sp.Components[k])})
	}
	return rows
}

// Multipliers returns the informational multipliers of the selected tier,
// sorted by key
func (p *DetailPresenter) Multipliers() []MultiplierRow {
	p.mu.Lock()
	sp, ok := p.selection.Day.Tier(p.selected)
	p.mu.Unlock()
	if !ok {
		return nil
	}

	keys := make([]string, 0, len(sp.Multipliers))
	for k := range sp.Multipliers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]MultiplierRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, MultiplierRow{Name: k, Factor: currency.Default.Multiplier(sp.Multipliers[k])})
	}
	return rows
}

// Accept submits the selected tier for confirmation. Only one submission
// may be in flight per presenter; further calls are rejected until the
// outstanding one resolves. A tier with no available price is rejected
// before anything is sent.
func (p *DetailPresenter) Accept() error {
	p.mu.Lock()
	if !p.open {
		p.mu.Unlock()
		return errors.State("detail presenter is not open")
	}
	if !p.ready {
		p.mu.Unlock()
		return errors.State("pricing is not interactive yet")
	}
	if p.submitting {
		p.mu.Unlock()
		return errors.State("a submission is already in flight")
	}
	sp, ok := p.selection.Day.Tier(p.selected)
	if !ok {
		p.mu.Unlock()
		return errors.NotFound("staff tier", p.selected.String())
	}
	if !sp.Available() {
		p.mu.Unlock()
		return errors.Unavailable(p.selected.String(), p.selection.Day.Date)
	}

	p.submitting = true
	p.errMsg = ""
	gen := p.gen
	ctx := p.ctx
	sub := QuoteSubmission{
		RequestID:  p.selection.RequestID,
		TierID:     p.selected,
		TotalPrice: *sp.Price,
		Breakdown:  sp.Components,
	}
	p.mu.Unlock()

	p.logger.Info("submitting quote", zap.String("tier", sub.TierID.String()), zap.String("total_price", sub.TotalPrice.String()))
	go p.submit(ctx, gen, sub)
	return nil
}

func (p *DetailPresenter) submit(ctx context.Context, gen uint64, sub QuoteSubmission) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.SubmitTimeout)
	defer cancel()

	err := p.svc.SubmitQuote(ctx, sub)

	p.mu.Lock()
	if !p.open || p.gen != gen {
		// The presenter was torn down while the call was in flight.
		p.mu.Unlock()
		p.logger.Debug("discarding stale submission result", zap.Error(err))
		return
	}
	p.submitting = false
	if err != nil {
		p.errMsg = RetryMessage
		p.mu.Unlock()
		p.logger.Warn("quote submission failed", zap.Error(err))
		return
	}
	p.open = false
	p.gen++
	if p.readyTimer != nil {
		p.readyTimer.Stop()
		p.readyTimer = nil
	}
	lifetimeCancel := p.cancel
	onAccept := p.callbacks.OnAccept
	p.mu.Unlock()

	if lifetimeCancel != nil {
		lifetimeCancel()
	}
	p.logger.Info("quote accepted", zap.String("tier", sub.TierID.String()))
	if onAccept != nil {
		onAccept(AcceptedChoice{TierID: sub.TierID, Price: sub.TotalPrice})
	}
}

func (p *DetailPresenter) markReady(gen uint64) {
	p.mu.Lock()
	if p.open && p.gen == gen {
		p.ready = true
	}
	p.mu.Unlock()
}
