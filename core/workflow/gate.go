package workflow

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultGateSteps is the fixed preparation checklist shown while a quote
// is being readied
var DefaultGateSteps = []string{
	"Checking Vehicle Availability",
	"Verifying Route",
	"Calculating Time",
	"Confirming Location",
	"Checking Traffic",
	"Finalizing Details",
}

// GateConfig configures the preparation gate
type GateConfig struct {
	// Steps are the checklist labels, advanced in order
	Steps []string

	// StepInterval is the fixed delay between steps
	StepInterval time.Duration
}

// DefaultGateConfig returns the observed production pacing
func DefaultGateConfig() GateConfig {
	return GateConfig{
		Steps:        DefaultGateSteps,
		StepInterval: 800 * time.Millisecond,
	}
}

// PreparationGate sequences a fixed checklist of preparation steps and
// declares itself complete only once the last step has been reached and
// the real underlying load has finished. Whichever condition resolves
// last gates the other. The gate has no failure mode of its own: if the
// underlying load never resolves, completion simply never fires.
type PreparationGate struct {
	mu         sync.Mutex
	cfg        GateConfig
	logger     *zap.Logger
	onComplete func()

	open      bool
	loading   bool
	step      int
	completed bool
	session   uint64
	timer     *time.Timer
}

// NewPreparationGate creates a gate. The underlying load is considered
// in progress until SetLoading(false) is called. onComplete fires at most
// once per open.
func NewPreparationGate(cfg GateConfig, logger *zap.Logger, onComplete func()) *PreparationGate {
	if cfg.StepInterval <= 0 {
		cfg.StepInterval = DefaultGateConfig().StepInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreparationGate{
		cfg:        cfg,
		logger:     logger,
		onComplete: onComplete,
		loading:    true,
	}
}

// Open starts (or restarts) the step sequence from step zero. The gate is
// not resumable: reopening always resets.
func (g *PreparationGate) Open() {
	g.mu.Lock()
	g.open = true
	g.step = 0
	g.completed = false
	g.session++
	g.stopTimerLocked()
	session := g.session
	if len(g.cfg.Steps) > 1 {
		g.timer = time.AfterFunc(g.cfg.StepInterval, func() { g.advance(session) })
		g.mu.Unlock()
		return
	}
	// Nothing to step through; completion is gated on loading alone.
	cb := g.maybeCompleteLocked()
	g.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Close hides the gate and stops the sequence
func (g *PreparationGate) Close() {
	g.mu.Lock()
	g.open = false
	g.session++
	g.stopTimerLocked()
	g.mu.Unlock()
}

// SetLoading updates the externally supplied loading flag
func (g *PreparationGate) SetLoading(loading bool) {
	g.mu.Lock()
	g.loading = loading
	cb := g.maybeCompleteLocked()
	g.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Step returns the current step index
func (g *PreparationGate) Step() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.step
}

// Completed reports whether the gate has fired completion for the
// current open
func (g *PreparationGate) Completed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.completed
}

// Steps returns the checklist labels
func (g *PreparationGate) Steps() []string {
	out := make([]string, len(g.cfg.Steps))
	copy(out, g.cfg.Steps)
	return out
}

func (g *PreparationGate) advance(session uint64) {
	g.mu.Lock()
	if !g.open || session != g.session {
		g.mu.Unlock()
		return
	}
	if g.step < len(g.cfg.Steps)-1 {
		g.step++
	}
	var cb func()
	if g.step < len(g.cfg.Steps)-1 {
		g.timer = time.AfterFunc(g.cfg.StepInterval, func() { g.advance(session) })
	} else {
		g.logger.Debug("preparation steps finished", zap.Int("steps", len(g.cfg.Steps)))
		cb = g.maybeCompleteLocked()
	}
	g.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// maybeCompleteLocked returns the completion callback to invoke (outside
// the lock) when both the step sequence and the real load have finished.
func (g *PreparationGate) maybeCompleteLocked() func() {
	if !g.open || g.completed || g.loading {
		return nil
	}
	if g.step < len(g.cfg.Steps)-1 {
		return nil
	}
	g.completed = true
	return g.onComplete
}

func (g *PreparationGate) stopTimerLocked() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}
