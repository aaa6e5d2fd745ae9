// Package session implements the scheduling coordinator: it drives the
// timed key-emission streams against a dynamically located target process,
// with pause/resume control, bounded relocation and status reporting.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pks/internal/config"
	"pks/internal/emit"
	"pks/internal/keys"
	"pks/internal/proc"
	"pks/internal/report"
)

// ErrProcessNotFound is returned by Run when location retries are
// exhausted, at startup or after the process disappears mid-run.
var ErrProcessNotFound = errors.New("process not found after retry exhaustion")

// errStopped signals an explicit Stop; Run translates it to a clean end.
var errStopped = errors.New("stop requested")

// DefaultRetryDelay is the wait between process location attempts.
const DefaultRetryDelay = 2 * time.Second

// staleThreshold is the number of consecutive emission failures that
// demote the current handle and force relocation.
const staleThreshold = 3

// State is the run phase of a session.
type State int

const (
	StateStarting State = iota
	StateLocating
	StateRunning
	StatePaused
	StateStopping
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateLocating:
		return "locating"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

type step struct {
	combo    keys.Combo
	interval time.Duration
}

type timerSpec struct {
	combo    keys.Combo
	interval time.Duration
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithRetryDelay overrides the wait between process location attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Session) { s.retryDelay = d }
}

// Session coordinates one automation run. Construct with New, drive with
// Run; Pause, Resume, TogglePause and Stop are idempotent and safe to call
// from any goroutine.
type Session struct {
	processName string
	sequence    []step
	timers      []timerSpec
	loop        bool
	repeat      int
	maxRetries  int
	retryDelay  time.Duration

	locator  proc.Locator
	emitter  emit.Emitter
	reporter report.Reporter

	mu          sync.Mutex
	state       State
	paused      bool
	pausedAt    time.Time
	shiftTotal  time.Duration // cumulative paused time, shifts pending due times
	resumeCh    chan struct{}
	handle      proc.Handle
	located     bool
	consecFails int
	sent        int
	started     time.Time

	// Guards relocation so only one lookup is in flight; concurrent
	// callers block on it and find a fresh handle afterwards.
	relocMu sync.Mutex

	wake     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

// New snapshots the validated configuration into an immutable session.
func New(cfg *config.Config, locator proc.Locator, emitter emit.Emitter, reporter report.Reporter, opts ...Option) (*Session, error) {
	if reporter == nil {
		reporter = report.Nop{}
	}
	s := &Session{
		processName: cfg.ProcessName,
		loop:        cfg.LoopSequence,
		repeat:      cfg.RepeatCount,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  DefaultRetryDelay,
		locator:     locator,
		emitter:     emitter,
		reporter:    reporter,
		state:       StateStarting,
		wake:        make(chan struct{}, 1),
		stop:        make(chan struct{}),
	}

	for _, a := range cfg.KeySequence {
		combo, err := keys.ParseCombo(a.Key)
		if err != nil {
			return nil, err
		}
		if a.IntervalAfter < 0 {
			return nil, fmt.Errorf("%w: negative interval for key %q", config.ErrInvalid, a.Key)
		}
		s.sequence = append(s.sequence, step{combo: combo, interval: a.IntervalAfter.Std()})
	}
	for _, k := range cfg.IndependentKeys {
		combo, err := keys.ParseCombo(k.Key)
		if err != nil {
			return nil, err
		}
		if k.Interval.Std() <= 0 {
			return nil, fmt.Errorf("%w: non-positive interval for key %q", config.ErrInvalid, k.Key)
		}
		s.timers = append(s.timers, timerSpec{combo: combo, interval: k.Interval.Std()})
	}

	switch {
	case len(s.sequence) > 0 && len(s.timers) > 0:
		return nil, fmt.Errorf("%w: both sequence and independent keys configured", config.ErrInvalid)
	case len(s.sequence) == 0 && len(s.timers) == 0:
		return nil, fmt.Errorf("%w: no key actions configured", config.ErrInvalid)
	}
	if s.maxRetries < 1 {
		return nil, fmt.Errorf("%w: max_retries must be at least 1", config.ErrInvalid)
	}

	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// State returns the current run phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Sent returns the number of keys successfully sent so far.
func (s *Session) Sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

// Pause suspends emission. Pending due times are preserved and shifted
// forward by the paused duration on resume. No-op unless running.
func (s *Session) Pause() {
	s.mu.Lock()
	if s.paused || s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	s.paused = true
	s.pausedAt = time.Now()
	s.resumeCh = make(chan struct{})
	s.state = StatePaused
	s.mu.Unlock()

	s.poke()
	s.reporter.Report(report.Paused{})
}

// Resume continues emission after Pause. No-op unless paused.
func (s *Session) Resume() {
	s.mu.Lock()
	if !s.paused {
		s.mu.Unlock()
		return
	}
	s.shiftTotal += time.Since(s.pausedAt)
	s.paused = false
	close(s.resumeCh)
	s.state = StateRunning
	s.mu.Unlock()

	s.poke()
	s.reporter.Report(report.Resumed{})
}

// TogglePause flips between paused and running; intended for the hotkey.
func (s *Session) TogglePause() {
	s.mu.Lock()
	paused := s.paused
	s.mu.Unlock()
	if paused {
		s.Resume()
	} else {
		s.Pause()
	}
}

// Stop ends the session. Every suspended wait observes it promptly.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		if s.state != StateStopped && s.state != StateFailed {
			s.state = StateStopping
		}
		s.mu.Unlock()
		close(s.stop)
	})
}

// Run locates the target and drives the configured mode until the repeat
// policy completes, Stop is called, the context ends, or location retries
// are exhausted. It returns nil on a clean end and the fatal error
// otherwise; the terminal status event carries the summary either way.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateStarting {
		s.mu.Unlock()
		return errors.New("session already started")
	}
	s.state = StateLocating
	s.started = time.Now()
	s.mu.Unlock()

	slog.Info("session starting", "process", s.processName, "mode", s.mode())

	if err := s.relocate(ctx); err != nil {
		return s.finish(err)
	}
	s.setRunning()

	var err error
	if len(s.timers) > 0 {
		err = s.runIndependent(ctx)
	} else {
		err = s.runSequence(ctx)
	}
	return s.finish(err)
}

func (s *Session) mode() string {
	if len(s.timers) > 0 {
		return "independent"
	}
	return "sequence"
}

func (s *Session) setRunning() {
	s.mu.Lock()
	if !s.paused && s.state != StateStopping {
		s.state = StateRunning
	}
	s.mu.Unlock()
}

func (s *Session) finish(err error) error {
	s.mu.Lock()
	sent := s.sent
	elapsed := time.Since(s.started)
	s.mu.Unlock()

	setState := func(st State) {
		s.mu.Lock()
		s.state = st
		s.mu.Unlock()
	}

	switch {
	case err == nil:
		setState(StateStopped)
		s.reporter.Report(report.Stopped{Reason: "sequence completed", Sent: sent, Elapsed: elapsed})
		return nil
	case errors.Is(err, errStopped):
		setState(StateStopped)
		s.reporter.Report(report.Stopped{Reason: "stop requested", Sent: sent, Elapsed: elapsed})
		return nil
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		setState(StateStopped)
		s.reporter.Report(report.Stopped{Reason: "canceled", Sent: sent, Elapsed: elapsed})
		return err
	default:
		setState(StateFailed)
		s.reporter.Report(report.Failed{Err: err, Sent: sent, Elapsed: elapsed})
		return err
	}
}

// runSequence walks the ordered steps with a single cursor: send, wait the
// step's interval, advance. loop_sequence=false always means exactly one
// pass, even when repeat_count asks for more.
func (s *Session) runSequence(ctx context.Context) error {
	passes := 0
	for {
		for i, st := range s.sequence {
			if err := s.emitStep(ctx, st.combo, i+1, len(s.sequence)); err != nil {
				return err
			}
			if err := s.waitInterval(ctx, st.interval); err != nil {
				return err
			}
		}
		passes++
		s.reporter.Report(report.CycleDone{N: passes})
		if !s.loop {
			return nil
		}
		if s.repeat > 0 && passes >= s.repeat {
			return nil
		}
	}
}

// emitStep performs one guarded emission: block while paused, re-validate
// the handle, send, and account for consecutive failures. Emission
// failures never end the session; only relocation exhaustion does.
func (s *Session) emitStep(ctx context.Context, combo keys.Combo, stepNum, of int) error {
	if err := s.pauseGate(ctx); err != nil {
		return err
	}
	if err := s.checkStop(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	h := s.handle
	s.mu.Unlock()

	if !s.locator.Alive(h) {
		slog.Debug("target process gone, relocating", "process", s.processName)
		s.demoteHandle()
		if err := s.relocate(ctx); err != nil {
			return err
		}
		s.mu.Lock()
		h = s.handle
		s.mu.Unlock()
	}

	if err := s.emitter.Send(h, combo); err != nil {
		s.mu.Lock()
		s.consecFails++
		fails := s.consecFails
		s.mu.Unlock()

		s.reporter.Report(report.SendFailed{Combo: combo, Err: err})
		if fails >= staleThreshold {
			slog.Debug("handle stale after consecutive send failures", "fails", fails)
			s.demoteHandle()
			if err := s.relocate(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	s.mu.Lock()
	s.consecFails = 0
	s.sent++
	s.mu.Unlock()
	s.reporter.Report(report.KeySent{Combo: combo, Process: s.processName, Step: stepNum, Of: of})
	return nil
}

func (s *Session) demoteHandle() {
	s.mu.Lock()
	s.located = false
	s.mu.Unlock()
}

// relocate resolves the target process, retrying with retryDelay up to
// maxRetries. Only one relocation runs at a time; late arrivals find the
// fresh handle and return immediately. Exhaustion is the one fatal
// runtime error.
func (s *Session) relocate(ctx context.Context) error {
	s.relocMu.Lock()
	defer s.relocMu.Unlock()

	s.mu.Lock()
	h, located := s.handle, s.located
	s.mu.Unlock()
	if located && s.locator.Alive(h) {
		return nil
	}

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		if err := s.checkStop(ctx); err != nil {
			return err
		}

		h, err := s.locator.Locate(ctx, s.processName)
		if err == nil {
			s.mu.Lock()
			s.handle = h
			s.located = true
			s.consecFails = 0
			s.mu.Unlock()
			s.reporter.Report(report.ProcessRelocated{PID: h.PID})
			return nil
		}
		if !errors.Is(err, proc.ErrNotFound) {
			return err
		}

		s.reporter.Report(report.ProcessUnavailable{Attempt: attempt, Max: s.maxRetries})
		if attempt < s.maxRetries {
			if err := s.sleep(ctx, s.retryDelay); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("%w: %q after %d attempts", ErrProcessNotFound, s.processName, s.maxRetries)
}

// waitInterval waits d of un-paused time: any pause during the wait shifts
// the due time forward by the paused duration, so the remaining wait is
// preserved rather than shortened or restarted.
func (s *Session) waitInterval(ctx context.Context, d time.Duration) error {
	due := time.Now().Add(d)
	base := s.shiftSnapshot()
	for {
		if cur := s.shiftSnapshot(); cur != base {
			due = due.Add(cur - base)
			base = cur
		}
		fired, err := s.sleepUntil(ctx, due)
		if err != nil {
			return err
		}
		if fired {
			return nil
		}
	}
}

// sleepUntil sleeps toward due. It returns fired=true when due elapsed
// while running, and fired=false when the pause state changed and the
// caller should re-evaluate its due time.
func (s *Session) sleepUntil(ctx context.Context, due time.Time) (bool, error) {
	s.mu.Lock()
	paused := s.paused
	resumeCh := s.resumeCh
	s.mu.Unlock()

	if paused {
		select {
		case <-resumeCh:
			return false, nil
		case <-s.stop:
			return false, errStopped
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	d := time.Until(due)
	if d <= 0 {
		return true, nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true, nil
	case <-s.wake:
		return false, nil
	case <-s.stop:
		return false, errStopped
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// pauseGate blocks while the session is paused.
func (s *Session) pauseGate(ctx context.Context) error {
	for {
		s.mu.Lock()
		paused := s.paused
		resumeCh := s.resumeCh
		s.mu.Unlock()
		if !paused {
			return nil
		}
		select {
		case <-resumeCh:
		case <-s.stop:
			return errStopped
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Session) sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-s.stop:
		return errStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) checkStop(ctx context.Context) error {
	select {
	case <-s.stop:
		return errStopped
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func (s *Session) shiftSnapshot() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shiftTotal
}

// poke wakes the scheduler loop so a pause or resume is observed promptly.
func (s *Session) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
