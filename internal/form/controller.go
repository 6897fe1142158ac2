package form

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/emailreply/internal/logging"
)

// CopyIndicatorDuration is how long State.Copied stays true after a copy.
const CopyIndicatorDuration = 2 * time.Second

// Generator produces a reply for the given input.
// Implementations must return promptly once ctx is cancelled.
type Generator interface {
	Generate(ctx context.Context, in Input) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, in Input) (string, error)

// Generate implements Generator
func (f GeneratorFunc) Generate(ctx context.Context, in Input) (string, error) {
	return f(ctx, in)
}

// Clipboard receives copied reply text.
type Clipboard interface {
	WriteAll(text string) error
}

// State is an immutable snapshot of the form session.
type State struct {
	Input  Input
	Phase  Phase
	Result string // set only in PhaseSucceeded
	Error  string // set only in PhaseFailed
	Copied bool
}

// HasResult reports whether there is a reply that can be copied.
func (s State) HasResult() bool {
	return s.Phase == PhaseSucceeded && s.Result != ""
}

// CanSubmit reports whether a submit action makes sense for this state.
// Renderers use it to disable the submit control; Submit itself only
// rejects concurrent submissions.
func (s State) CanSubmit() bool {
	return s.Phase != PhaseSubmitting && s.Input.EmailContent != ""
}

// Option configures a Controller.
type Option func(*Controller)

// WithClipboard sets the clipboard used by CopyResult.
func WithClipboard(cb Clipboard) Option {
	return func(c *Controller) { c.clipboard = cb }
}

// WithScheduler replaces the timer service used for the copied indicator.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.scheduler = s }
}

// WithCopyIndicatorDuration overrides CopyIndicatorDuration.
func WithCopyIndicatorDuration(d time.Duration) Option {
	return func(c *Controller) { c.copyDuration = d }
}

// WithDefaultTone sets the tone used for a fresh or cleared form.
// Invalid tones are ignored.
func WithDefaultTone(t Tone) Option {
	return func(c *Controller) {
		if t.Valid() {
			c.defaults.Tone = t
		}
	}
}

// WithLogger sets the logger. Defaults to the global logging logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller owns the state of one form session.
type Controller struct {
	generator    Generator
	clipboard    Clipboard
	scheduler    Scheduler
	logger       *zap.Logger
	copyDuration time.Duration
	defaults     Input

	mu        sync.Mutex
	state     State
	inflight  *Submission
	revert    Timer
	copyToken uint64

	updates chan State
}

// New creates a controller in PhaseIdle with default input.
func New(gen Generator, opts ...Option) *Controller {
	c := &Controller{
		generator:    gen,
		scheduler:    RealScheduler(),
		copyDuration: CopyIndicatorDuration,
		defaults:     DefaultInput(),
		updates:      make(chan State, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.GetLogger()
	}
	c.state = State{Input: c.defaults, Phase: PhaseIdle}
	return c
}

// State returns a snapshot of the current session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Phase
}

// Updates delivers a snapshot after every state change. The channel holds
// at most one pending snapshot; a slow reader only sees the latest one.
func (c *Controller) Updates() <-chan State {
	return c.updates
}

// UpdateField applies a field edit. It never changes the phase, the result,
// the error or the copied indicator. Invalid tones are rejected with
// ErrInvalidTone and leave the input untouched.
func (c *Controller) UpdateField(f Field) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	in := c.state.Input
	if err := f.apply(&in); err != nil {
		return err
	}
	if in == c.state.Input {
		return nil
	}
	c.state.Input = in
	c.notifyLocked()
	return nil
}

// Submit starts a generation request for the current input.
//
// The transition to PhaseSubmitting happens before Submit returns; the
// request runs on its own goroutine and its outcome moves the form to
// PhaseSucceeded or PhaseFailed. Submit returns ErrSubmitInProgress if a
// submission is already in flight. Cancelling ctx cancels the request,
// which then fails like any other request.
func (c *Controller) Submit(ctx context.Context) (*Submission, error) {
	c.mu.Lock()
	if c.state.Phase == PhaseSubmitting {
		c.mu.Unlock()
		return nil, ErrSubmitInProgress
	}

	c.stopRevertLocked()

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Submission{
		ID:     uuid.NewString(),
		Input:  c.state.Input,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	from := c.state.Phase
	c.state.Result = ""
	c.state.Error = ""
	c.state.Copied = false
	c.state.Phase = PhaseSubmitting
	c.inflight = sub
	c.notifyLocked()
	c.mu.Unlock()

	logging.LogPhaseTransition(sub.ID, from.String(), PhaseSubmitting.String())

	go c.run(ContextWithSubmissionID(subCtx, sub.ID), sub)
	return sub, nil
}

// run performs the generation call and applies its outcome
func (c *Controller) run(ctx context.Context, sub *Submission) {
	defer sub.cancel()

	result, err := c.generator.Generate(ctx, sub.Input)
	c.complete(sub, result, err)
}

// complete applies a submission outcome unless the submission was
// superseded by Clear
func (c *Controller) complete(sub *Submission, result string, err error) {
	outcome := Outcome{Result: result, Err: err}

	c.mu.Lock()
	if c.inflight != sub {
		c.mu.Unlock()
		outcome.Discarded = true
		c.logger.Debug("Discarding outcome of abandoned submission",
			zap.String("submission_id", sub.ID),
			zap.Error(err),
		)
		sub.finish(outcome)
		return
	}

	c.inflight = nil
	if err != nil {
		c.state.Phase = PhaseFailed
		c.state.Error = MessageFor(err)
		c.state.Result = ""
	} else {
		c.state.Phase = PhaseSucceeded
		c.state.Result = result
		c.state.Error = ""
	}
	to := c.state.Phase
	c.notifyLocked()
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("Reply generation failed",
			zap.String("submission_id", sub.ID),
			zap.Error(err),
		)
	}
	logging.LogPhaseTransition(sub.ID, PhaseSubmitting.String(), to.String())
	sub.finish(outcome)
}

// CopyResult writes the current reply to the clipboard and raises the
// copied indicator for the configured duration. It returns false and
// changes nothing when there is no reply or the clipboard write fails.
// A copy while the indicator is raised restarts its timer.
func (c *Controller) CopyResult() bool {
	c.mu.Lock()
	if !c.state.HasResult() {
		c.mu.Unlock()
		return false
	}
	cb := c.clipboard
	if cb == nil {
		c.mu.Unlock()
		c.logger.Warn("No clipboard configured, copy ignored")
		return false
	}
	result := c.state.Result
	c.mu.Unlock()

	// The system clipboard may shell out to xclip or wl-copy; keep the
	// lock free while it runs.
	if err := cb.WriteAll(result); err != nil {
		c.logger.Warn("Clipboard write failed", zap.Error(err))
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.HasResult() || c.state.Result != result {
		c.logger.Debug("Form changed during clipboard write, indicator not raised")
		return false
	}

	c.stopRevertLocked()
	token := c.copyToken
	c.state.Copied = true
	c.revert = c.scheduler.AfterFunc(c.copyDuration, func() {
		c.revertCopied(token)
	})
	c.notifyLocked()
	return true
}

// revertCopied lowers the copied indicator if token still names the
// latest copy
func (c *Controller) revertCopied(token uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.copyToken || !c.state.Copied {
		return
	}
	c.revert = nil
	c.state.Copied = false
	c.notifyLocked()
}

// Clear resets the form to its defaults and PhaseIdle. An in-flight
// submission is cancelled and its outcome discarded; a pending indicator
// revert is cancelled.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight != nil {
		c.inflight.cancel()
		c.logger.Debug("Cleared form during submission",
			zap.String("submission_id", c.inflight.ID),
		)
		c.inflight = nil
	}
	c.stopRevertLocked()
	c.state = State{Input: c.defaults, Phase: PhaseIdle}
	c.notifyLocked()
}

// Reset returns the controller to the state New produced: default input,
// PhaseIdle, no outcome. It is Clear under the name the session lifecycle
// uses when a form is reopened.
func (c *Controller) Reset() {
	c.Clear()
}

// stopRevertLocked cancels the pending indicator revert and invalidates
// any callback that already started firing. Caller must hold c.mu.
func (c *Controller) stopRevertLocked() {
	if c.revert != nil {
		c.revert.Stop()
		c.revert = nil
	}
	c.copyToken++
}

// notifyLocked publishes the current state, replacing an unread snapshot.
// Caller must hold c.mu.
func (c *Controller) notifyLocked() {
	s := c.state
	select {
	case c.updates <- s:
		return
	default:
	}
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- s:
	default:
	}
}
