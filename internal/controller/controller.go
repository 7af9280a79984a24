// Package controller keeps the seat counters of the enrollment page in sync
// with the seat API and drives the enrollment and brochure forms.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/robertarktes/batch-seat-reservations/internal/domain"
	"github.com/robertarktes/batch-seat-reservations/internal/observability"
)

const (
	MsgMissingFields   = "Please fill all required fields."
	MsgReserved        = "Thanks, we received your seat request. Check your email for next steps."
	MsgSoldOut         = "Sorry, this batch is sold out."
	MsgFailed          = "Something went wrong, try again."
	MsgBrochureSent    = "Thank you! Your brochure is on its way."
	MsgBrochureInvalid = "Please enter a valid phone number or email."

	SubmitLabel = "Confirm & Pay"
	BusyLabel   = "Processing..."

	DefaultPollInterval  = 10 * time.Second
	DefaultDismissDelay  = 600 * time.Millisecond
	DefaultBrochureDelay = 13 * time.Second
	DefaultLiveOffset    = 6
)

var (
	ErrSubmitInProgress = errors.New("submission in progress")
	ErrAlreadyStarted   = errors.New("controller already started")
	ErrStopped          = errors.New("controller stopped")
	ErrNoBrochureAPI    = errors.New("brochure requests are not configured")
)

type SeatAPI interface {
	GetStatus(ctx context.Context) (domain.BatchStatus, error)
	ReserveSeat(ctx context.Context, req domain.ReservationRequest) (domain.ReservationResult, error)
}

type BrochureAPI interface {
	RequestBrochure(ctx context.Context, channel domain.BrochureChannel, email, phone string) (domain.BrochureRequest, error)
}

type Notifier interface {
	Notify(message string, isError bool)
}

// CounterDisplay receives both counters in one call so they never disagree.
type CounterDisplay interface {
	ShowSeats(seatsLeft, live int)
}

type SubmitControl interface {
	SetSubmit(enabled bool, label string)
}

type Dialogs interface {
	DismissEnrollment()
	ShowBrochure()
	HideBrochure()
}

// View is everything the controller renders into. Implementations must not
// call back into the controller synchronously.
type View interface {
	Notifier
	CounterDisplay
	SubmitControl
	Dialogs
}

type Options struct {
	PollInterval  time.Duration
	DismissDelay  time.Duration
	BrochureDelay time.Duration
	LiveOffset    int
	Clock         clockwork.Clock
	Logger        observability.Logger
}

func DefaultOptions() Options {
	return Options{
		PollInterval:  DefaultPollInterval,
		DismissDelay:  DefaultDismissDelay,
		BrochureDelay: DefaultBrochureDelay,
		LiveOffset:    DefaultLiveOffset,
	}
}

type Controller struct {
	api       SeatAPI
	brochures BrochureAPI
	view      View
	opts      Options
	clock     clockwork.Clock
	logger    observability.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu            sync.Mutex
	started       bool
	stopped       bool
	display       DisplayState
	submit        SubmitState
	lastOutcome   SubmitState
	seats         int
	live          int
	brochureShown bool
}

// New builds a controller. brochures may be nil when the page has no
// brochure popup.
func New(api SeatAPI, brochures BrochureAPI, view View, opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		api:       api,
		brochures: brochures,
		view:      view,
		opts:      opts,
		clock:     opts.Clock,
		logger:    opts.Logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start loads the counters, starts polling and arms the brochure popup.
// Cancelling parent has the same effect as Stop without waiting.
func (c *Controller) Start(parent context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.stopped:
		return ErrStopped
	case c.started:
		return ErrAlreadyStarted
	}
	c.started = true
	c.display = DisplayLoading
	context.AfterFunc(parent, c.cancel)

	c.wg.Add(1)
	go c.poll()
	if c.brochures != nil && c.opts.BrochureDelay > 0 {
		c.wg.Add(1)
		go c.armBrochure()
	}
	return nil
}

// Stop cancels polling, pending reservations and timers, then waits for them.
// Nothing is rendered after Stop returns.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
	c.cancel()
	c.wg.Wait()
}

func (c *Controller) poll() {
	defer c.wg.Done()
	_ = c.Refresh(c.ctx)
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.clock.After(c.opts.PollInterval):
			_ = c.Refresh(c.ctx)
		}
	}
}

// Refresh fetches the status once. Failures leave the counters untouched.
func (c *Controller) Refresh(ctx context.Context) error {
	status, err := c.api.GetStatus(ctx)
	if err != nil {
		c.logger.WithField("error", err.Error()).Debug("seat status refresh failed")
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showSeatsLocked(status.SeatsLeft)
	return nil
}

func (c *Controller) showSeatsLocked(seatsLeft int) {
	if c.stopped {
		return
	}
	c.seats = seatsLeft
	c.live = domain.LiveSeats(seatsLeft, c.opts.LiveOffset)
	c.display = DisplayDisplayed
	c.view.ShowSeats(c.seats, c.live)
}

func (c *Controller) notifyLocked(msg string, isError bool) {
	if c.stopped {
		return
	}
	c.view.Notify(msg, isError)
}

// Submit runs the enrollment form lifecycle and returns the outcome it
// reached before the form went back to ready.
func (c *Controller) Submit(ctx context.Context, req domain.ReservationRequest) (SubmitState, error) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return SubmitError, ErrStopped
	}
	if c.submit != SubmitReady {
		c.mu.Unlock()
		return SubmitError, ErrSubmitInProgress
	}
	if err := req.Validate(); err != nil {
		c.lastOutcome = SubmitError
		c.notifyLocked(MsgMissingFields, true)
		c.mu.Unlock()
		return SubmitError, err
	}
	req = req.WithSubmissionID()
	c.submit = SubmitSubmitting
	c.view.SetSubmit(false, BusyLabel)
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	res, err := c.api.ReserveSeat(callCtx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	outcome := c.settleLocked(res, err)
	c.lastOutcome = outcome
	c.submit = SubmitReady
	if !c.stopped {
		c.view.SetSubmit(true, SubmitLabel)
	}
	return outcome, err
}

func (c *Controller) settleLocked(res domain.ReservationResult, err error) SubmitState {
	switch domain.KindOf(err) {
	case domain.ErrorKindNone:
		c.submit = SubmitSuccess
		c.notifyLocked(MsgReserved, false)
		c.showSeatsLocked(res.SeatsLeft)
		c.scheduleDismissLocked()
		return SubmitSuccess
	case domain.ErrorKindSoldOut:
		c.submit = SubmitSoldOut
		c.notifyLocked(MsgSoldOut, true)
		return SubmitSoldOut
	default:
		c.submit = SubmitError
		c.logger.WithField("error", err.Error()).Warn("seat reservation failed")
		c.notifyLocked(MsgFailed, true)
		return SubmitError
	}
}

func (c *Controller) scheduleDismissLocked() {
	if c.stopped {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if !c.sleep(c.opts.DismissDelay) {
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.stopped {
			c.view.DismissEnrollment()
		}
	}()
}

func (c *Controller) armBrochure() {
	defer c.wg.Done()
	if !c.sleep(c.opts.BrochureDelay) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || c.brochureShown {
		return
	}
	c.brochureShown = true
	c.view.ShowBrochure()
}

// SubmitBrochure sends the brochure form. The popup closes only on success.
func (c *Controller) SubmitBrochure(ctx context.Context, channel domain.BrochureChannel, email, phone string) error {
	if c.brochures == nil {
		return ErrNoBrochureAPI
	}
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return ErrStopped
	}
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	_, err := c.brochures.RequestBrochure(callCtx, channel, email, phone)

	c.mu.Lock()
	defer c.mu.Unlock()
	switch domain.KindOf(err) {
	case domain.ErrorKindNone:
		c.notifyLocked(MsgBrochureSent, false)
		if !c.stopped {
			c.view.HideBrochure()
		}
	case domain.ErrorKindValidation:
		c.notifyLocked(MsgBrochureInvalid, true)
	default:
		c.logger.WithField("error", err.Error()).Warn("brochure request failed")
		c.notifyLocked(MsgFailed, true)
	}
	return err
}

// sleep waits d on the controller clock and reports false if the controller
// stopped first.
func (c *Controller) sleep(d time.Duration) bool {
	if d <= 0 {
		return c.ctx.Err() == nil
	}
	select {
	case <-c.ctx.Done():
		return false
	case <-c.clock.After(d):
		return true
	}
}

func (c *Controller) DisplayState() DisplayState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display
}

func (c *Controller) SubmitState() SubmitState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submit
}

// LastOutcome is the terminal state of the most recent submit.
func (c *Controller) LastOutcome() SubmitState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastOutcome
}

// Seats returns the counters as last displayed.
func (c *Controller) Seats() (seatsLeft, live int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seats, c.live
}
