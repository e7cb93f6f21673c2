// Package autosave keeps an in-progress form synchronized with the draft API.
//
// A Coordinator watches form state through Update, waits for the form to go
// quiet for the debounce interval, then saves the latest state. At most one
// automatic save is in flight at a time; a timer that fires during a save is
// held until that save completes. TriggerSave bypasses the debounce.
//
// Failures never escape the coordinator. They are reported through
// Status().Error and the hosting form keeps its local state.
package autosave

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/naass/lead-api/internal/entity"
)

const (
	DefaultDebounce = 1500 * time.Millisecond
	DefaultTimeout  = 30 * time.Second
)

// User-facing error strings reported through Status.
const (
	ErrMsgSave    = "could not save"
	ErrMsgRestore = "could not restore saved data"
	ErrMsgClear   = "could not clear saved data"
)

type State string

const (
	StateIdle        State = "idle"
	StatePendingSave State = "pending_save"
	StateSaving      State = "saving"
	StateDisabled    State = "disabled"
)

// Timer is the handle returned by Options.AfterFunc. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

type Options struct {
	Key      string
	FormType entity.FormType
	Debounce time.Duration
	// Timeout bounds each request issued by the coordinator.
	Timeout time.Duration
	// Disabled starts the coordinator without auto-save consent.
	Disabled bool

	OnRestore func(entity.FormData)
	OnSave    func(entity.FormData)

	Logger    zerolog.Logger
	Now       func() time.Time
	AfterFunc func(time.Duration, func()) Timer
}

type Status struct {
	State             State
	LastSaved         *time.Time
	HasUnsavedChanges bool
	IsSaving          bool
	Error             string
	Consent           bool
}

type Coordinator struct {
	client DraftClient
	opts   Options
	logger zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     State
	data      entity.FormData
	timer     Timer
	gen       uint64
	inFlight  int
	deferred  bool
	dirty     bool
	lastSaved *time.Time
	errMsg    string
	consent   bool
	closed    bool

	// purgeAfterSave marks saves that were in flight when the draft was cleared.
	purgeAfterSave bool
}

func New(client DraftClient, opts Options) *Coordinator {
	if opts.FormType == "" {
		opts.FormType = entity.FormTypeContact
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		client: client,
		opts:   opts,
		logger: opts.Logger.With().
			Str("component", "autosave").
			Str("form_type", string(opts.FormType)).
			Logger(),
		ctx:     ctx,
		cancel:  cancel,
		state:   StateIdle,
		consent: !opts.Disabled,
	}
	if opts.Disabled {
		c.state = StateDisabled
	}
	return c
}

func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	var last *time.Time
	if c.lastSaved != nil {
		t := *c.lastSaved
		last = &t
	}
	return Status{
		State:             c.state,
		LastSaved:         last,
		HasUnsavedChanges: c.dirty,
		IsSaving:          c.inFlight > 0,
		Error:             c.errMsg,
		Consent:           c.consent,
	}
}

// Update records the current form state. A structural change (re)arms the
// debounce timer; an identical state is ignored.
func (c *Coordinator) Update(data entity.FormData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || sameData(c.data, data) {
		return
	}
	c.data = data.Clone()

	if !c.consent {
		return
	}
	c.dirty = true
	c.armLocked()
	c.state = StatePendingSave
}

// TriggerSave cancels any pending timer and saves the current state now.
// Before the form has reported any state there is nothing to save.
func (c *Coordinator) TriggerSave(ctx context.Context) {
	c.mu.Lock()
	if c.closed || !c.consent {
		c.mu.Unlock()
		return
	}
	c.stopTimerLocked()
	c.deferred = false
	if c.data == nil {
		c.settleLocked()
		c.mu.Unlock()
		return
	}
	snapshot := c.beginSaveLocked()
	c.mu.Unlock()

	c.save(ctx, snapshot)
}

// Restore loads a previously saved draft and hands it to Options.OnRestore.
// It returns nil when there is nothing to restore or the lookup failed.
func (c *Coordinator) Restore(ctx context.Context) entity.FormData {
	c.mu.Lock()
	if c.closed || !c.consent {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	draft, err := c.client.GetDraft(ctx, c.opts.FormType, c.opts.Key)

	c.mu.Lock()
	if err != nil {
		c.errMsg = ErrMsgRestore
		c.mu.Unlock()
		c.logger.Warn().Err(err).Msg("restore failed, starting with an empty form")
		return nil
	}
	if draft == nil || !c.consent {
		c.mu.Unlock()
		return nil
	}

	c.stopTimerLocked()
	c.deferred = false
	c.data = draft.Data.Clone()
	c.dirty = false
	updated := draft.UpdatedAt
	c.lastSaved = &updated
	c.settleLocked()
	c.mu.Unlock()

	restored := draft.Data.Clone()
	if c.opts.OnRestore != nil {
		c.opts.OnRestore(restored.Clone())
	}
	return restored
}

// ClearSavedData deletes the server-side draft. On failure the local save
// tracking is left untouched. A save still in flight is deleted again once it
// lands.
func (c *Coordinator) ClearSavedData(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.stopTimerLocked()
	c.deferred = false
	if c.inFlight > 0 {
		c.purgeAfterSave = true
	}
	c.settleLocked()
	c.mu.Unlock()

	c.purge(ctx)
}

// SetConsent enables or disables auto-save. Revoking consent cancels any
// pending save and deletes the server-side draft; granting it restores.
func (c *Coordinator) SetConsent(ctx context.Context, consent bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.consent = consent
	if !consent {
		c.stopTimerLocked()
		c.deferred = false
		c.state = StateDisabled
		c.mu.Unlock()
		c.purge(ctx)
		return
	}
	c.settleLocked()
	c.mu.Unlock()

	c.Restore(ctx)
}

// Close stops the timer and aborts requests started by the timer.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.stopTimerLocked()
	c.mu.Unlock()
	c.cancel()
}

func (c *Coordinator) armLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.timer = c.opts.AfterFunc(c.opts.Debounce, func() { c.onTimer(gen) })
}

func (c *Coordinator) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}

func (c *Coordinator) onTimer(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.closed || !c.consent {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	if c.inFlight > 0 {
		c.deferred = true
		c.mu.Unlock()
		return
	}
	snapshot := c.beginSaveLocked()
	c.mu.Unlock()

	c.save(c.ctx, snapshot)
}

// beginSaveLocked never returns nil: save treats nil as "nothing left to do".
func (c *Coordinator) beginSaveLocked() entity.FormData {
	c.inFlight++
	c.state = StateSaving
	c.errMsg = ""
	snapshot := c.data.Clone()
	if snapshot == nil {
		snapshot = entity.FormData{}
	}
	return snapshot
}

// settleLocked derives the resting state from what is outstanding.
func (c *Coordinator) settleLocked() {
	switch {
	case !c.consent:
		c.state = StateDisabled
	case c.timer != nil:
		c.state = StatePendingSave
	case c.inFlight > 0:
		c.state = StateSaving
	default:
		c.state = StateIdle
	}
}

func (c *Coordinator) save(ctx context.Context, snapshot entity.FormData) {
	for snapshot != nil {
		snapshot = c.saveOnce(ctx, snapshot)
		ctx = c.ctx
	}
}

// saveOnce performs one save and returns the next snapshot to save when a
// timer fired while this one was in flight.
func (c *Coordinator) saveOnce(ctx context.Context, snapshot entity.FormData) entity.FormData {
	reqCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	_, err := c.client.SaveDraft(reqCtx, c.opts.FormType, c.opts.Key, snapshot)
	cancel()

	c.mu.Lock()
	c.inFlight--
	// consent was withdrawn or the draft cleared while this save was in flight
	stale := !c.consent || c.purgeAfterSave
	if c.inFlight == 0 {
		c.purgeAfterSave = false
	}
	if err != nil {
		c.errMsg = ErrMsgSave
	} else if !stale {
		now := c.opts.Now()
		c.lastSaved = &now
		if sameData(snapshot, c.data) {
			c.dirty = false
		}
	}

	var next entity.FormData
	if c.deferred && c.inFlight == 0 && c.consent && !c.closed {
		c.deferred = false
		if c.dirty {
			next = c.beginSaveLocked()
		}
	}
	if next == nil {
		c.settleLocked()
	}
	c.mu.Unlock()

	if stale {
		// the next snapshot, if any, was taken after the clear
		c.purge(c.ctx)
		return next
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("auto-save failed")
		return next
	}
	if c.opts.OnSave != nil {
		c.opts.OnSave(snapshot)
	}
	return next
}

func (c *Coordinator) purge(ctx context.Context) {
	reqCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	_, err := c.client.DeleteDraft(reqCtx, c.opts.FormType, c.opts.Key)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.errMsg = ErrMsgClear
		c.logger.Warn().Err(err).Msg("clearing saved draft failed")
		return
	}
	c.lastSaved = nil
	c.dirty = false
	c.errMsg = ""
}

func sameData(a, b entity.FormData) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
