package drafter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

var (
	// ErrEmptyNote is returned when a submission is attempted with a blank note.
	ErrEmptyNote = errors.New("note is empty")
	// ErrBusy is returned while a submission is in flight.
	ErrBusy = errors.New("a draft is already being generated")
	// ErrEntryNotFound is returned when selecting an unknown history entry.
	ErrEntryNotFound = errors.New("history entry not found")
	// ErrNothingToCopy is returned when copying without a draft.
	ErrNothingToCopy = errors.New("no draft to copy")
)

// CopiedFor is how long the copied indicator stays on after a copy.
const CopiedFor = 2 * time.Second

type draftSvc interface {
	Draft(ctx context.Context, req DraftRequest) (string, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithClipboard sets the function used to write to the system clipboard.
func WithClipboard(write func(text string) error) Option {
	return func(c *Controller) { c.clip = write }
}

// WithDarkTheme sets the initial theme.
func WithDarkTheme(dark bool) Option {
	return func(c *Controller) { c.dark = dark }
}

// WithHistoryCapacity overrides HistoryCapacity.
func WithHistoryCapacity(n int) Option {
	return func(c *Controller) { c.history = NewHistory(n) }
}

// WithForm sets the initial form values.
func WithForm(f Form) Option {
	return func(c *Controller) { c.form = f }
}

// Controller owns the form, the submission state, the history and the theme.
// All methods are safe for concurrent use.
type Controller struct {
	mu  sync.Mutex
	svc draftSvc

	clip func(text string) error
	now  func() time.Time

	form        Form
	state       State
	history     *History
	dark        bool
	copiedUntil time.Time
	gen         uint64

	// rev changes on every state transition.
	rev uint64
}

// NewController creates a Controller sending requests to svc.
func NewController(svc draftSvc, opts ...Option) *Controller {
	c := &Controller{
		svc:     svc,
		now:     time.Now,
		clip:    func(string) error { return errors.New("clipboard not available") },
		form:    NewForm(),
		state:   idle(),
		history: NewHistory(HistoryCapacity),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Submission is an accepted request waiting to be executed.
type Submission struct {
	gen     uint64
	Request DraftRequest
}

// Outcome is the service response for a Submission.
type Outcome struct {
	gen   uint64
	req   DraftRequest
	Draft string
	Err   error
}

// Begin validates the current form and moves to PhaseSubmitting.
func (c *Controller) Begin() (Submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.beginLocked()
}

// BeginForm replaces the form with f and begins a submission. The form is left
// untouched when a submission is already in flight.
func (c *Controller) BeginForm(f Form) (Submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Loading() {
		return Submission{}, ErrBusy
	}
	c.form = f

	return c.beginLocked()
}

func (c *Controller) beginLocked() (Submission, error) {
	if c.state.Loading() {
		return Submission{}, ErrBusy
	}

	req, ok := c.form.Request()
	if !ok {
		return Submission{}, ErrEmptyNote
	}

	c.gen++
	c.setStateLocked(submitting())

	return Submission{gen: c.gen, Request: req}, nil
}

// Execute performs the service call for sub. It does not touch controller
// state and may run on any goroutine. A panicking service is reported as an
// error so the submission still finishes.
func (c *Controller) Execute(ctx context.Context, sub Submission) (out Outcome) {
	out = Outcome{gen: sub.gen, req: sub.Request}
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("draft service panicked: %v", r)
		}
	}()

	out.Draft, out.Err = c.svc.Draft(ctx, sub.Request)

	return out
}

// Finish applies an Outcome and leaves PhaseSubmitting. Outcomes from an older
// generation are discarded. On success the new history entry is returned.
func (c *Controller) Finish(out Outcome) (State, HistoryEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if out.gen != c.gen || !c.state.Loading() {
		return c.state, HistoryEntry{}
	}

	err := out.Err
	if err == nil && out.Draft == "" {
		err = &ResponseError{Payload: `""`}
	}

	var respErr *ResponseError
	switch {
	case err == nil:
		entry := newHistoryEntry(out.req, out.Draft, c.now())
		c.history.Push(entry)
		c.setStateLocked(shown(out.Draft))
		return c.state, entry
	case errors.As(err, &respErr):
		c.setStateLocked(failed(ErrorMarker + respErr.Payload))
	default:
		log.Println(fmt.Errorf("svc.Draft failed: %w", err))
		c.setStateLocked(failed(NetworkErrorMessage))
	}

	return c.state, HistoryEntry{}
}

// Submit runs a full submission on the calling goroutine.
func (c *Controller) Submit(ctx context.Context) (State, error) {
	sub, err := c.Begin()
	if err != nil {
		return c.State(), err
	}

	st, _ := c.Finish(c.Execute(ctx, sub))

	return st, nil
}

// SubmitForm replaces the form with f and runs a full submission.
func (c *Controller) SubmitForm(ctx context.Context, f Form) (State, HistoryEntry, error) {
	sub, err := c.BeginForm(f)
	if err != nil {
		return c.State(), HistoryEntry{}, err
	}

	st, entry := c.Finish(c.Execute(ctx, sub))

	return st, entry, nil
}

// State returns the current submission state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Form returns the current form values.
func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.form
}

// SetNote updates the note field.
func (c *Controller) SetNote(note string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.form.Note = note
}

// SetTone updates the tone field.
func (c *Controller) SetTone(t Tone) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.form.Tone = t
}

// SetRecipient updates the recipient field.
func (c *Controller) SetRecipient(recipient string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.form.Recipient = recipient
}

// History returns the stored entries, newest first.
func (c *Controller) History() []HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.history.Entries()
}

// Entry returns the history entry with the given ID.
func (c *Controller) Entry(id string) (HistoryEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.history.Find(id)
}

// Select restores the form and draft from the history entry with the given
// ID. History itself is not reordered. Selection is refused while a
// submission is in flight.
func (c *Controller) Select(id string) (HistoryEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.history.Find(id)
	if !ok {
		return HistoryEntry{}, ErrEntryNotFound
	}

	return e, c.restoreLocked(e)
}

// SelectAt is Select by position, counting from the newest entry.
func (c *Controller) SelectAt(i int) (HistoryEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.history.At(i)
	if !ok {
		return HistoryEntry{}, ErrEntryNotFound
	}

	return e, c.restoreLocked(e)
}

func (c *Controller) restoreLocked(e HistoryEntry) error {
	if c.state.Loading() {
		return ErrBusy
	}

	c.form = Form{Note: e.Note, Tone: e.Tone, Recipient: e.Recipient}
	c.setStateLocked(shown(e.Draft))

	return nil
}

// Copy writes the result pane text, a draft or an error message, to the
// clipboard and turns the copied indicator on for CopiedFor. A copy while the
// indicator is on restarts the window. Clipboard failures are logged and
// returned; the indicator stays as it was. If the state changes while the
// clipboard is written, the indicator is not turned on.
func (c *Controller) Copy() error {
	c.mu.Lock()
	if !c.state.Copyable() {
		c.mu.Unlock()
		return ErrNothingToCopy
	}
	text, rev := c.state.Text(), c.rev
	c.mu.Unlock()

	if err := c.clip(text); err != nil {
		err = fmt.Errorf("clipboard write failed: %w", err)
		log.Println(err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rev == rev {
		c.copiedUntil = c.now().Add(CopiedFor)
	}

	return nil
}

// Copied reports whether the copied indicator is on.
func (c *Controller) Copied() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.copiedLocked()
}

func (c *Controller) copiedLocked() bool {
	return !c.copiedUntil.IsZero() && c.now().Before(c.copiedUntil)
}

// Dark reports whether the dark theme is selected.
func (c *Controller) Dark() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.dark
}

// ToggleTheme flips the theme and returns the new value of Dark.
func (c *Controller) ToggleTheme() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dark = !c.dark

	return c.dark
}

func (c *Controller) setStateLocked(st State) {
	c.state = st
	c.copiedUntil = time.Time{}
	c.rev++
}
