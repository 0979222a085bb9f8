// Package tui is the terminal front end of the email drafter.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/email-drafter/internal/drafter"
	"github.com/hal9000y/email-drafter/internal/format"
)

// ErrGmailDisabled is reported when saving without Gmail credentials.
var ErrGmailDisabled = errors.New("gmail is not configured")

const (
	defaultWidth = 80
	notePrompt   = "Write your rough notes here..."
	noteHeight   = 6
)

type focus int

const (
	focusNote focus = iota
	focusTone
	focusRecipient
	focusSubmit
	focusCount
)

type gmailSvc interface {
	SaveDraft(ctx context.Context, to, subject, body string) (*gmail.Draft, error)
}

type draftDoneMsg struct {
	out drafter.Outcome
}

type copiedExpiredMsg struct{}

type gmailSavedMsg struct {
	draftID string
	err     error
}

// Option configures a Model.
type Option func(*Model)

// WithGmail enables saving the shown draft to Gmail drafts.
func WithGmail(svc gmailSvc) Option {
	return func(m *Model) { m.gmail = svc }
}

// WithContext sets the context passed to the drafting and Gmail calls.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// Model is the Bubble Tea model. Form values live in the controller; the
// widgets mirror them.
type Model struct {
	ctrl  *drafter.Controller
	gmail gmailSvc
	ctx   context.Context

	keys      keyMap
	note      textarea.Model
	recipient textinput.Model
	spinner   spinner.Model
	help      help.Model

	focus         focus
	showHistory   bool
	historyCursor int
	status        string
	width         int
}

// New creates a Model over ctrl, with the widgets filled from its form.
func New(ctrl *drafter.Controller, opts ...Option) Model {
	note := textarea.New()
	note.Placeholder = notePrompt
	note.CharLimit = 0
	note.MaxHeight = 0
	note.ShowLineNumbers = false
	note.SetHeight(noteHeight)
	note.SetWidth(defaultWidth - 4)

	recipient := textinput.New()
	recipient.Placeholder = "e.g. boss@company.com"
	recipient.Prompt = "> "
	recipient.Width = defaultWidth - 6

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := Model{
		ctrl:      ctrl,
		ctx:       context.Background(),
		keys:      defaultKeyMap(),
		note:      note,
		recipient: recipient,
		spinner:   spin,
		help:      help.New(),
		width:     defaultWidth,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.syncWidgets()
	m.note.Focus()

	return m
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width)
		return m, nil
	case spinner.TickMsg:
		if !m.ctrl.State().Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case draftDoneMsg:
		m.ctrl.Finish(msg.out)
		m.status = ""
		return m, nil
	case copiedExpiredMsg:
		return m, nil
	case gmailSavedMsg:
		if msg.err != nil {
			log.Println(fmt.Errorf("gmail.SaveDraft failed: %w", msg.err))
			m.status = "❌ Gmail: " + msg.err.Error()
			return m, nil
		}
		m.status = "Saved to Gmail drafts (" + msg.draftID + ")"
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.showHistory {
			return m.updateHistory(msg)
		}
		return m.updateForm(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Generate):
		return m, m.submit()
	case key.Matches(msg, m.keys.Copy):
		return m, m.copy()
	case key.Matches(msg, m.keys.Save):
		return m, m.save()
	case key.Matches(msg, m.keys.Theme):
		m.ctrl.ToggleTheme()
		return m, nil
	case key.Matches(msg, m.keys.History):
		if m.ctrl.View().HistoryLen > 0 {
			m.showHistory = true
			m.historyCursor = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.Next):
		return m, m.setFocus((m.focus + 1) % focusCount)
	case key.Matches(msg, m.keys.Prev):
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
	}

	switch m.focus {
	case focusTone:
		tone := m.ctrl.Form().Tone
		switch {
		case key.Matches(msg, m.keys.Left):
			m.ctrl.SetTone(tone.Prev())
		case key.Matches(msg, m.keys.Right):
			m.ctrl.SetTone(tone.Next())
		}
		return m, nil
	case focusSubmit:
		if key.Matches(msg, m.keys.Select) {
			return m, m.submit()
		}
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m Model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.ctrl.History())

	switch {
	case key.Matches(msg, m.keys.Close), key.Matches(msg, m.keys.History):
		m.showHistory = false
	case key.Matches(msg, m.keys.Up):
		if m.historyCursor > 0 {
			m.historyCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.historyCursor < n-1 {
			m.historyCursor++
		}
	case key.Matches(msg, m.keys.Select):
		if _, err := m.ctrl.SelectAt(m.historyCursor); err != nil {
			return m, nil
		}
		m.syncWidgets()
		m.showHistory = false
	}

	return m, nil
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.focus {
	case focusNote:
		m.note, cmd = m.note.Update(msg)
		m.ctrl.SetNote(m.note.Value())
	case focusRecipient:
		m.recipient, cmd = m.recipient.Update(msg)
		m.ctrl.SetRecipient(m.recipient.Value())
	}

	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	sub, err := m.ctrl.Begin()
	if err != nil {
		return nil
	}
	m.status = ""

	ctrl, ctx := m.ctrl, m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return draftDoneMsg{out: ctrl.Execute(ctx, sub)}
	})
}

func (m *Model) copy() tea.Cmd {
	if err := m.ctrl.Copy(); err != nil {
		return nil
	}

	return tea.Tick(drafter.CopiedFor, func(time.Time) tea.Msg {
		return copiedExpiredMsg{}
	})
}

func (m *Model) save() tea.Cmd {
	st := m.ctrl.State()
	if st.Phase != drafter.PhaseShown {
		return nil
	}
	if m.gmail == nil {
		m.status = "❌ " + ErrGmailDisabled.Error()
		return nil
	}

	m.status = "Saving to Gmail..."
	f := m.ctrl.Form()
	svc, ctx := m.gmail, m.ctx

	return func() tea.Msg {
		d, err := svc.SaveDraft(ctx, f.Recipient, format.SubjectFromNote(f.Note), st.Draft)
		if err != nil {
			return gmailSavedMsg{err: err}
		}
		return gmailSavedMsg{draftID: d.Id}
	}
}

func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	m.note.Blur()
	m.recipient.Blur()

	switch f {
	case focusNote:
		return m.note.Focus()
	case focusRecipient:
		return m.recipient.Focus()
	}

	return nil
}

func (m *Model) syncWidgets() {
	f := m.ctrl.Form()
	m.note.SetValue(f.Note)
	m.recipient.SetValue(f.Recipient)
}

func (m *Model) resize(width int) {
	if width <= 0 {
		return
	}
	m.width = width
	m.note.SetWidth(width - 4)
	m.recipient.Width = width - 6
	m.help.Width = width
}

func (m Model) View() string {
	v := m.ctrl.View()
	s := newStyles(v.Dark)

	var b strings.Builder

	b.WriteString(s.Title.Render("✉  Email Drafter"))
	b.WriteString("\n")

	b.WriteString(m.label(s, focusNote, "Your notes"))
	b.WriteString("\n")
	b.WriteString(m.note.View())
	b.WriteString("\n")
	b.WriteString(s.Muted.Render(wordCount(v.WordCount)))
	b.WriteString("\n\n")

	b.WriteString(m.label(s, focusTone, "Tone"))
	b.WriteString("  ")
	for _, t := range drafter.Tones {
		if t == v.Form.Tone {
			b.WriteString(s.ToneActive.Render(t.Label()))
		} else {
			b.WriteString(s.Tone.Render(t.Label()))
		}
	}
	b.WriteString("\n\n")

	b.WriteString(m.label(s, focusRecipient, "Recipient"))
	b.WriteString("\n")
	b.WriteString(m.recipient.View())
	b.WriteString("\n\n")

	b.WriteString(m.submitButton(s, v))
	b.WriteString("\n\n")

	b.WriteString(m.resultPane(s, v))
	b.WriteString("\n")

	if m.showHistory {
		b.WriteString(m.historyList(s))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(s.Status.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) label(s styles, f focus, text string) string {
	if m.focus == f && !m.showHistory {
		return s.FocusLabel.Render("› " + text)
	}
	return s.Label.Render("  " + text)
}

func (m Model) submitButton(s styles, v drafter.View) string {
	switch {
	case !v.SubmitEnabled:
		return s.ButtonOff.Render(m.spinner.View() + " " + v.SubmitLabel)
	case m.focus == focusSubmit:
		return s.ButtonFocus.Render(v.SubmitLabel)
	default:
		return s.Button.Render(v.SubmitLabel)
	}
}

func (m Model) resultPane(s styles, v drafter.View) string {
	pane := s.Pane.Width(m.width - 2)

	switch {
	case v.Phase == drafter.PhaseSubmitting:
		return pane.Render(m.spinner.View() + " " + drafter.SubmittingLabel)
	case v.Placeholder != "":
		return pane.Render(s.Muted.Render(v.Placeholder) + "\n" + s.Muted.Render(v.Hint))
	}

	text := s.Draft.Render(v.Text)
	if v.Phase == drafter.PhaseFailed {
		text = s.Error.Render(v.Text)
	}

	footer := s.Muted.Render("ctrl+y to copy")
	if v.Copied {
		footer = s.Copied.Render("✓ Copied!")
	}

	return pane.Render(text + "\n\n" + footer)
}

func (m Model) historyList(s styles) string {
	entries := m.ctrl.History()

	var b strings.Builder
	b.WriteString(s.Label.Render("History"))
	for i, e := range entries {
		line := fmt.Sprintf("%s · %s · %s", e.Timestamp, e.Tone.Label(), truncate(e.Note, m.width-40))
		b.WriteString("\n")
		if i == m.historyCursor {
			b.WriteString(s.HistoryCur.Render("> " + line))
		} else {
			b.WriteString(s.HistoryItem.Render("  " + line))
		}
	}

	return s.Pane.Width(m.width - 2).Render(b.String())
}

func wordCount(n int) string {
	if n == 1 {
		return "1 word"
	}
	return fmt.Sprintf("%d words", n)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if n < 10 {
		n = 10
	}

	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}
