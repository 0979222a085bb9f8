package tui_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/email-drafter/internal/drafter"
	"github.com/hal9000y/email-drafter/internal/tui"
)

type draftSvcMock struct {
	DraftFunc func(ctx context.Context, req drafter.DraftRequest) (string, error)
	calls     []drafter.DraftRequest
}

func (m *draftSvcMock) Draft(ctx context.Context, req drafter.DraftRequest) (string, error) {
	m.calls = append(m.calls, req)
	return m.DraftFunc(ctx, req)
}

func echoSvc() *draftSvcMock {
	return &draftSvcMock{
		DraftFunc: func(_ context.Context, req drafter.DraftRequest) (string, error) {
			return "Draft for: " + req.Note, nil
		},
	}
}

type gmailSvcMock struct {
	SaveDraftFunc func(ctx context.Context, to, subject, body string) (*gmail.Draft, error)
}

func (m *gmailSvcMock) SaveDraft(ctx context.Context, to, subject, body string) (*gmail.Draft, error) {
	return m.SaveDraftFunc(ctx, to, subject, body)
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

var (
	keyGenerate = tea.KeyMsg{Type: tea.KeyCtrlG}
	keyCopy     = tea.KeyMsg{Type: tea.KeyCtrlY}
	keySave     = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyTheme    = tea.KeyMsg{Type: tea.KeyCtrlT}
	keyHistory  = tea.KeyMsg{Type: tea.KeyCtrlO}
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyRight    = tea.KeyMsg{Type: tea.KeyRight}
	keyDown     = tea.KeyMsg{Type: tea.KeyDown}
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newModel(ctrl *drafter.Controller, opts ...tui.Option) tea.Model {
	m, _ := tui.New(ctrl, opts...).Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func send(m tea.Model, msgs ...tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		m, cmd = m.Update(msg)
	}
	return m, cmd
}

// run executes cmd and every command of a batch, returning the produced messages.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}

	return []tea.Msg{msg}
}

func generate(t *testing.T, m tea.Model) tea.Model {
	t.Helper()

	m, cmd := send(m, keyGenerate)
	require.NotNil(t, cmd)

	m, _ = send(m, run(cmd)...)
	return m
}

func TestGenerate(t *testing.T) {
	svc := echoSvc()
	ctrl := drafter.NewController(svc)
	m := newModel(ctrl)

	assert.Contains(t, m.View(), drafter.HintEmptyNote)

	m, _ = send(m, runes("ask boss for Friday off"))
	assert.Equal(t, "ask boss for Friday off", ctrl.Form().Note)
	assert.Contains(t, m.View(), drafter.HintReady)
	assert.Contains(t, m.View(), "5 words")

	m, _ = send(m, keyTab, keyRight, keyTab, runes("boss@co.com"))
	assert.Equal(t, drafter.ToneCasual, ctrl.Form().Tone)
	assert.Equal(t, "boss@co.com", ctrl.Form().Recipient)

	m, cmd := send(m, keyGenerate)
	require.NotNil(t, cmd)
	assert.True(t, ctrl.State().Loading())
	assert.Contains(t, m.View(), drafter.SubmittingLabel)

	_, again := send(m, keyGenerate)
	assert.Nil(t, again)

	m, _ = send(m, run(cmd)...)
	require.Len(t, svc.calls, 1)
	assert.Equal(t, drafter.DraftRequest{
		Note:      "ask boss for Friday off",
		Tone:      drafter.ToneCasual,
		Recipient: "boss@co.com",
	}, svc.calls[0])

	assert.Equal(t, drafter.PhaseShown, ctrl.State().Phase)
	view := m.View()
	assert.Contains(t, view, "Draft for: ask boss for Friday off")
	assert.Contains(t, view, drafter.SubmitLabel)
	assert.Contains(t, view, "ctrl+y to copy")
}

func TestGenerateEmptyNote(t *testing.T) {
	svc := echoSvc()
	ctrl := drafter.NewController(svc)
	m := newModel(ctrl)

	m, _ = send(m, runes("   "))
	_, cmd := send(m, keyGenerate)

	assert.Nil(t, cmd)
	assert.Empty(t, svc.calls)
	assert.Equal(t, drafter.PhaseIdle, ctrl.State().Phase)
}

func TestGenerateFromSubmitButton(t *testing.T) {
	svc := echoSvc()
	ctrl := drafter.NewController(svc)
	m := newModel(ctrl)

	m, _ = send(m, runes("hello"), keyTab, keyTab, keyTab)
	m, cmd := send(m, keyEnter)
	require.NotNil(t, cmd)

	send(m, run(cmd)...)
	assert.Len(t, svc.calls, 1)
}

func TestGenerateNetworkError(t *testing.T) {
	svc := &draftSvcMock{
		DraftFunc: func(context.Context, drafter.DraftRequest) (string, error) {
			return "", errors.New("dial tcp: connection refused")
		},
	}
	var copied []string
	ctrl := drafter.NewController(svc, drafter.WithClipboard(func(text string) error {
		copied = append(copied, text)
		return nil
	}))
	m := newModel(ctrl)

	m, _ = send(m, runes("hello"))
	m = generate(t, m)

	assert.Equal(t, drafter.PhaseFailed, ctrl.State().Phase)
	assert.Contains(t, m.View(), drafter.NetworkErrorMessage)
	assert.Contains(t, m.View(), "ctrl+y to copy")

	m, cmd := send(m, keyCopy)
	require.NotNil(t, cmd)
	assert.Equal(t, []string{drafter.NetworkErrorMessage}, copied)
	assert.Contains(t, m.View(), "✓ Copied!")
}

func TestCopy(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 9, 14, 12, 0, 0, 0, time.UTC)}
	var copied []string

	ctrl := drafter.NewController(echoSvc(),
		drafter.WithClock(clock.Now),
		drafter.WithClipboard(func(text string) error {
			copied = append(copied, text)
			return nil
		}),
	)
	m := newModel(ctrl)

	m, _ = send(m, runes("hello"))
	m = generate(t, m)

	m, cmd := send(m, keyCopy)
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"Draft for: hello"}, copied)
	assert.Contains(t, m.View(), "✓ Copied!")

	clock.now = clock.now.Add(drafter.CopiedFor)
	assert.NotContains(t, m.View(), "✓ Copied!")
}

func TestHistorySelect(t *testing.T) {
	ctrl := drafter.NewController(echoSvc())
	m := newModel(ctrl)

	m, _ = send(m, runes("first note"))
	m = generate(t, m)
	m, _ = send(m, runes(" and more"))
	m = generate(t, m)
	require.Len(t, ctrl.History(), 2)

	m, _ = send(m, keyHistory)
	assert.Contains(t, m.View(), "History")

	m, _ = send(m, keyDown, keyEnter)
	assert.Equal(t, "first note", ctrl.Form().Note)
	assert.Equal(t, "Draft for: first note", ctrl.State().Draft)
	assert.NotContains(t, m.View(), "History")
	assert.Len(t, ctrl.History(), 2)

	m, _ = send(m, keyHistory, keyEsc)
	assert.NotContains(t, m.View(), "History")
}

func TestHistoryEmpty(t *testing.T) {
	m := newModel(drafter.NewController(echoSvc()))

	m, _ = send(m, keyHistory)
	assert.NotContains(t, m.View(), "History")
}

func TestTheme(t *testing.T) {
	ctrl := drafter.NewController(echoSvc(), drafter.WithDarkTheme(true))
	m := newModel(ctrl)

	m, _ = send(m, keyTheme)
	assert.False(t, ctrl.Dark())

	send(m, keyTheme)
	assert.True(t, ctrl.Dark())
}

func TestSaveGmail(t *testing.T) {
	type saved struct{ to, subject, body string }
	var got []saved

	gmailSvc := &gmailSvcMock{
		SaveDraftFunc: func(_ context.Context, to, subject, body string) (*gmail.Draft, error) {
			got = append(got, saved{to: to, subject: subject, body: body})
			return &gmail.Draft{Id: "r-001"}, nil
		},
	}

	ctrl := drafter.NewController(echoSvc())
	m := newModel(ctrl, tui.WithGmail(gmailSvc))

	_, cmd := send(m, keySave)
	assert.Nil(t, cmd, "nothing to save before a draft is shown")

	m, _ = send(m, runes("ask boss for Friday off"), keyTab, keyTab, runes("boss@co.com"))
	m = generate(t, m)

	m, cmd = send(m, keySave)
	require.NotNil(t, cmd)
	m, _ = send(m, run(cmd)...)

	assert.Equal(t, []saved{{to: "boss@co.com", subject: "Ask boss for Friday off", body: "Draft for: ask boss for Friday off"}}, got)
	assert.Contains(t, m.View(), "Saved to Gmail drafts (r-001)")
}

func TestSaveGmailError(t *testing.T) {
	gmailSvc := &gmailSvcMock{
		SaveDraftFunc: func(context.Context, string, string, string) (*gmail.Draft, error) {
			return nil, errors.New("insufficient scope")
		},
	}

	m := newModel(drafter.NewController(echoSvc()), tui.WithGmail(gmailSvc))
	m, _ = send(m, runes("hello"))
	m = generate(t, m)

	m, cmd := send(m, keySave)
	m, _ = send(m, run(cmd)...)

	assert.Contains(t, m.View(), "❌ Gmail: insufficient scope")
}

func TestSaveGmailDisabled(t *testing.T) {
	m := newModel(drafter.NewController(echoSvc()))
	m, _ = send(m, runes("hello"))
	m = generate(t, m)

	m, cmd := send(m, keySave)
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), tui.ErrGmailDisabled.Error())
}

func TestLongNoteKept(t *testing.T) {
	ctrl := drafter.NewController(echoSvc())
	m := newModel(ctrl)

	long := strings.Repeat("word ", 1500)
	send(m, runes(long))

	assert.Equal(t, long, ctrl.Form().Note)
}
