package drafter

// Texts used by the result pane and the submit control.
const (
	PlaceholderTitle = "Generated email will appear here"
	HintEmptyNote    = "Fill out the form and hit generate!"
	HintReady        = "Your notes are ready, hit generate!"

	SubmitLabel     = "Generate Email"
	SubmittingLabel = "Drafting..."
)

// View is a render-ready snapshot of the controller.
type View struct {
	Form  Form
	Phase Phase

	// Text is the draft or the failure reason.
	Text     string
	Copyable bool
	Copied   bool

	// Placeholder and Hint are set when there is nothing to show.
	Placeholder string
	Hint        string

	SubmitLabel   string
	SubmitEnabled bool
	WordCount     int
	Dark          bool
	HistoryLen    int
}

// View captures everything a front end needs to render the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Form:          c.form,
		Phase:         c.state.Phase,
		Text:          c.state.Text(),
		Copyable:      c.state.Copyable(),
		Copied:        c.state.Copyable() && c.copiedLocked(),
		SubmitLabel:   SubmitLabel,
		SubmitEnabled: !c.state.Loading(),
		WordCount:     c.form.WordCount(),
		Dark:          c.dark,
		HistoryLen:    c.history.Len(),
	}

	if c.state.Loading() {
		v.SubmitLabel = SubmittingLabel
	}

	if v.Text == "" {
		v.Placeholder = PlaceholderTitle
		v.Hint = HintReady
		if c.form.Empty() {
			v.Hint = HintEmptyNote
		}
	}

	return v
}
