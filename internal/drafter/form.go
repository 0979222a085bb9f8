// Package drafter holds the state of the email drafting form: the form fields,
// the submission state machine, the draft history and the theme flag.
package drafter

import (
	"fmt"
	"strings"
)

// Tone is the stylistic parameter sent with each draft request.
type Tone string

const (
	ToneFormal   Tone = "formal"
	ToneCasual   Tone = "casual"
	ToneFriendly Tone = "friendly"
)

// Tones lists the supported tones in display order.
var Tones = []Tone{ToneFormal, ToneCasual, ToneFriendly}

// ParseTone returns the tone named by s.
func ParseTone(s string) (Tone, error) {
	t := Tone(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tones {
		if t == known {
			return t, nil
		}
	}

	return "", fmt.Errorf("unknown tone %q", s)
}

// Next returns the tone following t in display order, wrapping around.
func (t Tone) Next() Tone {
	return t.shift(1)
}

// Prev returns the tone preceding t in display order, wrapping around.
func (t Tone) Prev() Tone {
	return t.shift(-1)
}

func (t Tone) shift(delta int) Tone {
	for i, known := range Tones {
		if known == t {
			return Tones[(i+delta+len(Tones))%len(Tones)]
		}
	}
	return ToneFormal
}

// Label is the capitalized tone name.
func (t Tone) Label() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// DraftRequest is the body posted to the drafting endpoint.
type DraftRequest struct {
	Note      string `json:"note"`
	Tone      Tone   `json:"tone"`
	Recipient string `json:"recipient"`
}

// Form holds the current values of the input fields.
type Form struct {
	Note      string
	Tone      Tone
	Recipient string
}

// NewForm returns an empty form with the default tone.
func NewForm() Form {
	return Form{Tone: ToneFormal}
}

// WordCount counts whitespace separated words in the note.
func (f Form) WordCount() int {
	return len(strings.Fields(f.Note))
}

// Empty reports whether the note is blank once trimmed.
func (f Form) Empty() bool {
	return strings.TrimSpace(f.Note) == ""
}

// Request builds the request for the current values; ok is false when the note is blank.
func (f Form) Request() (req DraftRequest, ok bool) {
	note := strings.TrimSpace(f.Note)
	if note == "" {
		return DraftRequest{}, false
	}

	tone := f.Tone
	if tone == "" {
		tone = ToneFormal
	}

	return DraftRequest{Note: note, Tone: tone, Recipient: f.Recipient}, true
}
