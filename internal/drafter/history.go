package drafter

import (
	"time"

	"github.com/google/uuid"
)

// HistoryCapacity is the number of drafts kept in memory.
const HistoryCapacity = 5

// TimestampLayout formats HistoryEntry.Timestamp.
const TimestampLayout = "1/2/2006, 3:04:05 PM"

// HistoryEntry is a snapshot of a successful request and its draft.
type HistoryEntry struct {
	ID        string    `json:"id" jsonschema:"entry ID"`
	Note      string    `json:"note" jsonschema:"notes the draft was generated from"`
	Tone      Tone      `json:"tone" jsonschema:"requested tone"`
	Recipient string    `json:"recipient,omitempty" jsonschema:"requested recipient"`
	Draft     string    `json:"draft" jsonschema:"generated email body"`
	Timestamp string    `json:"timestamp" jsonschema:"human readable creation time"`
	CreatedAt time.Time `json:"-"`
}

func newHistoryEntry(req DraftRequest, draft string, now time.Time) HistoryEntry {
	return HistoryEntry{
		ID:        newEntryID(),
		Note:      req.Note,
		Tone:      req.Tone,
		Recipient: req.Recipient,
		Draft:     draft,
		Timestamp: now.Format(TimestampLayout),
		CreatedAt: now,
	}
}

// newEntryID returns a UUIDv7, whose leading bits encode the creation time.
func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// History is a fixed capacity ring buffer of entries. Inserting into a full
// buffer overwrites the oldest entry. It is not safe for concurrent use.
type History struct {
	buf  []HistoryEntry
	next int
	size int
}

// NewHistory creates a History holding at most capacity entries.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]HistoryEntry, capacity)}
}

// Push inserts e as the newest entry.
func (h *History) Push(e HistoryEntry) {
	h.buf[h.next] = e
	h.next = (h.next + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	return h.size
}

// At returns the i-th entry counting from the newest.
func (h *History) At(i int) (HistoryEntry, bool) {
	if i < 0 || i >= h.size {
		return HistoryEntry{}, false
	}
	idx := (h.next - 1 - i + 2*len(h.buf)) % len(h.buf)
	return h.buf[idx], true
}

// Entries returns a copy of the stored entries, newest first.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, 0, h.size)
	for i := 0; i < h.size; i++ {
		e, _ := h.At(i)
		out = append(out, e)
	}
	return out
}

// Find returns the entry with the given ID.
func (h *History) Find(id string) (HistoryEntry, bool) {
	for i := 0; i < h.size; i++ {
		if e, _ := h.At(i); e.ID == id {
			return e, true
		}
	}
	return HistoryEntry{}, false
}
