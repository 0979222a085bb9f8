package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/email-drafter/internal/drafter"
	"github.com/hal9000y/email-drafter/internal/format"
)

type SaveGmailDraftRequest struct {
	HistoryID string `json:"history_id" jsonschema:"ID of the history entry to save"`
	Subject   string `json:"subject,omitempty" jsonschema:"subject line, derived from the notes when empty"`
}

type SaveGmailDraftResponse struct {
	DraftID   string `json:"draft_id" jsonschema:"ID of the created Gmail draft"`
	MessageID string `json:"message_id" jsonschema:"ID of the draft message"`
}

type gmailSvc interface {
	SaveDraft(ctx context.Context, to, subject, body string) (*gmail.Draft, error)
}

type entryLookup interface {
	Entry(id string) (drafter.HistoryEntry, bool)
}

func NewSaveGmailDraft(svc gmailSvc, entries entryLookup) *SaveGmailDraft {
	return &SaveGmailDraft{
		svc:     svc,
		entries: entries,
	}
}

type SaveGmailDraft struct {
	svc     gmailSvc
	entries entryLookup
}

func (t *SaveGmailDraft) SaveGmailDraft(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SaveGmailDraftRequest,
) (*mcp.CallToolResult, SaveGmailDraftResponse, error) {
	entry, ok := t.entries.Entry(input.HistoryID)
	if !ok {
		return nil, SaveGmailDraftResponse{}, fmt.Errorf("history entry %q: %w", input.HistoryID, drafter.ErrEntryNotFound)
	}

	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		subject = format.SubjectFromNote(entry.Note)
	}

	draft, err := t.svc.SaveDraft(ctx, entry.Recipient, subject, entry.Draft)
	if err != nil {
		return nil, SaveGmailDraftResponse{}, fmt.Errorf("svc.SaveDraft failed: %w", err)
	}

	resp := SaveGmailDraftResponse{DraftID: draft.Id}
	if draft.Message != nil {
		resp.MessageID = draft.Message.Id
	}

	return nil, resp, nil
}
