package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/email-drafter/internal/drafter"
)

type DraftEmailRequest struct {
	Note      string `json:"note" jsonschema:"rough notes describing the email to write"`
	Tone      string `json:"tone,omitempty" jsonschema:"tone of the email: formal, casual or friendly"`
	Recipient string `json:"recipient,omitempty" jsonschema:"who the email is addressed to"`
}

type DraftEmailResponse struct {
	Draft     string `json:"draft" jsonschema:"the generated email"`
	HistoryID string `json:"history_id" jsonschema:"ID of the history entry holding the draft"`
}

type draftEmailCtrl interface {
	SubmitForm(ctx context.Context, f drafter.Form) (drafter.State, drafter.HistoryEntry, error)
}

func NewDraftEmail(ctrl draftEmailCtrl) *DraftEmail {
	return &DraftEmail{
		ctrl: ctrl,
	}
}

type DraftEmail struct {
	ctrl draftEmailCtrl
}

func (t *DraftEmail) DraftEmail(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input DraftEmailRequest,
) (*mcp.CallToolResult, DraftEmailResponse, error) {
	tone := drafter.ToneFormal
	if input.Tone != "" {
		var err error
		if tone, err = drafter.ParseTone(input.Tone); err != nil {
			return nil, DraftEmailResponse{}, err
		}
	}

	st, entry, err := t.ctrl.SubmitForm(ctx, drafter.Form{
		Note:      input.Note,
		Tone:      tone,
		Recipient: input.Recipient,
	})
	if err != nil {
		return nil, DraftEmailResponse{}, fmt.Errorf("ctrl.SubmitForm failed: %w", err)
	}

	if st.Phase != drafter.PhaseShown {
		return nil, DraftEmailResponse{}, errors.New(st.Reason)
	}

	return nil, DraftEmailResponse{
		Draft:     st.Draft,
		HistoryID: entry.ID,
	}, nil
}
