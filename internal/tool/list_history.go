package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/email-drafter/internal/drafter"
)

type ListHistoryRequest struct{}

type ListHistoryResponse struct {
	Entries      []drafter.HistoryEntry `json:"entries" jsonschema:"generated drafts, newest first"`
	TotalResults int                    `json:"total_results" jsonschema:"number of entries returned"`
}

type listHistoryCtrl interface {
	History() []drafter.HistoryEntry
}

func NewListHistory(ctrl listHistoryCtrl) *ListHistory {
	return &ListHistory{
		ctrl: ctrl,
	}
}

type ListHistory struct {
	ctrl listHistoryCtrl
}

func (t *ListHistory) ListHistory(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListHistoryRequest,
) (*mcp.CallToolResult, ListHistoryResponse, error) {
	entries := t.ctrl.History()

	return nil, ListHistoryResponse{
		Entries:      entries,
		TotalResults: len(entries),
	}, nil
}
