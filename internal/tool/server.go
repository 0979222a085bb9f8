package tool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type drafterCtrl interface {
	draftEmailCtrl
	listHistoryCtrl
}

// NewServer creates an MCP server with the drafting tools.
func NewServer(ctrl drafterCtrl) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "email-drafter", Version: "v1.0.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "draft_email",
		Description: "Turn rough notes into a polished email in the requested tone",
	}, NewDraftEmail(ctrl).DraftEmail)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_history",
		Description: "List the most recent generated drafts, newest first",
	}, NewListHistory(ctrl).ListHistory)

	return server
}

// AddGmailTools registers the tools that need an authorized Gmail account.
func AddGmailTools(server *mcp.Server, svc gmailSvc, entries entryLookup) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_gmail_draft",
		Description: "Save a generated draft from history into Gmail drafts",
	}, NewSaveGmailDraft(svc, entries).SaveGmailDraft)
}
