package tool_test

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/email-drafter/internal/drafter"
)

type draftSvcMock struct {
	DraftFunc func(ctx context.Context, req drafter.DraftRequest) (string, error)
}

func (m *draftSvcMock) Draft(ctx context.Context, req drafter.DraftRequest) (string, error) {
	return m.DraftFunc(ctx, req)
}

type gmailSvcMock struct {
	SaveDraftFunc func(ctx context.Context, to, subject, body string) (*gmail.Draft, error)
}

func (m *gmailSvcMock) SaveDraft(ctx context.Context, to, subject, body string) (*gmail.Draft, error) {
	return m.SaveDraftFunc(ctx, to, subject, body)
}

func connect(t *testing.T, server *mcp.Server) *mcp.ClientSession {
	t.Helper()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ctx := context.Background()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = clientSession.Close() })

	return clientSession
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content should be text")

	return text.Text
}
