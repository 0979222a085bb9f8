// Package gservice saves generated drafts into the user's Gmail drafts.
package gservice

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/hal9000y/email-drafter/internal/format"
)

const gmailUserID = "me"

type httpClientSource interface {
	HTTPClient(ctx context.Context) (*http.Client, error)
}

// NewGmail creates a Gmail client authorized by tok. Extra options are passed
// to gmail.NewService after the HTTP client.
func NewGmail(tok httpClientSource, opts ...option.ClientOption) *GMail {
	return &GMail{
		tok:  tok,
		opts: opts,
	}
}

// GMail wraps the Gmail drafts API.
type GMail struct {
	tok  httpClientSource
	opts []option.ClientOption
}

// CreateDraft stores an RFC 822 message as a new Gmail draft.
func (m *GMail) CreateDraft(ctx context.Context, rfc822 []byte) (*gmail.Draft, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	draft := &gmail.Draft{
		Message: &gmail.Message{
			Raw: base64.URLEncoding.EncodeToString(rfc822),
		},
	}

	created, err := svc.Users.Drafts.Create(gmailUserID, draft).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("drafts.Create failed: %w", err)
	}

	return created, nil
}

func (m *GMail) newSvc(ctx context.Context) (*gmail.Service, error) {
	clt, err := m.tok.HTTPClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("tok.HTTPClient failed: %w", err)
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(clt)}, m.opts...)

	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService failed: %w", err)
	}

	return svc, nil
}

// SaveDraft composes a plain text message from a generated draft and stores
// it as a Gmail draft.
func (m *GMail) SaveDraft(ctx context.Context, to, subject, body string) (*gmail.Draft, error) {
	raw, err := format.FromDraft(to, subject, body).RFC822()
	if err != nil {
		return nil, fmt.Errorf("RFC822 failed: %w", err)
	}

	return m.CreateDraft(ctx, raw)
}
