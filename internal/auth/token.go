// Package auth keeps the Google OAuth2 token used to save drafts to Gmail.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// ErrTokenNotSet indicates no OAuth token is available.
var ErrTokenNotSet = errors.New("no token defined")

// ErrInvalidState indicates an unknown or expired OAuth state parameter.
var ErrInvalidState = errors.New("invalid or expired state parameter")

const stateTTL = 5 * time.Minute

// Store holds the OAuth2 token, optionally mirrored to a JSON file.
type Store struct {
	mu          sync.RWMutex
	cfg         *oauth2.Config
	token       *oauth2.Token
	persistPath string
	states      map[string]time.Time
	now         func() time.Time
}

// Open creates a Store and loads a previously saved token from persistPath.
// A missing file is not an error; an empty path disables persistence.
func Open(cfg *oauth2.Config, persistPath string) (*Store, error) {
	s := &Store{
		cfg:         cfg,
		persistPath: persistPath,
		states:      make(map[string]time.Time),
		now:         time.Now,
	}
	if persistPath == "" {
		return s, nil
	}

	raw, err := os.ReadFile(persistPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("Token file %s doesn't exist, it will be written after authorization", persistPath)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile failed: %w", err)
	}

	token := &oauth2.Token{}
	if err := json.Unmarshal(raw, token); err != nil {
		return nil, fmt.Errorf("json.Unmarshal failed: %w", err)
	}
	s.token = token

	return s, nil
}

// AuthCodeURL returns the consent page URL with a fresh single-use state.
func (s *Store) AuthCodeURL() (string, error) {
	state, err := s.newState()
	if err != nil {
		return "", fmt.Errorf("newState failed: %w", err)
	}

	return s.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// CallbackURL is the redirect URL registered with Google.
func (s *Store) CallbackURL() string {
	return s.cfg.RedirectURL
}

func (s *Store) newState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read failed: %w", err)
	}
	state := base64.URLEncoding.EncodeToString(b)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for st, exp := range s.states {
		if exp.Before(now) {
			delete(s.states, st)
		}
	}
	s.states[state] = now.Add(stateTTL)

	return state, nil
}

func (s *Store) consumeState(state string) bool {
	if state == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.states[state]
	if !ok {
		return false
	}
	delete(s.states, state)

	return !s.now().After(exp)
}

// Exchange trades an authorization code for a token after checking state.
func (s *Store) Exchange(ctx context.Context, code, state string) error {
	if !s.consumeState(state) {
		return ErrInvalidState
	}

	tok, err := s.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("cfg.Exchange failed: %w", err)
	}

	s.set(tok)

	return nil
}

// Token returns the current token.
func (s *Store) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == nil {
		return nil, ErrTokenNotSet
	}

	return s.token, nil
}

func (s *Store) set(tok *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = tok
}

// HTTPClient returns a client authorized with the current token. Refreshed
// tokens are written back to the store.
func (s *Store) HTTPClient(ctx context.Context) (*http.Client, error) {
	tok, err := s.Token()
	if err != nil {
		return nil, err
	}

	src := &recordingSource{
		store: s,
		src:   s.cfg.TokenSource(ctx, tok),
	}

	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}

type recordingSource struct {
	store *Store
	src   oauth2.TokenSource
}

func (r *recordingSource) Token() (*oauth2.Token, error) {
	tok, err := r.src.Token()
	if err != nil {
		return nil, err
	}
	r.store.set(tok)

	return tok, nil
}

// Persist writes the token to disk. It is a no-op without a path or token.
func (s *Store) Persist() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.persistPath == "" || s.token == nil {
		return nil
	}

	if dir := filepath.Dir(s.persistPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("os.MkdirAll failed: %w", err)
		}
	}

	raw, err := json.Marshal(s.token)
	if err != nil {
		return fmt.Errorf("json.Marshal failed: %w", err)
	}

	if err := os.WriteFile(s.persistPath, raw, 0600); err != nil {
		return fmt.Errorf("os.WriteFile failed: %w", err)
	}

	return nil
}
