package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

type store interface {
	AuthCodeURL() (string, error)
	Exchange(ctx context.Context, code, state string) error
	Token() (*oauth2.Token, error)
}

// HTTPHandler drives the OAuth2 consent flow:
//
//	?redirect=1        sends the browser to the Google consent page
//	?code=..&state=..  completes the flow
//	otherwise          reports the token status
type HTTPHandler struct {
	store  store
	onAuth func()
}

// NewHTTPHandler creates the handler. onAuth, if not nil, runs after a
// successful exchange.
func NewHTTPHandler(s store, onAuth func()) *HTTPHandler {
	return &HTTPHandler{store: s, onAuth: onAuth}
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("redirect") != "" {
		u, err := h.store.AuthCodeURL()
		if err != nil {
			log.Println(fmt.Errorf("store.AuthCodeURL failed: %w", err))
			http.Error(w, "Unable to start authorization", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, u, http.StatusFound)
		return
	}

	if code := q.Get("code"); code != "" {
		if err := h.store.Exchange(r.Context(), code, q.Get("state")); err != nil {
			log.Println(fmt.Errorf("store.Exchange failed: %w", err))
			http.Error(w, "Unable to authorize provided code", http.StatusBadRequest)
			return
		}
		if h.onAuth != nil {
			h.onAuth()
		}
		http.Redirect(w, r, r.URL.EscapedPath(), http.StatusFound)
		return
	}

	t, err := h.store.Token()
	if errors.Is(err, ErrTokenNotSet) {
		http.Error(w, "Token not found", http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "Token: %s, expires: %s", maskLeft(t.AccessToken), t.Expiry.Format(time.RFC3339))
}

func maskLeft(s string) string {
	rs := []rune(s)
	for i := 0; i < len(rs)-4; i++ {
		rs[i] = 'X'
	}
	return string(rs)
}
