// Email drafter turns rough notes into polished emails, in a terminal UI or
// as MCP tools.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/email-drafter/internal/auth"
	"github.com/hal9000y/email-drafter/internal/config"
	"github.com/hal9000y/email-drafter/internal/draftapi"
	"github.com/hal9000y/email-drafter/internal/drafter"
	"github.com/hal9000y/email-drafter/internal/gservice"
	"github.com/hal9000y/email-drafter/internal/tool"
	"github.com/hal9000y/email-drafter/internal/tui"
)

var clipboardWrite = clipboard.WriteAll

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		panic(fmt.Errorf("config.Load failed: %w", err))
	}

	persistLogs := setupLogger(cfg)
	defer persistLogs()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tone, err := drafter.ParseTone(cfg.Tone)
	if err != nil {
		panic(fmt.Errorf("drafter.ParseTone failed: %w", err))
	}

	draftClt := draftapi.NewClient(cfg.APIBase, nil)
	log.Println("Drafting endpoint", draftClt.URL())

	form := drafter.NewForm()
	form.Tone = tone
	ctrl := drafter.NewController(draftClt,
		drafter.WithForm(form),
		drafter.WithDarkTheme(cfg.Dark()),
		drafter.WithClipboard(clipboardWrite),
	)

	draftT := tool.NewServer(ctrl)
	uiOpts := []tui.Option{tui.WithContext(ctx)}
	mux := http.NewServeMux()

	var ln net.Listener
	if cfg.GmailEnabled() || cfg.MCP {
		ln = mustListen(cfg.HTTPAddr)
	}

	if cfg.GmailEnabled() {
		tok, err := auth.Open(newOauthCfg(cfg, ln.Addr().String()), cfg.OAuthTokenFile)
		if err != nil {
			panic(fmt.Errorf("auth.Open failed: %w", err))
		}

		defer func() {
			log.Println("Persisting token if exists")
			if err := tok.Persist(); err != nil {
				log.Println(fmt.Errorf("tok.Persist failed: %w", err))
			}
		}()

		mux.Handle("/oauth", auth.NewHTTPHandler(tok, func() {
			if err := tok.Persist(); err != nil {
				log.Println(fmt.Errorf("tok.Persist failed: %w", err))
			}
		}))

		gmailSvc := gservice.NewGmail(tok)
		tool.AddGmailTools(draftT, gmailSvc, ctrl)
		uiOpts = append(uiOpts, tui.WithGmail(gmailSvc))

		if _, err := tok.Token(); errors.Is(err, auth.ErrTokenNotSet) {
			openBrowser(tok.CallbackURL())
		}
	} else {
		log.Println("Gmail drafts disabled, set", config.EnvOAuthClientID, "and", config.EnvOAuthClientSecret, "to enable")
	}

	if cfg.MCP {
		mcpHTTP := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server { return draftT }, nil)
		mux.Handle("/mcp", mcpHTTP)
	}

	shutdown := make(chan os.Signal, 1)

	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)

	var errHTTPCh <-chan error
	if ln != nil {
		var stopHTTP func()
		stopHTTP, errHTTPCh = serveHTTP(&http.Server{Handler: mux}, ln)
		defer stopHTTP()
	}

	var errStdioCh <-chan error
	if cfg.Stdio {
		var stopStdio func()
		stopStdio, errStdioCh = serveStdio(draftT)
		defer stopStdio()
	}

	var errUICh <-chan error
	if !cfg.Headless() {
		var stopUI func()
		stopUI, errUICh = serveUI(tui.New(ctrl, uiOpts...))
		defer stopUI()
	}

	select {
	case err := <-errHTTPCh:
		log.Println("Error http server", err)
	case err := <-errStdioCh:
		log.Println("Error stdio", err)
	case err := <-errUICh:
		if err != nil {
			log.Println("Error terminal UI", err)
		}
	case <-shutdown:
		log.Println("Shutdown signal received")
	}
}

func serveUI(m tea.Model) (func(), <-chan error) {
	errUICh := make(chan error, 1)
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		defer close(errUICh)

		if _, err := p.Run(); err != nil {
			errUICh <- fmt.Errorf("p.Run failed: %w", err)
		}
	}()

	return func() {
		p.Quit()

		<-errUICh
		log.Println("Terminal UI stopped")
	}, errUICh
}

func serveStdio(srv *mcp.Server) (func(), <-chan error) {
	errStdioCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer close(errStdioCh)
		log.Println("Starting stdio transport")

		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			err = fmt.Errorf("srv.Run failed: %w", err)
			errStdioCh <- err
		}
	}()

	return func() {
		cancel()

		<-errStdioCh
		log.Println("Stdio transport stopped")
	}, errStdioCh
}

func serveHTTP(srv *http.Server, ln net.Listener) (func(), <-chan error) {
	errHTTPCh := make(chan error, 1)
	go func() {
		defer close(errHTTPCh)

		log.Println("Starting http server on", ln.Addr().String())

		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("srv.Serve failed: %w", err)
			log.Println(err)
			errHTTPCh <- err
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Println(fmt.Errorf("srv.Shutdown failed: %w", err))
		}

		<-errHTTPCh
		log.Println("HTTP server stopped")
	}, errHTTPCh
}

func mustListen(httpAddr string) net.Listener {
	if httpAddr == "" {
		panic("-http-addr must be provided")
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		panic(fmt.Errorf("net.Listen failed: %w", err))
	}

	return ln
}

func newOauthCfg(cfg config.Config, lnAddr string) *oauth2.Config {
	oauthURL := fmt.Sprintf("http://%s/oauth", lnAddr)
	if cfg.OAuthURL != "" {
		oauthURL = cfg.OAuthURL
	}

	return &oauth2.Config{
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		RedirectURL:  oauthURL,
		Scopes:       []string{gmail.GmailComposeScope},
		Endpoint:     google.Endpoint,
	}
}

// setupLogger keeps the terminal for the UI and stdout for the stdio
// transport: logs go to the log file, or nowhere.
func setupLogger(cfg config.Config) func() {
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			panic(fmt.Errorf("failed to open log file: %w", err))
		}
		log.SetOutput(f)

		return func() {
			if err := f.Close(); err != nil {
				log.Println(fmt.Errorf("f.Close failed: %w", err))
			}
		}
	}

	if cfg.Stdio || !cfg.Headless() {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stdout)
	}

	return func() {}
}

func openBrowser(url string) {
	url = fmt.Sprintf("%s?redirect=1", url)
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		log.Printf("Could not open browser automatically: %v; please copy and open link in the browser: %s\n", err, url)
	}
}
