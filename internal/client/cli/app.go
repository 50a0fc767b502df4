package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dmitrijs2005/chathub/internal/client/config"
)

// App is the interactive terminal client.
type App struct {
	config *config.Config
	api    *apiClient
	in     *bufio.Reader
	out    io.Writer
}

func NewApp(cfg *config.Config) *App {
	return &App{
		config: cfg,
		api:    newAPIClient(strings.TrimRight(cfg.ServerAddr, "/")),
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

func (a *App) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *App) promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return a.prompt(label)
	}

	fmt.Fprint(a.out, label)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// signIn logs in, offering to register when the account does not exist yet.
func (a *App) signIn(ctx context.Context) (*authData, error) {
	email, err := a.prompt("email: ")
	if err != nil {
		return nil, err
	}
	password, err := a.promptPassword("password: ")
	if err != nil {
		return nil, err
	}

	auth, err := a.api.Login(ctx, email, password)
	if err == nil {
		return auth, nil
	}
	fmt.Fprintf(a.out, "login failed: %v\n", err)

	answer, err := a.prompt("create an account with this email? [y/N] ")
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(answer, "y") {
		return nil, fmt.Errorf("not signed in")
	}

	name, err := a.prompt("name: ")
	if err != nil {
		return nil, err
	}
	return a.api.Register(ctx, name, email, password)
}

// Run drives the whole client: sign in, join the chat, then relay lines
// between the terminal and the websocket until EOF or /quit.
func (a *App) Run(ctx context.Context) error {
	auth, err := a.signIn(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "signed in as %s\n", auth.User.Email)

	name := a.config.Name
	if name == "" {
		name = auth.User.Name
	}

	conn, err := dialWS(ctx, a.api.baseURL)
	if err != nil {
		return fmt.Errorf("connecting to chat: %w", err)
	}
	defer conn.Close()

	s := &session{conn: conn, out: a.out, name: name}
	if err := s.join(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "joined; /msg <user> <text> for private messages, /quit to leave")

	done := make(chan struct{})
	go s.readLoop(done)

	for {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := a.in.ReadString('\n')
		if err != nil {
			return nil
		}
		line = strings.TrimSpace(line)

		switch {
		case line == "":
		case line == "/quit":
			return nil
		case strings.HasPrefix(line, "/msg "):
			rest := strings.TrimPrefix(line, "/msg ")
			to, text, ok := strings.Cut(rest, " ")
			if !ok || text == "" {
				fmt.Fprintln(a.out, "usage: /msg <user> <text>")
				continue
			}
			if err := s.sendPrivate(to, text); err != nil {
				return err
			}
		default:
			if err := s.sendMessage(line); err != nil {
				return err
			}
		}
	}
}
